// pkg/registry/registry_test.go
package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryFile = "../../configs/activity-registry.json"

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(registryFile)
	require.NoError(t, err)

	assert.NotEmpty(t, reg.Version)
	assert.Len(t, reg.Activities, 6)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry("does-not-exist.json")
	assert.Error(t, err)
}

func TestFindByTaskType(t *testing.T) {
	reg, err := LoadRegistry(registryFile)
	require.NoError(t, err)

	activity, err := reg.FindByTaskType("rank-scholarships")
	require.NoError(t, err)
	assert.Equal(t, "matching", activity.Category)
	assert.Contains(t, activity.ErrorCodes, "RANKING_FAILED")

	_, err = reg.FindByTaskType("no-such-task")
	assert.Error(t, err)
}

func TestTaskTypes(t *testing.T) {
	reg, err := LoadRegistry(registryFile)
	require.NoError(t, err)

	types := reg.TaskTypes()
	assert.Contains(t, types, "normalize-profile")
	assert.Contains(t, types, "evaluate-eligibility")
	assert.Contains(t, types, "query-scholarships")
	assert.Contains(t, types, "search-scholarships")
	assert.Contains(t, types, "notify-match-results")
}

func TestValidateInput(t *testing.T) {
	reg, err := LoadRegistry(registryFile)
	require.NoError(t, err)

	activity, err := reg.FindByTaskType("query-scholarships")
	require.NoError(t, err)

	result, err := activity.ValidateInput([]byte(`{"queryType": "active_scholarships"}`))
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = activity.ValidateInput([]byte(`{"userId": "user-1"}`))
	require.NoError(t, err)
	assert.False(t, result.Valid, "queryType is required")
	assert.NotEmpty(t, result.GetErrorMessages())
}

func TestValidateOutput(t *testing.T) {
	reg, err := LoadRegistry(registryFile)
	require.NoError(t, err)

	activity, err := reg.FindByTaskType("notify-match-results")
	require.NoError(t, err)

	result, err := activity.ValidateOutput(map[string]interface{}{
		"success":        true,
		"notificationId": "n-1",
		"channel":        "email",
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}
