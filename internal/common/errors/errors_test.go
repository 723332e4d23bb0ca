package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		retries int
	}{
		{ErrCodeProfileFetchFailed, 3},
		{ErrCodeCatalogFetchFailed, 3},
		{ErrCodeQueryExecutionFailed, 3},
		{ErrCodeSearchQueryFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeQueryTimeout, 2},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeParseError, 0},
		{ErrCodeValidationFailed, 0},
		{ErrCodeInvalidQueryType, 0},
		{ErrCodeIndexNotFound, 0},
		{ErrCodeEligibilityCheckFailed, 0},
		{ErrCodeRankingFailed, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.retries, GetRetryCount(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewProfileFetchFailedError("user-1", errors.New("connection refused"))

	bpmnErr := ConvertToBPMNError(stdErr)

	require.NotNil(t, bpmnErr)
	assert.Equal(t, "PROFILE_FETCH_FAILED", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.Contains(t, bpmnErr.Details, "user-1")
	assert.Equal(t, "PROFILE_FETCH_FAILED", bpmnErr.ErrorVariables["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryableForcesZeroRetries(t *testing.T) {
	stdErr := NewRankingFailedError(errors.New("userProfile is required"))

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
}

func TestNewParseError(t *testing.T) {
	stdErr := NewParseError("rank-scholarships", errors.New("unexpected end of JSON input"))

	assert.Equal(t, ErrCodeParseError, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "rank-scholarships")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "PROFILE", GetErrorCategory(ErrCodeProfileFetchFailed))
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeRankingFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
}

func TestBPMNErrorToErrorVariables(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewQueryTimeoutError("active_scholarships"))

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "QUERY_TIMEOUT", vars["errorCode"])
	assert.Equal(t, true, vars["retryable"])
	assert.NotEmpty(t, vars["originalErrorCode"])
}
