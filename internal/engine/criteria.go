// internal/engine/criteria.go
package engine

import (
	"strings"

	"scholarship-workers/internal/models"
)

// Default bounds substituted when a scholarship constrains only one side
// of a numeric range.
const (
	defaultMinCGPA   = 0.0
	defaultMaxCGPA   = 10.0
	defaultMinIncome = 0.0
	defaultMaxIncome = 999999999.0
	defaultMinAge    = 0
	defaultMaxAge    = 100
)

// SetConstraint wraps a list of allowed values for a categorical
// criterion. The zero value is unconstrained. Membership is
// case-insensitive.
type SetConstraint struct {
	allowed     []string
	constrained bool
}

func NewSetConstraint(values []string) SetConstraint {
	return SetConstraint{allowed: values, constrained: len(values) > 0}
}

// GenderConstraint builds the gender set. A list containing "All" (any
// case) means the scholarship accepts everyone, so the constraint is
// dropped entirely.
func GenderConstraint(values []string) SetConstraint {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), "All") {
			return SetConstraint{}
		}
	}
	return NewSetConstraint(values)
}

func (c SetConstraint) Constrained() bool {
	return c.constrained
}

// Allows reports whether value is in the allowed set. An unset user
// value (nil) never satisfies a constrained set.
func (c SetConstraint) Allows(value *string) bool {
	if value == nil {
		return false
	}
	for _, a := range c.allowed {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(*value)) {
			return true
		}
	}
	return false
}

// Describe renders the allowed set for the check's Required field.
func (c SetConstraint) Describe() string {
	return strings.Join(c.allowed, ", ")
}

// resolvedCriteria is the fully-defaulted view of a scholarship's
// constraints that the evaluator walks. Numeric ranges are always
// checked (missing bounds fall back to the defaults above); the
// categorical sets are checked only when constrained.
type resolvedCriteria struct {
	minCGPA, maxCGPA     float64
	education            SetConstraint
	fields               SetConstraint
	minIncome, maxIncome float64
	genders              SetConstraint
	categories           SetConstraint
	minAge, maxAge       int
}

func resolveCriteria(ec *models.EligibilityCriteria) resolvedCriteria {
	rc := resolvedCriteria{
		minCGPA:   defaultMinCGPA,
		maxCGPA:   defaultMaxCGPA,
		minIncome: defaultMinIncome,
		maxIncome: defaultMaxIncome,
		minAge:    defaultMinAge,
		maxAge:    defaultMaxAge,
	}
	if ec == nil {
		return rc
	}

	if ec.MinCGPA != nil {
		rc.minCGPA = *ec.MinCGPA
	}
	if ec.MaxCGPA != nil {
		rc.maxCGPA = *ec.MaxCGPA
	}

	rc.education = NewSetConstraint(ec.RequiredEducation)
	rc.fields = NewSetConstraint(ec.RequiredFields)

	if ec.MinFamilyIncome != nil {
		rc.minIncome = *ec.MinFamilyIncome
	}
	if ec.MaxFamilyIncome != nil {
		rc.maxIncome = *ec.MaxFamilyIncome
	}

	rc.genders = GenderConstraint(ec.AllowedGenders)
	rc.categories = NewSetConstraint(ec.AllowedCategories)

	if ec.MinAge != nil {
		rc.minAge = *ec.MinAge
	}
	if ec.MaxAge != nil {
		rc.maxAge = *ec.MaxAge
	}

	return rc
}
