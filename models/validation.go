package models

import (
	"database/sql/driver"
	"encoding/json"
)

// Violation represents a single business-rule failure on a field
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Value string `json:"value"`
}

// Rule identifiers carried in Violation.Rule
const (
	RuleIDNumberFormat      = "id_number_format"
	RuleMobilePhoneFormat   = "mobile_phone_format"
	RuleLandlinePhoneFormat = "landline_phone_format"
	RulePostalCodeFormat    = "postal_code_format"
	RuleDateInvalid         = "date_invalid"
	RuleTimeFormat          = "time_format"
	RuleNameFormat          = "name_format"
	RuleGenderValue         = "gender_value"
	RuleAccidentDetails     = "accident_details"
	RuleIncompleteRecord    = "incomplete_record"
)

// AppliedFix represents a deterministic correction applied to a field
type AppliedFix struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// ValidationResult represents the full outcome of validating a form record
type ValidationResult struct {
	CompletenessScore int          `json:"completeness_score"`
	AccuracyScore     int          `json:"accuracy_score"`
	Violations        []Violation  `json:"violations"`
	FixesApplied      []AppliedFix `json:"fixes_applied"`
	CorrectedRecord   FormRecord   `json:"corrected_record"`
}

// NewValidationResult returns a result whose slices marshal as [] rather than null
func NewValidationResult() ValidationResult {
	return ValidationResult{
		Violations:   []Violation{},
		FixesApplied: []AppliedFix{},
	}
}

// Value implements driver.Valuer for JSONB
func (v ValidationResult) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB
func (v *ValidationResult) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch val := value.(type) {
	case []byte:
		bytes = val
	case string:
		bytes = []byte(val)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, v)
}
