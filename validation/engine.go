// Package validation implements the rule engine for extracted intake forms:
// deterministic field fixes, business-rule checks, and completeness/accuracy
// scoring. The engine is pure; it performs no I/O, reads no environment, and
// never fails on bad data. Bad data produces violations.
package validation

import (
	"encoding/json"
	"math"
	"strconv"

	"medintake-backend/models"
)

// Validate fixes the record, checks every business rule on the corrected
// record, and scores it.
func Validate(rec models.FormRecord) models.ValidationResult {
	return validate(rec, nil)
}

// ValidateRaw decodes an extracted JSON record tolerantly and validates it.
// Structurally missing sections surface as single coarse violations instead
// of one violation per missing leaf.
func ValidateRaw(data []byte) models.ValidationResult {
	rec, structural := ParseRecord(data)
	return validate(rec, structural)
}

func validate(rec models.FormRecord, structural []models.Violation) models.ValidationResult {
	result := models.NewValidationResult()

	fixed, fixes := ApplyFixes(rec)
	accuracy, violations := scoreAccuracy(fixed, structural)

	result.CompletenessScore = ScoreCompleteness(fixed)
	result.AccuracyScore = accuracy
	result.Violations = append(result.Violations, violations...)
	result.FixesApplied = append(result.FixesApplied, fixes...)
	result.CorrectedRecord = fixed
	return result
}

// ScoreCompleteness counts non-empty leaves against the 35 declared leaves
// of the schema and rounds to whole points. Filling a field can only raise
// the score.
func ScoreCompleteness(rec models.FormRecord) int {
	leaves := rec.Leaves()
	filled := 0
	for _, leaf := range leaves {
		if leaf.Value != "" {
			filled++
		}
	}
	return int(math.Round(float64(filled) / float64(len(leaves)) * 100))
}

// ScoreAccuracy runs every rule check over the record, skipping empty
// fields. The score is passed checks over attempted checks; a record where
// nothing could be checked scores 100 with no violations.
func ScoreAccuracy(rec models.FormRecord) (int, []models.Violation) {
	return scoreAccuracy(rec, nil)
}

func scoreAccuracy(rec models.FormRecord, structural []models.Violation) (int, []models.Violation) {
	violations := append([]models.Violation{}, structural...)

	// Missing sections count as attempted-and-failed so a structurally
	// incomplete record can never score 100.
	attempted := len(structural)
	passed := 0

	for _, check := range accuracyChecks {
		att, vs := check(rec)
		if !att {
			continue
		}
		attempted++
		if len(vs) == 0 {
			passed++
		} else {
			violations = append(violations, vs...)
		}
	}

	if attempted == 0 {
		return 100, violations
	}
	return int(math.Round(float64(passed) / float64(attempted) * 100)), violations
}

// Top-level keys whose values must be JSON objects.
var objectSections = map[string]bool{
	"dateOfBirth":              true,
	"address":                  true,
	"dateOfInjury":             true,
	"formFillingDate":          true,
	"formReceiptDateAtClinic":  true,
	"medicalInstitutionFields": true,
}

// ParseRecord decodes extracted JSON into a FormRecord without ever
// rejecting it: unknown keys are ignored, numeric leaves are coerced to
// strings, and missing or mistyped top-level sections come back as coarse
// incomplete_record violations.
func ParseRecord(data []byte) (models.FormRecord, []models.Violation) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.FormRecord{}, []models.Violation{
			{Field: "record", Rule: models.RuleIncompleteRecord, Value: ""},
		}
	}

	var structural []models.Violation
	for _, key := range models.SectionKeys {
		v, ok := raw[key]
		if !ok {
			structural = append(structural, models.Violation{Field: key, Rule: models.RuleIncompleteRecord, Value: ""})
			continue
		}
		if objectSections[key] {
			if _, isObject := v.(map[string]interface{}); !isObject {
				structural = append(structural, models.Violation{Field: key, Rule: models.RuleIncompleteRecord, Value: ""})
			}
		}
	}

	rec := models.FormRecord{
		LastName:                stringField(raw, "lastName"),
		FirstName:               stringField(raw, "firstName"),
		IDNumber:                stringField(raw, "idNumber"),
		Gender:                  stringField(raw, "gender"),
		DateOfBirth:             dateField(raw, "dateOfBirth"),
		Address:                 addressField(raw),
		LandlinePhone:           stringField(raw, "landlinePhone"),
		MobilePhone:             stringField(raw, "mobilePhone"),
		JobType:                 stringField(raw, "jobType"),
		DateOfInjury:            dateField(raw, "dateOfInjury"),
		TimeOfInjury:            stringField(raw, "timeOfInjury"),
		AccidentLocation:        stringField(raw, "accidentLocation"),
		AccidentAddress:         stringField(raw, "accidentAddress"),
		AccidentDescription:     stringField(raw, "accidentDescription"),
		InjuredBodyPart:         stringField(raw, "injuredBodyPart"),
		Signature:               stringField(raw, "signature"),
		FormFillingDate:         dateField(raw, "formFillingDate"),
		FormReceiptDateAtClinic: dateField(raw, "formReceiptDateAtClinic"),
	}
	if section := objectField(raw, "medicalInstitutionFields"); section != nil {
		rec.MedicalInstitutionFields = models.MedicalInstitution{
			HealthFundMember: stringField(section, "healthFundMember"),
			NatureOfAccident: stringField(section, "natureOfAccident"),
			MedicalDiagnoses: stringField(section, "medicalDiagnoses"),
		}
	}
	return rec, structural
}

func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

func objectField(m map[string]interface{}, key string) map[string]interface{} {
	section, _ := m[key].(map[string]interface{})
	return section
}

func dateField(m map[string]interface{}, key string) models.FormDate {
	section := objectField(m, key)
	if section == nil {
		return models.FormDate{}
	}
	return models.FormDate{
		Day:   stringField(section, "day"),
		Month: stringField(section, "month"),
		Year:  stringField(section, "year"),
	}
}

func addressField(m map[string]interface{}) models.Address {
	section := objectField(m, "address")
	if section == nil {
		return models.Address{}
	}
	return models.Address{
		Street:      stringField(section, "street"),
		HouseNumber: stringField(section, "houseNumber"),
		Entrance:    stringField(section, "entrance"),
		Apartment:   stringField(section, "apartment"),
		City:        stringField(section, "city"),
		PostalCode:  stringField(section, "postalCode"),
		POBox:       stringField(section, "poBox"),
	}
}
