package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medintake-backend/models"
)

func validRecord() models.FormRecord {
	return models.FormRecord{
		LastName:      "כהן",
		FirstName:     "דוד",
		IDNumber:      "123456789",
		Gender:        "זכר",
		DateOfBirth:   models.FormDate{Day: "15", Month: "6", Year: "1985"},
		LandlinePhone: "039876543",
		MobilePhone:   "0501234567",
		JobType:       "נהג משאית",
		Address: models.Address{
			Street:      "הרצל",
			HouseNumber: "12",
			Entrance:    "א",
			Apartment:   "4",
			City:        "חיפה",
			PostalCode:  "1234567",
			POBox:       "100",
		},
		DateOfInjury:            models.FormDate{Day: "10", Month: "3", Year: "2024"},
		TimeOfInjury:            "14:30",
		AccidentLocation:        "במפעל בחיפה",
		AccidentAddress:         "רחוב העבודה 5, חיפה",
		AccidentDescription:     "נפלתי מסולם בזמן סידור סחורה במחסן",
		InjuredBodyPart:         "יד שמאל",
		Signature:               "דוד כהן",
		FormFillingDate:         models.FormDate{Day: "11", Month: "3", Year: "2024"},
		FormReceiptDateAtClinic: models.FormDate{Day: "12", Month: "3", Year: "2024"},
		MedicalInstitutionFields: models.MedicalInstitution{
			HealthFundMember: "מכבי",
			NatureOfAccident: "נפילה מגובה",
			MedicalDiagnoses: "שבר ביד שמאל",
		},
	}
}

func TestValidateCleanRecord(t *testing.T) {
	result := Validate(validRecord())

	assert.Equal(t, 100, result.CompletenessScore)
	assert.Equal(t, 100, result.AccuracyScore)
	assert.Empty(t, result.Violations)
	assert.Empty(t, result.FixesApplied)
	assert.Equal(t, validRecord(), result.CorrectedRecord)
}

func TestValidateFixesThenChecks(t *testing.T) {
	rec := validRecord()
	rec.MobilePhone = "+972-50-1234567"
	rec.TimeOfInjury = "1430"

	result := Validate(rec)

	// fixable problems end fixed and pass the checks
	assert.Equal(t, 100, result.AccuracyScore)
	assert.Empty(t, result.Violations)
	require.Len(t, result.FixesApplied, 2)
	assert.Equal(t, "0501234567", result.CorrectedRecord.MobilePhone)
	assert.Equal(t, "14:30", result.CorrectedRecord.TimeOfInjury)
}

func TestValidateAllZerosID(t *testing.T) {
	rec := validRecord()
	rec.IDNumber = "00000000"

	result := Validate(rec)

	assert.Equal(t, "000000000", result.CorrectedRecord.IDNumber)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "idNumber", result.Violations[0].Field)
	assert.Equal(t, models.RuleIDNumberFormat, result.Violations[0].Rule)
	assert.Less(t, result.AccuracyScore, 100)
}

func TestValidateUnfixableTime(t *testing.T) {
	rec := validRecord()
	rec.TimeOfInjury = "25:61"

	result := Validate(rec)

	assert.Empty(t, result.FixesApplied)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "timeOfInjury", result.Violations[0].Field)
	assert.Equal(t, models.RuleTimeFormat, result.Violations[0].Rule)
	assert.Equal(t, "25:61", result.CorrectedRecord.TimeOfInjury)
}

func TestAccuracyHundredMeansNoViolations(t *testing.T) {
	records := []models.FormRecord{
		{},
		validRecord(),
		{IDNumber: "123456789"},
		{IDNumber: "12"},
		{TimeOfInjury: "99:99"},
		{Gender: "unknown"},
		{MobilePhone: "0501234567", Gender: "F"},
	}
	for i, rec := range records {
		score, violations := ScoreAccuracy(rec)
		if score == 100 {
			assert.Emptyf(t, violations, "record %d: score 100 with violations", i)
		} else {
			assert.NotEmptyf(t, violations, "record %d: score below 100 without violations", i)
		}
	}
}

func TestScoreAccuracySkipsEmptyFields(t *testing.T) {
	// only one checkable field, and it passes
	score, violations := ScoreAccuracy(models.FormRecord{IDNumber: "123456789"})
	assert.Equal(t, 100, score)
	assert.Empty(t, violations)

	// nothing checkable at all
	score, violations = ScoreAccuracy(models.FormRecord{})
	assert.Equal(t, 100, score)
	assert.Empty(t, violations)
}

func TestScoreCompletenessMonotonic(t *testing.T) {
	steps := []models.FormRecord{
		{},
		{FirstName: "דוד"},
		{FirstName: "דוד", LastName: "כהן"},
		{FirstName: "דוד", LastName: "כהן", IDNumber: "123456789"},
		validRecord(),
	}
	prev := -1
	for i, rec := range steps {
		score := ScoreCompleteness(rec)
		assert.GreaterOrEqualf(t, score, prev, "step %d lowered the score", i)
		prev = score
	}
	assert.Equal(t, 0, ScoreCompleteness(models.FormRecord{}))
	assert.Equal(t, 100, ScoreCompleteness(validRecord()))
}

func TestScoreCompletenessRounding(t *testing.T) {
	// 1 of 35 leaves = 2.857% rounds to 3
	score := ScoreCompleteness(models.FormRecord{FirstName: "דוד"})
	assert.Equal(t, 3, score)
}

func TestValidateRawCompleteRecord(t *testing.T) {
	data, err := json.Marshal(validRecord())
	require.NoError(t, err)

	result := ValidateRaw(data)

	assert.Equal(t, 100, result.AccuracyScore)
	assert.Equal(t, 100, result.CompletenessScore)
	assert.Empty(t, result.Violations)
}

func TestValidateRawMissingSection(t *testing.T) {
	raw := map[string]interface{}{}
	data, err := json.Marshal(validRecord())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	delete(raw, "address")
	data, err = json.Marshal(raw)
	require.NoError(t, err)

	result := ValidateRaw(data)

	// one coarse violation for the section, not seven per-leaf ones
	var incomplete []models.Violation
	for _, v := range result.Violations {
		if v.Rule == models.RuleIncompleteRecord {
			incomplete = append(incomplete, v)
		}
	}
	require.Len(t, incomplete, 1)
	assert.Equal(t, "address", incomplete[0].Field)
	assert.Less(t, result.AccuracyScore, 100)
}

func TestValidateRawGarbage(t *testing.T) {
	result := ValidateRaw([]byte("not json at all"))

	require.Len(t, result.Violations, 1)
	assert.Equal(t, models.RuleIncompleteRecord, result.Violations[0].Rule)
	assert.Equal(t, 0, result.CompletenessScore)
}

func TestValidateRawCoercesNumbers(t *testing.T) {
	data, err := json.Marshal(validRecord())
	require.NoError(t, err)
	raw := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["idNumber"] = 123456789

	data, err = json.Marshal(raw)
	require.NoError(t, err)
	result := ValidateRaw(data)

	assert.Equal(t, "123456789", result.CorrectedRecord.IDNumber)
	assert.Empty(t, result.Violations)
}

func TestValidationResultJSONShape(t *testing.T) {
	result := Validate(models.FormRecord{})
	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"completeness_score", "accuracy_score", "violations", "fixes_applied", "corrected_record"} {
		assert.Containsf(t, decoded, key, "missing %q", key)
	}
	// empty slices stay [], never null
	assert.NotNil(t, decoded["violations"])
	assert.NotNil(t, decoded["fixes_applied"])
}
