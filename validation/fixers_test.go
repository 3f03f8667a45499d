package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medintake-backend/models"
)

func TestFixMobilePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already valid", "0501234567", "0501234567"},
		{"formatted", "050-123-4567", "0501234567"},
		{"country code with plus", "+972-50-1234567", "0501234567"},
		{"country code bare", "972501234567", "0501234567"},
		{"nine digits starting five", "501234567", "0501234567"},
		{"ten digits wrong prefix stays", "1234567890", "1234567890"},
		{"eleven digits stays stripped", "972-50-12345-6", "97250123456"},
		{"too short stays stripped", "050-123", "050123"},
		{"nine digits not starting five", "412345678", "412345678"},
		{"letters only", "abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixMobilePhone(tt.input))
		})
	}
}

// Whatever goes in, the fixer either produces a value the mobile rule
// accepts (ten digits starting "05") or the rule records a violation.
// A fabricated passing number never slips through.
func TestFixMobilePhonePassOrViolation(t *testing.T) {
	inputs := []string{
		"1234567890", "9876543210", "05 2345 6789", "+972521112233",
		"972-3-1234567", "00000000000", "111111111111111", "5550001111",
		"(050) 123-4567", "941234567", "541234567", "501234567", "",
	}
	for _, input := range inputs {
		got := fixMobilePhone(input)
		attempted, violations := checkMobilePhone(models.FormRecord{MobilePhone: got})
		if attempted && len(violations) == 0 {
			assert.Truef(t, len(got) == 10 && strings.HasPrefix(got, "05"),
				"fixMobilePhone(%q) = %q passed the rule without canonical form", input, got)
		}
	}
}

func TestFixLandlinePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already valid", "039876543", "039876543"},
		{"eight digits missing zero", "39876543", "039876543"},
		{"eight digits starting zero stays", "03987654", "03987654"},
		{"formatted", "03-987-6543", "039876543"},
		{"too short", "03-98", "0398"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixLandlinePhone(tt.input))
		})
	}
}

func TestFixIDNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips trailing junk", "123-45-6789X", "123456789"},
		{"pads short value", "00000000", "000000000"},
		{"pads very short value", "1234", "000001234"},
		{"truncates long value", "12345678901", "123456789"},
		{"no digits stays empty", "unknown", ""},
		{"already valid", "123456789", "123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixIDNumber(tt.input))
		})
	}
}

func TestFixPostalCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips separators", "12-345-67", "1234567"},
		{"long value not cut", "123456789", "123456789"},
		{"short value not padded", "12345", "12345"},
		{"already valid", "1234567", "1234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixPostalCode(tt.input))
		})
	}
}

func TestFixTimeFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare digits", "1430", "14:30"},
		{"dot separator", "14.30", "14:30"},
		{"already valid", "14:30", "14:30"},
		{"single digit pair", "9:5", "09:05"},
		{"invalid time untouched", "25:61", "25:61"},
		{"invalid digits untouched", "2561", "2561"},
		{"no digits untouched", "afternoon", "afternoon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixTimeFormat(tt.input))
		})
	}
}

func TestApplyFixesIdempotent(t *testing.T) {
	rec := models.FormRecord{
		IDNumber:      "123-45-6789X",
		MobilePhone:   "+972-50-1234567",
		LandlinePhone: "39876543",
		TimeOfInjury:  "1430",
	}
	rec.Address.PostalCode = "12-345-67"

	once, fixes := ApplyFixes(rec)
	require.Len(t, fixes, 5)

	twice, secondFixes := ApplyFixes(once)
	assert.Empty(t, secondFixes, "second pass must be a no-op")
	assert.Equal(t, once, twice)
}

func TestApplyFixesOrderAndScope(t *testing.T) {
	rec := models.FormRecord{
		IDNumber:     "1234",
		MobilePhone:  "501234567",
		TimeOfInjury: "14.30",
		FirstName:    "דוד",
	}

	fixed, fixes := ApplyFixes(rec)

	require.Len(t, fixes, 3)
	assert.Equal(t, "mobilePhone", fixes[0].Field)
	assert.Equal(t, "idNumber", fixes[1].Field)
	assert.Equal(t, "timeOfInjury", fixes[2].Field)

	// untouched fields stay untouched
	assert.Equal(t, "דוד", fixed.FirstName)
	assert.Empty(t, fixed.LandlinePhone)
	assert.Empty(t, fixed.Address.PostalCode)
}

func TestApplyFixesSkipsEmptyFields(t *testing.T) {
	fixed, fixes := ApplyFixes(models.FormRecord{})
	assert.Empty(t, fixes)
	assert.Equal(t, models.FormRecord{}, fixed)
}
