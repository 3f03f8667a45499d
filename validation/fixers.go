package validation

import (
	"fmt"
	"strings"

	"medintake-backend/models"
)

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fixMobilePhone normalizes a mobile number toward 10 digits starting "05".
// Country-code prefixed numbers (+972...) are converted to local form. The
// result is never a 10-digit value that does not start with "05".
func fixMobilePhone(value string) string {
	digits := digitsOnly(value)
	if strings.HasPrefix(digits, "972") && len(digits) == 12 {
		digits = digits[3:]
	}
	if len(digits) == 9 && strings.HasPrefix(digits, "5") {
		return "0" + digits
	}
	// Anything else is returned as its digit form; the rule check decides.
	// Digits are never invented to force a "05" prefix.
	return digits
}

// fixLandlinePhone strips formatting and restores a dropped leading zero on
// 8-digit numbers. Anything else is left as its digit form.
func fixLandlinePhone(value string) string {
	digits := digitsOnly(value)
	if len(digits) == 8 && !strings.HasPrefix(digits, "0") {
		return "0" + digits
	}
	return digits
}

// fixIDNumber strips formatting and pads or truncates to 9 digits. Values
// with no digits at all are not padded into a fake ID.
func fixIDNumber(value string) string {
	digits := digitsOnly(value)
	switch {
	case len(digits) > 9:
		return digits[:9]
	case len(digits) > 0 && len(digits) < 9:
		return strings.Repeat("0", 9-len(digits)) + digits
	}
	return digits
}

// fixPostalCode strips formatting only. Wrong-length values are left for the
// rule check to flag; digits are never invented or discarded.
func fixPostalCode(value string) string {
	return digitsOnly(value)
}

// fixTimeFormat reformats digit runs like "1430" or "14.30" into "HH:MM".
// Values whose digits do not form a valid time are left untouched.
func fixTimeFormat(value string) string {
	digits := digitsOnly(value)
	var hour, minute int
	switch {
	case len(digits) >= 4:
		hour = int(digits[0]-'0')*10 + int(digits[1]-'0')
		minute = int(digits[2]-'0')*10 + int(digits[3]-'0')
	case len(digits) >= 2:
		hour = int(digits[0] - '0')
		minute = int(digits[1] - '0')
	default:
		return value
	}
	if hour > 23 || minute > 59 {
		return value
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ApplyFixes runs every deterministic fixer over its own field and reports
// the changes. Fix order is fixed: phones first, then ID and postal code,
// then time. The pass is idempotent; running it on its own output changes
// nothing. Empty fields are never touched.
func ApplyFixes(rec models.FormRecord) (models.FormRecord, []models.AppliedFix) {
	fixed := rec
	fixes := []models.AppliedFix{}

	apply := func(field, value string, fixer func(string) string, set func(string)) {
		if value == "" {
			return
		}
		if after := fixer(value); after != value {
			set(after)
			fixes = append(fixes, models.AppliedFix{Field: field, Before: value, After: after})
		}
	}

	apply("mobilePhone", fixed.MobilePhone, fixMobilePhone, func(v string) { fixed.MobilePhone = v })
	apply("landlinePhone", fixed.LandlinePhone, fixLandlinePhone, func(v string) { fixed.LandlinePhone = v })
	apply("idNumber", fixed.IDNumber, fixIDNumber, func(v string) { fixed.IDNumber = v })
	apply("address.postalCode", fixed.Address.PostalCode, fixPostalCode, func(v string) { fixed.Address.PostalCode = v })
	apply("timeOfInjury", fixed.TimeOfInjury, fixTimeFormat, func(v string) { fixed.TimeOfInjury = v })

	return fixed, fixes
}
