package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"medintake-backend/models"
)

var (
	timeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	nameRe = regexp.MustCompile(`^[A-Za-z\x{0590}-\x{05FF}\s\-]+$`)
)

var acceptedGenders = map[string]bool{
	"male": true, "female": true, "m": true, "f": true,
	"זכר": true, "נקבה": true, "ז": true, "נ": true,
}

// ruleCheck inspects one field group of the corrected record. The bool
// reports whether the check was attempted; empty fields are skipped so
// missing data counts against completeness, not accuracy.
type ruleCheck func(models.FormRecord) (bool, []models.Violation)

var accuracyChecks = []ruleCheck{
	checkIDNumber,
	checkMobilePhone,
	checkLandlinePhone,
	checkPostalCode,
	func(r models.FormRecord) (bool, []models.Violation) { return checkDate("dateOfBirth", r.DateOfBirth) },
	func(r models.FormRecord) (bool, []models.Violation) { return checkDate("dateOfInjury", r.DateOfInjury) },
	func(r models.FormRecord) (bool, []models.Violation) { return checkDate("formFillingDate", r.FormFillingDate) },
	func(r models.FormRecord) (bool, []models.Violation) {
		return checkDate("formReceiptDateAtClinic", r.FormReceiptDateAtClinic)
	},
	checkTimeOfInjury,
	func(r models.FormRecord) (bool, []models.Violation) { return checkName("firstName", r.FirstName) },
	func(r models.FormRecord) (bool, []models.Violation) { return checkName("lastName", r.LastName) },
	checkGender,
	checkAccidentDetails,
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func checkIDNumber(rec models.FormRecord) (bool, []models.Violation) {
	id := rec.IDNumber
	if id == "" {
		return false, nil
	}
	if !isDigits(id) || len(id) != 9 || id == "000000000" {
		return true, violation("idNumber", models.RuleIDNumberFormat, id)
	}
	return true, nil
}

func checkMobilePhone(rec models.FormRecord) (bool, []models.Violation) {
	phone := rec.MobilePhone
	if phone == "" {
		return false, nil
	}
	if !isDigits(phone) || len(phone) != 10 || !strings.HasPrefix(phone, "05") {
		return true, violation("mobilePhone", models.RuleMobilePhoneFormat, phone)
	}
	return true, nil
}

func checkLandlinePhone(rec models.FormRecord) (bool, []models.Violation) {
	phone := rec.LandlinePhone
	if phone == "" {
		return false, nil
	}
	if !isDigits(phone) || len(phone) != 9 || !strings.HasPrefix(phone, "0") {
		return true, violation("landlinePhone", models.RuleLandlinePhoneFormat, phone)
	}
	return true, nil
}

func checkPostalCode(rec models.FormRecord) (bool, []models.Violation) {
	postal := rec.Address.PostalCode
	if postal == "" {
		return false, nil
	}
	if !isDigits(postal) || len(postal) != 7 || postal == "0000000" {
		return true, violation("address.postalCode", models.RulePostalCodeFormat, postal)
	}
	return true, nil
}

// checkDate validates ranges and internal consistency (month lengths, leap
// years). Dates are never auto-fixed; a bad date always surfaces here.
func checkDate(field string, d models.FormDate) (bool, []models.Violation) {
	if d.IsEmpty() {
		return false, nil
	}

	day, errD := strconv.Atoi(strings.TrimSpace(d.Day))
	month, errM := strconv.Atoi(strings.TrimSpace(d.Month))
	year, errY := strconv.Atoi(strings.TrimSpace(d.Year))
	if errD != nil || errM != nil || errY != nil {
		return true, violation(field, models.RuleDateInvalid, d.String())
	}

	valid := day >= 1 && day <= 31 && month >= 1 && month <= 12 && year >= 1900 && year <= 2100
	if valid {
		switch {
		case month == 2 && day > 29:
			valid = false
		case month == 2 && day == 29 && !isLeapYear(year):
			valid = false
		case (month == 4 || month == 6 || month == 9 || month == 11) && day > 30:
			valid = false
		}
	}
	if !valid {
		return true, violation(field, models.RuleDateInvalid, d.String())
	}
	return true, nil
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func checkTimeOfInjury(rec models.FormRecord) (bool, []models.Violation) {
	t := rec.TimeOfInjury
	if t == "" {
		return false, nil
	}
	if !timeRe.MatchString(t) {
		return true, violation("timeOfInjury", models.RuleTimeFormat, t)
	}
	parts := strings.SplitN(t, ":", 2)
	hour, _ := strconv.Atoi(parts[0])
	minute, _ := strconv.Atoi(parts[1])
	if hour > 23 || minute > 59 {
		return true, violation("timeOfInjury", models.RuleTimeFormat, t)
	}
	return true, nil
}

func checkName(field, value string) (bool, []models.Violation) {
	if value == "" {
		return false, nil
	}
	trimmed := strings.TrimSpace(value)
	if !nameRe.MatchString(value) || utf8.RuneCountInString(trimmed) < 2 {
		return true, violation(field, models.RuleNameFormat, value)
	}
	return true, nil
}

func checkGender(rec models.FormRecord) (bool, []models.Violation) {
	g := rec.Gender
	if g == "" {
		return false, nil
	}
	if !acceptedGenders[strings.ToLower(strings.TrimSpace(g))] {
		return true, violation("gender", models.RuleGenderValue, g)
	}
	return true, nil
}

// checkAccidentDetails applies length sanity to the free-text accident
// fields. Attempted once any of the three is filled.
func checkAccidentDetails(rec models.FormRecord) (bool, []models.Violation) {
	attempted := false
	var violations []models.Violation

	if loc := strings.TrimSpace(rec.AccidentLocation); rec.AccidentLocation != "" {
		attempted = true
		if n := utf8.RuneCountInString(loc); n < 5 || n > 200 {
			violations = append(violations, models.Violation{
				Field: "accidentLocation", Rule: models.RuleAccidentDetails, Value: rec.AccidentLocation,
			})
		}
	}
	if desc := strings.TrimSpace(rec.AccidentDescription); rec.AccidentDescription != "" {
		attempted = true
		if n := utf8.RuneCountInString(desc); n < 10 || n > 1000 {
			violations = append(violations, models.Violation{
				Field: "accidentDescription", Rule: models.RuleAccidentDetails, Value: rec.AccidentDescription,
			})
		}
	}
	if part := strings.TrimSpace(rec.InjuredBodyPart); rec.InjuredBodyPart != "" {
		attempted = true
		if utf8.RuneCountInString(part) < 3 {
			violations = append(violations, models.Violation{
				Field: "injuredBodyPart", Rule: models.RuleAccidentDetails, Value: rec.InjuredBodyPart,
			})
		}
	}
	return attempted, violations
}

func violation(field, rule, value string) []models.Violation {
	return []models.Violation{{Field: field, Rule: rule, Value: value}}
}
