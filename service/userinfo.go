package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"medintake-backend/models"
)

var nineDigitsRe = regexp.MustCompile(`^\d{9}$`)

var genderAliases = map[string]string{
	"זכר": "זכר", "ז": "זכר", "male": "זכר", "m": "זכר", "גבר": "זכר",
	"נקבה": "נקבה", "נ": "נקבה", "female": "נקבה", "f": "נקבה", "אישה": "נקבה",
}

var hmoAliases = map[string]string{
	"מכבי": "מכבי", "maccabi": "מכבי", "macabi": "מכבי",
	"מאוחדת": "מאוחדת", "meuhedet": "מאוחדת",
	"כללית": "כללית", "clalit": "כללית", "klalit": "כללית",
}

var tierAliases = map[string]string{
	"זהב": "זהב", "gold": "זהב",
	"כסף": "כסף", "silver": "כסף",
	"ארד": "ארד", "bronze": "ארד",
}

var namePrefixes = []string{"שמי ", "קוראים לי ", "השם שלי ", "my name is "}

var nonDigitRe = regexp.MustCompile(`\D`)

// normalizeProfile canonicalizes the free-text values the model extracts
// so the rest of the pipeline can compare them directly.
func normalizeProfile(p models.UserProfile) models.UserProfile {
	p.Name = strings.TrimSpace(p.Name)
	lower := strings.ToLower(p.Name)
	for _, prefix := range namePrefixes {
		if strings.HasPrefix(lower, prefix) {
			p.Name = strings.TrimSpace(p.Name[len(prefix):])
			break
		}
	}

	if g, ok := genderAliases[strings.ToLower(strings.TrimSpace(p.Gender))]; ok {
		p.Gender = g
	}
	if h, ok := hmoAliases[strings.ToLower(strings.TrimSpace(p.HMOName))]; ok {
		p.HMOName = h
	}
	if t, ok := tierAliases[strings.ToLower(strings.TrimSpace(p.InsuranceTier))]; ok {
		p.InsuranceTier = t
	}

	p.IDNumber = nonDigitRe.ReplaceAllString(p.IDNumber, "")
	p.HMOCardNumber = nonDigitRe.ReplaceAllString(p.HMOCardNumber, "")
	return p
}

// mergeProfiles lays the newly extracted values over what the user already
// gave; empty extractions never erase confirmed details.
func mergeProfiles(current, extracted models.UserProfile) models.UserProfile {
	merged := current
	if extracted.Name != "" {
		merged.Name = extracted.Name
	}
	if extracted.IDNumber != "" {
		merged.IDNumber = extracted.IDNumber
	}
	if extracted.Gender != "" {
		merged.Gender = extracted.Gender
	}
	if extracted.Age != nil {
		merged.Age = extracted.Age
	}
	if extracted.HMOName != "" {
		merged.HMOName = extracted.HMOName
	}
	if extracted.HMOCardNumber != "" {
		merged.HMOCardNumber = extracted.HMOCardNumber
	}
	if extracted.InsuranceTier != "" {
		merged.InsuranceTier = extracted.InsuranceTier
	}
	return merged
}

// MissingProfileFields lists the required registration fields the profile
// does not satisfy yet, in asking order.
func MissingProfileFields(p models.UserProfile) []string {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if !nineDigitsRe.MatchString(p.IDNumber) {
		missing = append(missing, "id_number")
	}
	if p.Gender != "זכר" && p.Gender != "נקבה" {
		missing = append(missing, "gender")
	}
	if p.Age == nil || *p.Age < 0 || *p.Age > 120 {
		missing = append(missing, "age")
	}
	if _, ok := models.HMOHebrewToID[p.HMOName]; !ok {
		missing = append(missing, "hmo_name")
	}
	if !nineDigitsRe.MatchString(p.HMOCardNumber) {
		missing = append(missing, "hmo_card_number")
	}
	if p.InsuranceTier != "זהב" && p.InsuranceTier != "כסף" && p.InsuranceTier != "ארד" {
		missing = append(missing, "insurance_tier")
	}
	return missing
}

// ProfileComplete reports whether registration can end and QA can begin.
func ProfileComplete(p models.UserProfile) bool {
	return len(MissingProfileFields(p)) == 0
}

// parseProfileJSON decodes the model's profile JSON, tolerating numbers
// where strings are expected and either form for age.
func parseProfileJSON(raw string) (models.UserProfile, error) {
	var p models.UserProfile

	object, ok := extractJSON(raw)
	if !ok {
		return p, fmt.Errorf("no JSON object in profile extraction output")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		return p, fmt.Errorf("failed to decode profile JSON: %w", err)
	}

	p.Name = anyToString(fields["name"])
	p.IDNumber = anyToString(fields["id_number"])
	p.Gender = anyToString(fields["gender"])
	p.HMOName = anyToString(fields["hmo_name"])
	p.HMOCardNumber = anyToString(fields["hmo_card_number"])
	p.InsuranceTier = anyToString(fields["insurance_tier"])

	switch age := fields["age"].(type) {
	case float64:
		n := int(age)
		p.Age = &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(age)); err == nil {
			p.Age = &n
		}
	}
	return p, nil
}

func anyToString(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}
