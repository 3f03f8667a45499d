package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medintake-backend/models"
)

func intPtr(n int) *int { return &n }

func TestNormalizeProfile(t *testing.T) {
	tests := []struct {
		name string
		in   models.UserProfile
		want models.UserProfile
	}{
		{
			name: "english aliases",
			in:   models.UserProfile{Name: "my name is David Levi", Gender: "Male", HMOName: "Maccabi", InsuranceTier: "Gold"},
			want: models.UserProfile{Name: "David Levi", Gender: "זכר", HMOName: "מכבי", InsuranceTier: "זהב"},
		},
		{
			name: "hebrew prefix and aliases",
			in:   models.UserProfile{Name: "שמי דנה כהן", Gender: "אישה", HMOName: "כללית", InsuranceTier: "silver"},
			want: models.UserProfile{Name: "דנה כהן", Gender: "נקבה", HMOName: "כללית", InsuranceTier: "כסף"},
		},
		{
			name: "id digits only",
			in:   models.UserProfile{IDNumber: "123-456-789", HMOCardNumber: " 987 654 321 "},
			want: models.UserProfile{IDNumber: "123456789", HMOCardNumber: "987654321"},
		},
		{
			name: "unknown values pass through",
			in:   models.UserProfile{Name: "רות", Gender: "אחר", HMOName: "לאומית"},
			want: models.UserProfile{Name: "רות", Gender: "אחר", HMOName: "לאומית"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeProfile(tt.in))
		})
	}
}

func TestMergeProfiles(t *testing.T) {
	current := models.UserProfile{Name: "דוד", IDNumber: "123456789", Age: intPtr(30)}
	extracted := models.UserProfile{HMOName: "מכבי", Age: intPtr(31)}

	merged := mergeProfiles(current, extracted)
	assert.Equal(t, "דוד", merged.Name, "empty extraction must not erase the name")
	assert.Equal(t, "123456789", merged.IDNumber)
	assert.Equal(t, "מכבי", merged.HMOName)
	require.NotNil(t, merged.Age)
	assert.Equal(t, 31, *merged.Age, "newer age wins")
}

func TestMissingProfileFieldsOrder(t *testing.T) {
	missing := MissingProfileFields(models.UserProfile{})
	assert.Equal(t, []string{
		"name", "id_number", "gender", "age", "hmo_name", "hmo_card_number", "insurance_tier",
	}, missing)
}

func TestMissingProfileFieldsValidation(t *testing.T) {
	complete := models.UserProfile{
		Name:          "דוד לוי",
		IDNumber:      "123456789",
		Gender:        "זכר",
		Age:           intPtr(42),
		HMOName:       "מכבי",
		HMOCardNumber: "987654321",
		InsuranceTier: "זהב",
	}
	assert.Empty(t, MissingProfileFields(complete))
	assert.True(t, ProfileComplete(complete))

	tests := []struct {
		name   string
		mutate func(*models.UserProfile)
		field  string
	}{
		{"short id", func(p *models.UserProfile) { p.IDNumber = "12345" }, "id_number"},
		{"id with letters", func(p *models.UserProfile) { p.IDNumber = "12345678a" }, "id_number"},
		{"unknown gender", func(p *models.UserProfile) { p.Gender = "other" }, "gender"},
		{"negative age", func(p *models.UserProfile) { p.Age = intPtr(-1) }, "age"},
		{"age too high", func(p *models.UserProfile) { p.Age = intPtr(121) }, "age"},
		{"nil age", func(p *models.UserProfile) { p.Age = nil }, "age"},
		{"unknown hmo", func(p *models.UserProfile) { p.HMOName = "לאומית" }, "hmo_name"},
		{"short card", func(p *models.UserProfile) { p.HMOCardNumber = "1234" }, "hmo_card_number"},
		{"unknown tier", func(p *models.UserProfile) { p.InsuranceTier = "פלטינה" }, "insurance_tier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := complete
			tt.mutate(&p)
			missing := MissingProfileFields(p)
			assert.Equal(t, []string{tt.field}, missing)
			assert.False(t, ProfileComplete(p))
		})
	}

	boundaries := models.UserProfile{
		Name: "א", IDNumber: "000000000", Gender: "נקבה", Age: intPtr(0),
		HMOName: "כללית", HMOCardNumber: "000000000", InsuranceTier: "ארד",
	}
	assert.True(t, ProfileComplete(boundaries))
	boundaries.Age = intPtr(120)
	assert.True(t, ProfileComplete(boundaries))
}

func TestParseProfileJSON(t *testing.T) {
	raw := "```json\n" + `{
  "name": "שרה לוי",
  "id_number": 123456789,
  "gender": "נקבה",
  "age": "34",
  "hmo_name": "מאוחדת",
  "hmo_card_number": "111222333",
  "insurance_tier": "כסף"
}` + "\n```"

	p, err := parseProfileJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "שרה לוי", p.Name)
	assert.Equal(t, "123456789", p.IDNumber, "numeric id is stringified")
	assert.Equal(t, "נקבה", p.Gender)
	require.NotNil(t, p.Age)
	assert.Equal(t, 34, *p.Age, "string age is parsed")
	assert.Equal(t, "מאוחדת", p.HMOName)
	assert.Equal(t, "111222333", p.HMOCardNumber)
	assert.Equal(t, "כסף", p.InsuranceTier)
}

func TestParseProfileJSONNumericAge(t *testing.T) {
	p, err := parseProfileJSON(`{"name": "יוסי", "age": 28}`)
	require.NoError(t, err)
	require.NotNil(t, p.Age)
	assert.Equal(t, 28, *p.Age)
	assert.Empty(t, p.IDNumber)
}

func TestParseProfileJSONNoObject(t *testing.T) {
	_, err := parseProfileJSON("I could not find any details.")
	assert.Error(t, err)
}

func TestParseProfileJSONNullAge(t *testing.T) {
	p, err := parseProfileJSON(`{"name": "יוסי", "age": null}`)
	require.NoError(t, err)
	assert.Nil(t, p.Age)
}
