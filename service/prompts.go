package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"medintake-backend/models"
)

// emptySchemaJSON renders the form record with every field blank, so the
// extraction prompt always matches the Go model exactly.
var emptySchemaJSON = sync.OnceValue(func() string {
	data, err := json.MarshalIndent(models.FormRecord{}, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("form schema is not marshalable: %v", err))
	}
	return string(data)
})

const extractionSystemPrompt = `You are a data extraction specialist for Israeli National Insurance Institute (ביטוח לאומי) forms.
You receive OCR text of form 283 (report of a work accident) and return the form fields as JSON.
Rules:
- Return ONLY a valid JSON object. No explanations, no markdown.
- Use exactly the JSON structure you are given, with English keys.
- Values are strings. Leave any field you cannot find as an empty string.
- Dates are split into day, month and year components.
- CHECKED marks a selected checkbox, UNCHECKED an empty one.
- Never invent values that are not in the text.`

func extractionUserPrompt(cleanedText string) string {
	return fmt.Sprintf(`Extract all form fields from the OCR text below.
Return the data in exactly this JSON structure:

%s

OCR TEXT:
%s`, emptySchemaJSON(), cleanedText)
}

const languageDetectSystemPrompt = `You identify the primary language of documents.`

func languageDetectUserPrompt(sample string) string {
	return fmt.Sprintf(`What is the primary language of the following text?
Answer with exactly one word: hebrew or english.

TEXT:
%s`, sample)
}

const profileExtractSystemPrompt = `You maintain a user profile for an Israeli HMO (קופת חולים) assistant.
From the conversation you extract the user's details into JSON with these keys:
name, id_number, gender, age, hmo_name, hmo_card_number, insurance_tier.
Rules:
- Return ONLY a JSON object with those keys.
- Keep values the user already confirmed; update only what the latest message changes.
- id_number and hmo_card_number are 9-digit strings.
- gender is זכר or נקבה. hmo_name is מכבי, מאוחדת or כללית. insurance_tier is זהב, כסף or ארד.
- age is a number. Use an empty string (or null for age) for anything unknown.`

func profileExtractUserPrompt(profile models.UserProfile, history []models.ChatMessage, message string) string {
	current, _ := json.Marshal(profile)

	var b strings.Builder
	fmt.Fprintf(&b, "Current profile:\n%s\n\nConversation:\n", current)
	for _, turn := range history {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
	}
	fmt.Fprintf(&b, "user: %s\n\nReturn the updated profile JSON.", message)
	return b.String()
}

// profileFieldLabels names each required profile field in both languages,
// in the order the assistant asks for them.
var profileFieldLabels = []struct {
	field   string
	hebrew  string
	english string
}{
	{"name", "שם מלא", "full name"},
	{"id_number", "מספר תעודת זהות (9 ספרות)", "ID number (9 digits)"},
	{"gender", "מין", "gender"},
	{"age", "גיל", "age"},
	{"hmo_name", "קופת חולים (מכבי / מאוחדת / כללית)", "HMO (Maccabi / Meuhedet / Clalit)"},
	{"hmo_card_number", "מספר כרטיס קופת חולים (9 ספרות)", "HMO card number (9 digits)"},
	{"insurance_tier", "מסלול ביטוח (זהב / כסף / ארד)", "insurance tier (Gold / Silver / Bronze)"},
}

func collectionSystemPrompt(language string, missing []string) string {
	labels := make([]string, 0, len(missing))
	for _, field := range missing {
		for _, l := range profileFieldLabels {
			if l.field == field {
				if language == languageEnglish {
					labels = append(labels, l.english)
				} else {
					labels = append(labels, l.hebrew)
				}
			}
		}
	}

	if language == languageEnglish {
		return fmt.Sprintf(`You are a friendly assistant for Israeli HMO members, currently registering a user.
Details still missing: %s.
Ask for the next missing detail, one short question at a time. If the user asked
something else, answer briefly and steer back to registration. Reply in English.`,
			strings.Join(labels, ", "))
	}
	return fmt.Sprintf(`אתה עוזר וירטואלי ידידותי לחברי קופות החולים בישראל, בשלב קליטת פרטי המשתמש.
הפרטים שעדיין חסרים: %s.
שאל על הפרט החסר הבא, שאלה קצרה אחת בכל פעם. אם המשתמש שאל שאלה אחרת, ענה בקצרה והחזר אותו לתהליך הקליטה. השב בעברית.`,
		strings.Join(labels, ", "))
}

func collectionFallbackQuestion(language string, missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	var label string
	for _, l := range profileFieldLabels {
		if l.field == missing[0] {
			if language == languageEnglish {
				label = l.english
			} else {
				label = l.hebrew
			}
		}
	}
	if language == languageEnglish {
		return fmt.Sprintf("Could you please tell me your %s?", label)
	}
	return fmt.Sprintf("אשמח לדעת מהו ה%s שלך.", label)
}

func transitionMessage(language, name string) string {
	if language == languageEnglish {
		return fmt.Sprintf("Thank you %s! Your details are complete. You can now ask me anything about the health services your HMO offers.", name)
	}
	return fmt.Sprintf("תודה %s! כל הפרטים נקלטו בהצלחה. מעכשיו אפשר לשאול אותי כל שאלה על שירותי הבריאות בקופת החולים שלך.", name)
}

func qaSystemPrompt(language string, profile models.UserProfile, contextBlock string) string {
	age := ""
	if profile.Age != nil {
		age = fmt.Sprintf("%d", *profile.Age)
	}

	if language == languageEnglish {
		return fmt.Sprintf(`You are a medical services assistant for Israeli HMO members.
User details: name %s, gender %s, age %s, HMO %s, insurance tier %s.
Answer ONLY from the knowledge base information below, tailored to the user's HMO and tier.
If the information is not there, say so and suggest contacting the HMO directly.
Reply in English.

%s`, profile.Name, profile.Gender, age, profile.HMOName, profile.InsuranceTier, contextBlock)
	}
	return fmt.Sprintf(`אתה עוזר וירטואלי לשירותי בריאות עבור חברי קופות החולים בישראל.
פרטי המשתמש: שם %s, מין %s, גיל %s, קופת חולים %s, מסלול ביטוח %s.
ענה אך ורק על סמך המידע ממאגר הידע שמצורף למטה, בהתאמה לקופה ולמסלול של המשתמש.
אם המידע אינו מופיע במאגר, אמור זאת במפורש והפנה את המשתמש לקופת החולים.
השב בעברית.

%s`, profile.Name, profile.Gender, age, profile.HMOName, profile.InsuranceTier, contextBlock)
}

var suggestedQuestions = map[string][]string{
	languageHebrew: {
		"אילו טיפולי שיניים מכוסים במסלול שלי?",
		"מה ההנחה על משקפיים בקופה שלי?",
		"אילו סדנאות בריאות פתוחות להרשמה?",
		"מה מגיע לי ברפואה משלימה?",
	},
	languageEnglish: {
		"Which dental treatments does my plan cover?",
		"What discount do I get on glasses?",
		"Which health workshops can I join?",
		"What alternative medicine benefits do I have?",
	},
}

// SuggestedQuestions returns canned starter questions for the UI.
func SuggestedQuestions(language string) []string {
	if qs, ok := suggestedQuestions[normalizeLanguage(language)]; ok {
		return qs
	}
	return suggestedQuestions[languageHebrew]
}

var localizedErrors = map[string]map[string]string{
	"technical_error": {
		languageHebrew:  "אירעה שגיאה טכנית. נסו שוב בעוד מספר רגעים.",
		languageEnglish: "A technical error occurred. Please try again in a moment.",
	},
	"invalid_input": {
		languageHebrew:  "הקלט שהתקבל אינו תקין. נסו לנסח מחדש.",
		languageEnglish: "The input is invalid. Please rephrase and try again.",
	},
	"service_unavailable": {
		languageHebrew:  "השירות אינו זמין כרגע. נסו שוב מאוחר יותר.",
		languageEnglish: "The service is currently unavailable. Please try again later.",
	},
}

// LocalizedError returns a user-facing message for a known error key.
func LocalizedError(key, language string) string {
	messages, ok := localizedErrors[key]
	if !ok {
		messages = localizedErrors["technical_error"]
	}
	if msg, ok := messages[normalizeLanguage(language)]; ok {
		return msg
	}
	return messages[languageHebrew]
}
