package validation

import "strings"

// Sensitive (YMYL) keyword sets per category. Matching any keyword flags the
// topic for heightened factual care during generation and validation.
var sensitiveCategories = []struct {
	category string
	keywords []string
}{
	{"health", []string{
		"health", "medical", "medicine", "disease", "symptom", "treatment",
		"therapy", "diagnosis", "drug", "vaccine", "mental health", "nutrition",
		"gezondheid", "medisch", "behandeling",
	}},
	{"finance", []string{
		"finance", "financial", "investment", "loan", "mortgage", "insurance",
		"tax", "pension", "crypto", "banking", "credit",
		"financieel", "hypotheek", "belasting", "verzekering",
	}},
	{"legal", []string{
		"legal", "law", "lawyer", "attorney", "lawsuit", "divorce", "custody",
		"contract law", "juridisch", "advocaat", "rechtszaak",
	}},
	{"safety", []string{
		"safety", "emergency", "hazard", "poison", "toxic", "fire safety",
		"veiligheid", "noodgeval",
	}},
}

// DetectSensitiveTopic classifies text against the YMYL keyword sets. Returns
// whether the topic is sensitive and the first matching category.
func DetectSensitiveTopic(text string) (bool, string) {
	lowered := strings.ToLower(text)
	for _, cat := range sensitiveCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lowered, kw) {
				return true, cat.category
			}
		}
	}
	return false, ""
}
