package translate

// Language is a translation target offered to users
type Language struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Languages lists the supported targets in display order
var Languages = []Language{
	{Code: "en", Label: "English"},
	{Code: "ja", Label: "Japanese"},
	{Code: "th", Label: "Thai"},
	{Code: "zh", Label: "Chinese (Simplified)"},
	{Code: "id", Label: "Indonesian"},
	{Code: "es", Label: "Spanish"},
}

// IsSupported reports whether code is one of Languages
func IsSupported(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// SupportedCodes returns the codes of Languages in order
func SupportedCodes() []string {
	codes := make([]string, len(Languages))
	for i, l := range Languages {
		codes[i] = l.Code
	}
	return codes
}

// FilterSupported keeps the supported codes of langs, dropping duplicates
func FilterSupported(langs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, code := range langs {
		if seen[code] || !IsSupported(code) {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// LangName returns the English name used in prompts
func LangName(code string) string {
	names := map[string]string{
		"ko":   "Korean",
		"en":   "English",
		"ja":   "Japanese",
		"zh":   "Chinese (Simplified)",
		"th":   "Thai",
		"id":   "Indonesian",
		"es":   "Spanish",
		"fr":   "French",
		"de":   "German",
		"vi":   "Vietnamese",
		"auto": "auto-detected language",
	}
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
