package translate

import "fmt"

// GetSystemPrompt returns the translation system prompt for a given preset
func GetSystemPrompt(preset, sourceLang, targetLang string) string {
	base := fmt.Sprintf(
		"You are a professional translator. Translate the given %s subtitle text to %s. "+
			"Only provide the translation without any additional explanation or notes. "+
			"Maintain the tone and style of the original text and keep the same number of lines.",
		LangName(sourceLang), LangName(targetLang),
	)

	switch preset {
	case "anime":
		return base + "\n\n" +
			"Additional guidelines for anime translation:\n" +
			"- Use casual, natural speech patterns appropriate for anime dialogue\n" +
			"- Keep character name consistency\n" +
			"- Match the emotional tone (excited, serious, comedic)\n" +
			"- Translate onomatopoeia and sound effects appropriately"

	case "movie":
		return base + "\n\n" +
			"Additional guidelines for movie/drama translation:\n" +
			"- Use natural conversational style appropriate for the genre\n" +
			"- Preserve cultural nuances and idioms with equivalent expressions\n" +
			"- Maintain formal/informal register matching the original dialogue\n" +
			"- Keep subtitles readable within typical display time (max 2 lines)"

	case "documentary":
		return base + "\n\n" +
			"Additional guidelines for documentary translation:\n" +
			"- Use formal, precise language\n" +
			"- Preserve all technical terminology with accurate translations\n" +
			"- Keep numbers, dates, and measurements accurate"

	default:
		return base
	}
}

// systemPrompt adds user instructions from a custom preset
func systemPrompt(opts Options, targetLang string) string {
	prompt := GetSystemPrompt(opts.Preset, opts.SourceLang, targetLang)
	if opts.CustomPrompt != "" {
		prompt += "\n\nUser instructions: " + opts.CustomPrompt
	}
	return prompt
}
