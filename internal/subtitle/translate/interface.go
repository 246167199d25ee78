package translate

import "github.com/srt-studio/backend/internal/subtitle/transform"

// Options configures how an engine phrases its requests
type Options struct {
	SourceLang   string `json:"source_lang"`
	Preset       string `json:"preset"`        // "anime", "movie", "documentary", "custom"
	CustomPrompt string `json:"custom_prompt"` // appended as user instructions
}

// Engine is a named translation backend translating one text at a time
type Engine interface {
	transform.Translator
	// Name returns the engine name
	Name() string
}
