package translate

import (
	"fmt"

	"github.com/srt-studio/backend/internal/subtitle/srt"
)

// Engine names accepted by Registry.Engine
const (
	EngineOpenAI = "openai"
	EngineGemini = "gemini"
	EngineDeepL  = "deepl"
)

// SettingsReader looks up runtime settings (the settings table)
type SettingsReader interface {
	GetSetting(key, defaultVal string) string
}

// Keys are API keys taken from the environment
type Keys struct {
	OpenAI string
	Gemini string
	DeepL  string
}

// Registry builds engines, resolving API keys per request
type Registry struct {
	settings SettingsReader
	env      Keys
}

// NewRegistry creates a registry; settings may be nil
func NewRegistry(settings SettingsReader, env Keys) *Registry {
	return &Registry{settings: settings, env: env}
}

// Names returns the engine names in display order
func (r *Registry) Names() []string {
	return []string{EngineOpenAI, EngineGemini, EngineDeepL}
}

// Engine returns the named engine. apiKey, when non-empty, overrides the
// stored setting, which in turn overrides the environment. An engine without
// any key is still returned; its calls fail with ErrTranslatorUnavailable.
func (r *Registry) Engine(name, apiKey string, opts Options) (Engine, error) {
	switch name {
	case EngineOpenAI:
		key := r.resolve("openai_api_key", r.env.OpenAI, apiKey)
		return NewOpenAITranslator(key, r.setting("openai_model", ""), opts), nil
	case EngineGemini:
		key := r.resolve("gemini_api_key", r.env.Gemini, apiKey)
		return NewGeminiTranslator(key, r.setting("gemini_model", ""), opts), nil
	case EngineDeepL:
		key := r.resolve("deepl_api_key", r.env.DeepL, apiKey)
		return NewDeepLTranslator(key, opts), nil
	}
	return nil, srt.NewInputError(fmt.Sprintf("unknown translation engine: %s", name))
}

// Configured reports which engines currently have a key
func (r *Registry) Configured() map[string]bool {
	return map[string]bool{
		EngineOpenAI: r.resolve("openai_api_key", r.env.OpenAI, "") != "",
		EngineGemini: r.resolve("gemini_api_key", r.env.Gemini, "") != "",
		EngineDeepL:  r.resolve("deepl_api_key", r.env.DeepL, "") != "",
	}
}

func (r *Registry) resolve(settingKey, envValue, override string) string {
	if override != "" {
		return override
	}
	if v := r.setting(settingKey, ""); v != "" {
		return v
	}
	return envValue
}

func (r *Registry) setting(key, defaultVal string) string {
	if r.settings == nil {
		return defaultVal
	}
	return r.settings.GetSetting(key, defaultVal)
}
