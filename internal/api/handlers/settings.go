package handlers

import (
	"net/http"
	"strings"

	"github.com/srt-studio/backend/internal/db"
	"github.com/srt-studio/backend/internal/subtitle/translate"
)

const secretMask = "••••••••"

// settingsKeys defines which keys are allowed and their display metadata
var settingsKeys = []SettingDef{
	{Key: "translate_engine", Label: "Default Engine", Group: "translation", Placeholder: "openai", Secret: false},
	{Key: "source_lang", Label: "Source Language", Group: "translation", Placeholder: "ko", Secret: false},
	{Key: "openai_api_key", Label: "OpenAI API Key", Group: "openai", Placeholder: "sk-...", Secret: true},
	{Key: "openai_model", Label: "OpenAI Model", Group: "openai", Placeholder: "gpt-4o-mini", Secret: false},
	{Key: "gemini_api_key", Label: "Gemini API Key", Group: "gemini", Placeholder: "AIza...", Secret: true},
	{Key: "gemini_model", Label: "Gemini Model", Group: "gemini", Placeholder: "gemini-2.0-flash", Secret: false},
	{Key: "deepl_api_key", Label: "DeepL API Key", Group: "deepl", Placeholder: "xxxxxxxx-xxxx-...", Secret: true},
}

type SettingDef struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Group       string `json:"group"`
	Placeholder string `json:"placeholder"`
	Secret      bool   `json:"secret"`
}

type SettingsHandler struct {
	database *db.Database
	registry *translate.Registry
}

func NewSettingsHandler(database *db.Database, registry *translate.Registry) *SettingsHandler {
	return &SettingsHandler{database: database, registry: registry}
}

type settingResponse struct {
	SettingDef
	Value    string `json:"value"`
	HasValue bool   `json:"has_value"`
}

// GetSettings returns all settings (secrets are masked)
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.database.GetAllSettings()
	if err != nil {
		jsonError(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	result := make([]settingResponse, 0, len(settingsKeys))
	for _, def := range settingsKeys {
		val := all[def.Key]
		result = append(result, settingResponse{
			SettingDef: def,
			Value:      maskValue(def, val),
			HasValue:   val != "",
		})
	}

	jsonResponse(w, map[string]interface{}{
		"settings": result,
		"engines":  h.registry.Configured(),
	}, http.StatusOK)
}

// maskValue shows only the last 4 characters of a secret
func maskValue(def SettingDef, val string) string {
	if !def.Secret || val == "" {
		return val
	}
	if len(val) > 4 {
		return secretMask + val[len(val)-4:]
	}
	return secretMask
}

// UpdateSettings saves settings from the request body. Unknown keys and
// masked secrets sent back unchanged are ignored; an empty value clears.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates map[string]string
	if !decodeJSON(w, r, &updates) {
		return
	}

	allowed := make(map[string]bool)
	for _, def := range settingsKeys {
		allowed[def.Key] = true
	}

	if engine := updates["translate_engine"]; engine != "" && !validEngine(h.registry, engine) {
		jsonError(w, "unknown translation engine: "+engine, http.StatusBadRequest)
		return
	}

	for key, value := range updates {
		if !allowed[key] || strings.HasPrefix(value, secretMask) {
			continue
		}
		if err := h.database.SetSetting(key, strings.TrimSpace(value)); err != nil {
			jsonError(w, "failed to save setting: "+key, http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func validEngine(registry *translate.Registry, name string) bool {
	for _, n := range registry.Names() {
		if n == name {
			return true
		}
	}
	return false
}
