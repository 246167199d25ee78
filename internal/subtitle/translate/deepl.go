package translate

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const deeplAPIURL = "https://api-free.deepl.com/v2/translate"

// deeplTargets maps the codes DeepL wants a regional variant for
var deeplTargets = map[string]string{
	"en": "EN-US",
	"zh": "ZH-HANS",
	"pt": "PT-BR",
}

// deeplFormality maps prompt presets onto DeepL's formality knob, the only
// style control the API has
var deeplFormality = map[string]string{
	"documentary": "prefer_more",
	"anime":       "prefer_less",
}

// DeepLTranslator sends each block to the DeepL v2 API
type DeepLTranslator struct {
	apiKey   string
	opts     Options
	endpoint string
	client   apiClient
}

func NewDeepLTranslator(apiKey string, opts Options) *DeepLTranslator {
	return &DeepLTranslator{
		apiKey:   apiKey,
		opts:     opts,
		endpoint: deeplAPIURL,
		client:   newAPIClient("DeepL", time.Minute),
	}
}

func (d *DeepLTranslator) Name() string {
	return EngineDeepL
}

func (d *DeepLTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if d.apiKey == "" {
		return "", keyMissing("DeepL")
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", deeplLangCode(targetLang))
	if src := d.opts.SourceLang; src != "" && src != "auto" {
		form.Set("source_lang", strings.ToUpper(src))
	}
	if f, ok := deeplFormality[d.opts.Preset]; ok {
		form.Set("formality", f)
	}
	header := http.Header{}
	header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	var resp struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := d.client.postForm(ctx, d.endpoint, header, form, &resp); err != nil {
		return "", err
	}
	if len(resp.Translations) == 0 {
		return "", errors.New("empty DeepL response")
	}
	return resp.Translations[0].Text, nil
}

// deeplLangCode converts ISO 639-1 codes to DeepL target codes
func deeplLangCode(code string) string {
	if mapped, ok := deeplTargets[code]; ok {
		return mapped
	}
	return strings.ToUpper(code)
}
