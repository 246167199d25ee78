package translate

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	geminiAPIBase      = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel = "gemini-2.0-flash"
)

// geminiSafetyOff disables the content filters for every harm category
var geminiSafetyOff = []geminiSafety{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

// GeminiTranslator sends each block to the generateContent API
type GeminiTranslator struct {
	apiKey  string
	model   string
	opts    Options
	baseURL string
	client  apiClient
}

func NewGeminiTranslator(apiKey, model string, opts Options) *GeminiTranslator {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiTranslator{
		apiKey:  apiKey,
		model:   model,
		opts:    opts,
		baseURL: geminiAPIBase,
		client:  newAPIClient("Gemini", 2*time.Minute),
	}
}

func (g *GeminiTranslator) Name() string {
	return EngineGemini
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiSafety struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"system_instruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
	SafetySettings []geminiSafety `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (g *GeminiTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if g.apiKey == "" {
		return "", keyMissing("Gemini")
	}

	req := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: systemPrompt(g.opts, targetLang)}}},
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: text}}}},
		SafetySettings:    geminiSafetyOff,
	}
	req.GenerationConfig.Temperature = 0.3
	header := http.Header{}
	header.Set("x-goog-api-key", g.apiKey)

	var resp geminiResponse
	endpoint := fmt.Sprintf("%s/%s:generateContent", g.baseURL, g.model)
	if err := g.client.postJSON(ctx, endpoint, header, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		if resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("Gemini blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("empty Gemini response")
	}
	if fr := resp.Candidates[0].FinishReason; fr != "" && fr != "STOP" {
		log.Printf("[gemini] finishReason=%s for %s", fr, targetLang)
	}

	translated := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if translated == "" {
		return "", fmt.Errorf("empty Gemini translation")
	}
	return translated, nil
}
