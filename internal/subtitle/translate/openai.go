package translate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	openAIChatURL      = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"
)

// OpenAITranslator sends each block to the Chat Completions API
type OpenAITranslator struct {
	apiKey   string
	model    string
	opts     Options
	endpoint string
	client   apiClient
}

func NewOpenAITranslator(apiKey, model string, opts Options) *OpenAITranslator {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAITranslator{
		apiKey:   apiKey,
		model:    model,
		opts:     opts,
		endpoint: openAIChatURL,
		client:   newAPIClient("OpenAI", 2*time.Minute),
	}
}

func (o *OpenAITranslator) Name() string {
	return EngineOpenAI
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAITranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if o.apiKey == "" {
		return "", keyMissing("OpenAI")
	}

	req := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(o.opts, targetLang)},
			{Role: "user", Content: text},
		},
		Temperature: 0.3,
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.apiKey)

	var resp chatResponse
	if err := o.client.postJSON(ctx, o.endpoint, header, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty OpenAI response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
