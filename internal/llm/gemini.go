package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

// DefaultModel is the default Gemini model used for generation when nothing
// is configured.
const DefaultModel = "gemini-2.5-flash-preview-05-20"

// GeminiBackend adapts the Gemini API to the Backend interface, classifying
// transport failures into the typed errors the invoker understands.
type GeminiBackend struct {
	gClient     *genai.Client
	temperature float32
	maxTokens   int32
}

// NewGeminiBackend creates a Gemini backend. The API key is resolved from the
// GEMINI_API_KEY environment variable first, then from the gemini.api_key
// viper setting.
func NewGeminiBackend(ctx context.Context, temperature float32, maxTokens int32) (*GeminiBackend, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = viper.GetString("ai.gemini.api_key")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		gClient:     gClient,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Generate sends prompt to the named model and returns the generated text.
func (b *GeminiBackend) Generate(ctx context.Context, model, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	if model == "" {
		model = DefaultModel
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{}
	if b.temperature > 0 {
		temp := b.temperature
		config.Temperature = &temp
	}
	if b.maxTokens > 0 {
		config.MaxOutputTokens = b.maxTokens
	}

	resp, err := b.gClient.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", model)
	}

	return text, nil
}

// classifyGeminiError converts SDK errors into the typed rate-limit error
// when they represent a 429-class condition, so the invoker never has to
// inspect transport-specific shapes.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &RateLimitError{Message: apiErr.Message}
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range rateLimitVocabulary {
		if strings.Contains(msg, needle) {
			return &RateLimitError{Message: err.Error()}
		}
	}

	return fmt.Errorf("failed to generate content: %w", err)
}
