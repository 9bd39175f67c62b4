package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"

	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-1.5-flash"

	defaultTimeout = 30 * time.Second
	defaultBurst   = 5
)

// Config holds extractor client settings.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	StructuredOutput  bool
}

// Client extracts laptop specifications from free text with an OpenAI-compatible chat model.
type Client struct {
	client      openai.Client
	model       string
	rateLimiter *rate.Limiter
	structured  bool
	logger      *logger.Logger
}

// NewClient creates an extractor client. It fails with domain.ErrExtractorNotConfigured when no API key is set.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: api key is empty", domain.ErrExtractorNotConfigured)
	}
	if log == nil {
		log = logger.Nop()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	)

	return &Client{
		client:      client,
		model:       model,
		rateLimiter: rate.NewLimiter(limit, burst),
		structured:  cfg.StructuredOutput,
		logger:      log.With("component", "llm"),
	}, nil
}

// ExtractSpecification sends one chat completion and returns the raw model text.
// The text is not parsed here; callers strip code fences and decode it.
func (c *Client) ExtractSpecification(ctx context.Context, message string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionInstructions),
			openai.UserMessage(UserPrompt(message)),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(0),
	}
	if c.structured {
		params.ResponseFormat = specificationResponseFormat()
	}

	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.logger.Warn("Extraction request failed", "model", c.model, "error", err)
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return "", fmt.Errorf("%w: %v", domain.ErrExtractorNotConfigured, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", domain.ErrExtractorFailure)
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	c.logger.Debug("Extraction completed", "model", c.model, "elapsed", time.Since(start), "raw", text)
	return text, nil
}

// specificationSchema mirrors the JSON object the model is asked to return.
type specificationSchema struct {
	Category            []string `json:"category" jsonschema:"description=Use-case categories such as gaming or content creation"`
	MinPrice            *float64 `json:"min_price" jsonschema:"description=Lower budget bound"`
	MaxPrice            *float64 `json:"max_price" jsonschema:"description=Upper budget bound"`
	Performance         *string  `json:"performance" jsonschema:"enum=high,enum=moderate,enum=basic"`
	Brand               []string `json:"brand"`
	RAM                 *float64 `json:"ram" jsonschema:"description=RAM in GB"`
	RAMIsMinimum        *bool    `json:"ram_is_minimum"`
	StorageGB           *float64 `json:"storage_gb" jsonschema:"description=Storage in GB"`
	StorageIsMinimum    *bool    `json:"storage_is_minimum"`
	ScreenSizeValue     *float64 `json:"screen_size_value" jsonschema:"description=Screen diagonal in inches"`
	ScreenSizeIsMinimum *bool    `json:"screen_size_is_minimum"`
	Resolution          []string `json:"resolution"`
	Processor           []string `json:"processor"`
	Graphics            []string `json:"graphics"`
}

// SpecificationSchema returns the JSON schema used for structured output.
func SpecificationSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&specificationSchema{})
}

func specificationResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "laptop_specification",
				Description: openai.String("Laptop requirements extracted from a user request"),
				Schema:      SpecificationSchema(),
				Strict:      openai.Bool(false),
			},
		},
	}
}
