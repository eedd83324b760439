package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"hireforge/internal/config"
	appErrors "hireforge/internal/errors"
	"hireforge/internal/schema"
	"hireforge/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const tracerName = "hireforge.ai.gemini"

// ModelClient is the part of the Gemini SDK the provider calls.
type ModelClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GetModel(ctx context.Context, model string) (*genai.Model, error)
	StreamChat(ctx context.Context, model string, cfg *genai.GenerateContentConfig, history []*genai.Content, message string) (iter.Seq2[*genai.GenerateContentResponse, error], error)
}

// genaiClient adapts *genai.Client to ModelClient
type genaiClient struct {
	client *genai.Client
}

func (c genaiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, cfg)
}

func (c genaiClient) GetModel(ctx context.Context, model string) (*genai.Model, error) {
	return c.client.Models.Get(ctx, model, &genai.GetModelConfig{})
}

func (c genaiClient) StreamChat(ctx context.Context, model string, cfg *genai.GenerateContentConfig, history []*genai.Content, message string) (iter.Seq2[*genai.GenerateContentResponse, error], error) {
	chat, err := c.client.Chats.Create(ctx, model, cfg, history)
	if err != nil {
		return nil, err
	}
	return chat.SendMessageStream(ctx, genai.Part{Text: message}), nil
}

// operation is the resolved configuration and breaker of one task
type operation struct {
	task    types.Task
	cfg     config.OperationAIConfig
	client  ModelClient
	breaker *AICircuitBreaker
}

// contentConfig returns the request parameters shared by every call of the task.
func (op *operation) contentConfig(systemPrompt string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	// Zero keeps the model default
	if *op.cfg.Temperature > 0 {
		cfg.Temperature = op.cfg.Temperature
	}
	if *op.cfg.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: op.cfg.ThinkingBudget}
	}
	return cfg
}

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	ops           map[types.Task]*operation
	registry      *schema.Registry
	limiter       *rate.Limiter
	streamBreaker *StreamCircuitBreaker
	modelBreaker  *ModelCircuitBreaker
	modelTimeout  time.Duration
	logger        *appErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a provider with one SDK client per distinct API key.
func NewGeminiProvider(cfg *config.Config, logger *appErrors.Logger) (*GeminiProvider, error) {
	clients := make(map[string]ModelClient)
	return newProvider(cfg, logger, func(apiKey string) (ModelClient, error) {
		if c, ok := clients[apiKey]; ok {
			return c, nil
		}
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, appErrors.NewConfigError(appErrors.ErrCodeInvalidConfig,
				"Failed to create Gemini client", err)
		}
		clients[apiKey] = genaiClient{client: client}
		return clients[apiKey], nil
	})
}

// NewProviderWithClient creates a provider that sends every task through client.
func NewProviderWithClient(cfg *config.Config, client ModelClient, logger *appErrors.Logger) (*GeminiProvider, error) {
	return newProvider(cfg, logger, func(string) (ModelClient, error) { return client, nil })
}

func newProvider(cfg *config.Config, logger *appErrors.Logger, clientFor func(apiKey string) (ModelClient, error)) (*GeminiProvider, error) {
	registry, err := schema.NewRegistry()
	if err != nil {
		return nil, err
	}

	g := &GeminiProvider{
		ops:          make(map[types.Task]*operation),
		registry:     registry,
		modelTimeout: cfg.Observability.HealthCheck.AIModelCheckTimeout,
		logger:       logger,
	}
	if g.modelTimeout <= 0 {
		g.modelTimeout = 10 * time.Second
	}
	if cfg.AI.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.AI.RequestsPerMinute)), 1)
	}

	for task, opCfg := range cfg.GetOperationConfigs() {
		if strings.TrimSpace(opCfg.APIKey) == "" {
			return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey,
				"Generator API key is not configured", nil).
				WithContext("task", string(task))
		}
		client, err := clientFor(opCfg.APIKey)
		if err != nil {
			return nil, err
		}
		op := &operation{task: task, cfg: opCfg, client: client}
		op.breaker = NewAICircuitBreaker(task, &op.cfg, logger)
		g.ops[task] = op
	}

	chatCfg := g.ops[types.TaskChat].cfg
	g.streamBreaker = NewStreamCircuitBreaker(&chatCfg, logger)
	jobCfg := g.ops[types.TaskJobAssets].cfg
	g.modelBreaker = NewModelCircuitBreaker(&jobCfg, logger)

	logger.Debug("Initialized Gemini provider",
		"model", jobCfg.Model,
		"speech_model", g.ops[types.TaskSpeech].cfg.Model,
		"requests_per_minute", cfg.AI.RequestsPerMinute)

	return g, nil
}

// Registry returns the response schema registry the provider validates against.
func (g *GeminiProvider) Registry() *schema.Registry {
	return g.registry
}

func (g *GeminiProvider) waitForQuota(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return appErrors.NewTransportError(appErrors.ErrCodeRateLimited,
			"Outbound generator quota exhausted", err)
	}
	return nil
}

// call runs one generator request under the task breaker and retry policy.
func (g *GeminiProvider) call(ctx context.Context, op *operation, contents []*genai.Content, genaiConfig *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	result, err := op.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return executeWithRetry(ctx, g, op, func(attemptCtx context.Context) (*genai.GenerateContentResponse, error) {
			return op.client.GenerateContent(attemptCtx, op.cfg.Model, contents, genaiConfig)
		})
	})
	if err != nil {
		return nil, classifyCallError(op, err)
	}
	return result, nil
}

// ModelInfo represents information about the generator model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the base generation model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	op := g.ops[types.TaskJobAssets]
	modelInfo := &ModelInfo{Name: op.cfg.Model}

	checkCtx, cancel := context.WithTimeout(ctx, g.modelTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return op.client.GetModel(checkCtx, op.cfg.Model)
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", op.cfg.Model,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model != nil {
		modelInfo.DisplayName = model.DisplayName
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", op.cfg.Model,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// stripCodeFence removes a surrounding markdown code fence, if any.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// Drop the info string, e.g. ```json
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// normalizeBody prepares a JSON response body for validation. An absent body
// becomes an empty document of the declared root type, so that required-field
// validation reports it instead of a parse failure.
func normalizeBody(text string, root *genai.Schema) []byte {
	body := stripCodeFence(text)
	if body == "" {
		if root != nil && root.Type == genai.TypeArray {
			return []byte("[]")
		}
		return []byte("{}")
	}
	return []byte(body)
}

// generateJSON is a generic helper to run structured generation with common
// tracing, breaker, validation and parsing logic.
func generateJSON[Out any](
	ctx context.Context,
	g *GeminiProvider,
	prompt Prompt,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	op, ok := g.ops[prompt.Task]
	if !ok {
		return output, nil, appErrors.NewInternalError(appErrors.ErrCodeInvalidRequest,
			"no generator configured for "+string(prompt.Task), nil)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini."+string(prompt.Task))
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", op.cfg.Model),
		attribute.Int("ai.thinking_budget", int(*op.cfg.ThinkingBudget)),
		attribute.Bool("input.has_image", prompt.Image != nil),
	)
	span.SetAttributes(spanAttributes...)

	fail := func(err error) (Out, *TokenUsage, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, err
	}

	responseSchema, err := g.registry.Schema(prompt.Task)
	if err != nil {
		return fail(err)
	}

	genaiConfig := op.contentConfig(prompt.System)
	genaiConfig.ResponseMIMEType = "application/json"
	genaiConfig.ResponseSchema = responseSchema

	result, err := g.call(ctx, op, prompt.Contents(), genaiConfig)
	if err != nil {
		return fail(err)
	}

	body := normalizeBody(result.Text(), responseSchema)
	if err := g.registry.Validate(prompt.Task, body); err != nil {
		g.logger.LogError(err, "Generator output rejected", "task", string(prompt.Task))
		return fail(err)
	}

	if err := json.Unmarshal(body, &output); err != nil {
		return fail(appErrors.NewParseError(appErrors.ErrCodeResponseParseFailed,
			"Failed to parse generator response for "+string(prompt.Task), err))
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// JobAssets implements AIProvider for base generation
func (g *GeminiProvider) JobAssets(ctx context.Context, prompt Prompt) (types.JobAssets, *TokenUsage, error) {
	return generateJSON[types.JobAssets](ctx, g, prompt,
		attribute.Int("input.prompt_length", len(prompt.Text)))
}

// CandidateProfiles implements AIProvider for persona generation
func (g *GeminiProvider) CandidateProfiles(ctx context.Context, prompt Prompt) ([]types.CandidateProfile, *TokenUsage, error) {
	return generateJSON[[]types.CandidateProfile](ctx, g, prompt,
		attribute.Int("input.prompt_length", len(prompt.Text)))
}

// AdvancedAssets implements AIProvider for toolkit generation
func (g *GeminiProvider) AdvancedAssets(ctx context.Context, prompt Prompt) (types.AdvancedAssets, *TokenUsage, error) {
	return generateJSON[types.AdvancedAssets](ctx, g, prompt,
		attribute.Int("input.prompt_length", len(prompt.Text)))
}

// Speech implements AIProvider for text-to-speech
func (g *GeminiProvider) Speech(ctx context.Context, text string) (types.Speech, *TokenUsage, error) {
	op := g.ops[types.TaskSpeech]

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini."+string(types.TaskSpeech))
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", op.cfg.Model),
		attribute.String("ai.voice", op.cfg.Voice),
		attribute.Int("input.text_length", len(text)),
	)

	genaiConfig := op.contentConfig("")
	genaiConfig.ResponseModalities = []string{"AUDIO"}
	genaiConfig.SpeechConfig = &genai.SpeechConfig{
		VoiceConfig: &genai.VoiceConfig{
			PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: op.cfg.Voice},
		},
	}

	result, err := g.call(ctx, op, genai.Text(text), genaiConfig)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return types.Speech{}, nil, err
	}

	speech := extractAudio(result)
	if len(speech.Data) == 0 {
		err := appErrors.NewParseError(appErrors.ErrCodeEmptySpeech,
			"Generator returned no audio", nil).WithContext("model", op.cfg.Model)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return types.Speech{}, nil, err
	}

	span.SetAttributes(attribute.Int("output.audio_bytes", len(speech.Data)))
	return speech, extractTokenUsage(result), nil
}

// extractAudio returns the first inline audio part of the response.
func extractAudio(result *genai.GenerateContentResponse) types.Speech {
	if result == nil {
		return types.Speech{}
	}
	for _, candidate := range result.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return types.Speech{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data}
			}
		}
	}
	return types.Speech{}
}

// StreamChat implements AIProvider for one chat turn. The stream is only
// reopened while nothing has been delivered; once text reached the caller a
// failure ends the sequence with the error.
func (g *GeminiProvider) StreamChat(ctx context.Context, prompt ChatPrompt) iter.Seq2[string, error] {
	op := g.ops[types.TaskChat]

	return func(yield func(string, error) bool) {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini."+string(types.TaskChat))
		defer span.End()
		span.SetAttributes(
			attribute.String("ai.provider", "gemini"),
			attribute.String("ai.model", op.cfg.Model),
			attribute.Int("input.history_turns", len(prompt.History)),
		)

		done, err := g.streamBreaker.Allow()
		if err != nil {
			yield("", classifyCallError(op, err))
			return
		}
		success := false
		defer func() { done(success) }()

		streamCtx, cancel := context.WithTimeout(ctx, *op.cfg.Timeout)
		defer cancel()

		delivered := 0
		for attempt := 0; ; attempt++ {
			if attempt > 0 {
				if err := sleepContext(streamCtx, backoffDelay(attempt)); err != nil {
					yield("", classifyCallError(op, err))
					return
				}
			}
			if err := g.waitForQuota(streamCtx); err != nil {
				yield("", err)
				return
			}

			var streamErr error
			stream, err := op.client.StreamChat(streamCtx, op.cfg.Model, op.contentConfig(prompt.System), prompt.HistoryContents(), prompt.Message)
			if err != nil {
				streamErr = err
			} else {
				for resp, err := range stream {
					if err != nil {
						streamErr = err
						break
					}
					text := resp.Text()
					if text == "" {
						continue
					}
					delivered++
					if !yield(text, nil) {
						// The consumer stopped listening; the stream itself was fine.
						success = true
						return
					}
				}
			}

			if streamErr == nil {
				success = true
				span.SetAttributes(attribute.Int("output.deltas", delivered))
				return
			}

			if delivered > 0 || attempt >= *op.cfg.MaxRetries || !isRetryableError(streamErr) {
				span.RecordError(streamErr)
				span.SetStatus(codes.Error, streamErr.Error())
				g.logger.LogError(streamErr, "Chat stream failed",
					"deltas_delivered", delivered,
					"attempts", attempt+1)
				yield("", classifyCallError(op, streamErr))
				return
			}
			g.logger.Warn("Retrying chat stream", "attempt", attempt+1, "error", streamErr.Error())
		}
	}
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := make(map[string]any)
	healthy := true
	for task, op := range g.ops {
		if task == types.TaskChat {
			continue
		}
		stats[string(task)] = op.breaker.GetStats()
		healthy = healthy && op.breaker.IsHealthy()
	}
	stats[string(types.TaskChat)] = g.streamBreaker.GetStats()
	stats["model_operations"] = g.modelBreaker.GetModelStats()
	stats["overall_healthy"] = healthy && g.streamBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()
	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// The SDK client holds no resources that need releasing
	return nil
}

// TokenUsage represents token usage information from generator responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
