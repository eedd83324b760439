package ai

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"hireforge/internal/config"
	"hireforge/internal/errors"
	"hireforge/internal/testutil"
	"hireforge/internal/types"
	"hireforge/internal/validation"
)

var testLogger = errors.NewLogger(slog.LevelDebug)

func durationPtr(d time.Duration) *time.Duration { return &d }
func int32Ptr(i int32) *int32                    { return &i }

// TestServiceWiresPerTaskConfiguration builds a service from a full
// configuration and checks that every task got its own breaker and model.
func TestServiceWiresPerTaskConfiguration(t *testing.T) {
	cfg := testutil.Config()
	cfg.AI.Model = "global-model"
	cfg.AI.SpeechModel = "tts-model"
	cfg.AI.JobAssets = config.OperationAIConfig{
		Model:          "job-model",
		Timeout:        durationPtr(90 * time.Second),
		ThinkingBudget: int32Ptr(1024),
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: true, MaxRequests: 5, Interval: 30 * time.Second, Timeout: 45 * time.Second, MinRequests: 2, FailureThreshold: 0.8},
	}
	cfg.AI.Chat.CircuitBreaker = config.CircuitBreakerConfig{Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 3, FailureThreshold: 0.6}

	service, err := NewService(cfg, testLogger)
	if err != nil {
		t.Fatalf("Failed to create service with test key: %v", err)
	}
	defer func() { _ = service.Close() }()

	provider, ok := service.Provider.(*GeminiProvider)
	if !ok {
		t.Fatal("Service provider is not of type *GeminiProvider")
	}

	if got := provider.ops[types.TaskJobAssets].cfg.Model; got != "job-model" {
		t.Errorf("Expected job assets model 'job-model', got '%s'", got)
	}
	if got := provider.ops[types.TaskCandidateProfiles].cfg.Model; got != "global-model" {
		t.Errorf("Expected profiles to fall back to 'global-model', got '%s'", got)
	}
	if got := provider.ops[types.TaskSpeech].cfg.Model; got != "tts-model" {
		t.Errorf("Expected speech model 'tts-model', got '%s'", got)
	}
	if got := *provider.ops[types.TaskJobAssets].cfg.ThinkingBudget; got != 1024 {
		t.Errorf("Expected job assets thinking budget 1024, got %d", got)
	}

	stats := provider.GetCircuitBreakerStats()
	jobStats, ok := stats[string(types.TaskJobAssets)].(map[string]any)
	if !ok {
		t.Fatal("Job assets breaker stats should exist and be a map")
	}
	if name, _ := jobStats["name"].(string); name != "AI-job_assets" {
		t.Errorf("Expected breaker name 'AI-job_assets', got '%s'", name)
	}
	chatStats, ok := stats[string(types.TaskChat)].(map[string]any)
	if !ok || chatStats["enabled"] != true {
		t.Error("Chat stream breaker should be enabled")
	}
	if healthy, _ := stats["overall_healthy"].(bool); !healthy {
		t.Error("Circuit breakers should be healthy initially")
	}
}

// TestLiveGeneration calls the real generator. It runs only when
// GEMINI_API_KEY is set and -short is not.
func TestLiveGeneration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if testing.Short() || apiKey == "" {
		t.Skip("set GEMINI_API_KEY and drop -short to run against the live generator")
	}

	cfg := testutil.Config()
	cfg.AI.APIKey = apiKey
	cfg.AI.Model = "gemini-2.5-flash"
	cfg.AI.Timeout = 3 * time.Minute
	cfg.AI.ThinkingBudget = 1024
	cfg.AI.StrictContract = false

	service, err := NewService(cfg, testLogger)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	assets, err := service.GenerateJobAssets(ctx, types.GenerateJobAssetsInput{
		Notes: "תפקיד: מפתח Backend\nדרישות: Node.js, PostgreSQL",
	})
	if err != nil {
		t.Fatalf("GenerateJobAssets failed: %v", err)
	}
	if len(assets.JobDescription.HardSkills) == 0 {
		t.Error("Expected hard skills")
	}
	if len(assets.JobDescription.PlaceholderSkills()) != 1 {
		t.Logf("Placeholder count deviates: %v", assets.JobDescription.HardSkills)
	}
	d := validation.CountDistribution(assets.InterviewQuestions)
	t.Logf("Generated %q with %d questions split %s", assets.JobDescription.Title, len(assets.InterviewQuestions), d)
}
