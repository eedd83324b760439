package config

import (
	"time"

	"hireforge/internal/types"
)

const (
	// RetryBackoffBase is the wait before the first retry of a generator
	// call. Each later wait doubles, up to RetryBackoffMax.
	RetryBackoffBase = time.Second
	RetryBackoffMax  = 30 * time.Second
)

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Voice == "" {
		opCfg.Voice = c.AI.Voice
	}
	if opCfg.Language == "" {
		opCfg.Language = c.AI.Language
	}
	if opCfg.Timeout == nil {
		timeout := c.AI.Timeout
		opCfg.Timeout = &timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		retries := c.AI.MaxRetries
		opCfg.MaxRetries = &retries
	}
	if opCfg.Temperature == nil {
		temperature := c.AI.Temperature
		opCfg.Temperature = &temperature
	}
	if opCfg.ThinkingBudget == nil {
		budget := c.AI.ThinkingBudget
		opCfg.ThinkingBudget = &budget
	}
}

// GetOperationConfig returns the resolved configuration for task, with every
// unset field filled from the global AI section.
func (c *Config) GetOperationConfig(task types.Task) OperationAIConfig {
	var opCfg OperationAIConfig
	switch task {
	case types.TaskJobAssets:
		opCfg = c.AI.JobAssets
	case types.TaskCandidateProfiles:
		opCfg = c.AI.CandidateProfiles
	case types.TaskAdvancedAssets:
		opCfg = c.AI.AdvancedAssets
	case types.TaskSpeech:
		opCfg = c.AI.Speech
		if opCfg.Model == "" {
			opCfg.Model = c.AI.SpeechModel
		}
	case types.TaskChat:
		opCfg = c.AI.Chat
	}

	c.applyOperationDefaults(&opCfg)
	return opCfg
}

// GetOperationConfigs resolves every task configuration.
func (c *Config) GetOperationConfigs() map[types.Task]OperationAIConfig {
	tasks := []types.Task{
		types.TaskJobAssets,
		types.TaskCandidateProfiles,
		types.TaskAdvancedAssets,
		types.TaskSpeech,
		types.TaskChat,
	}
	out := make(map[types.Task]OperationAIConfig, len(tasks))
	for _, task := range tasks {
		out[task] = c.GetOperationConfig(task)
	}
	return out
}

// GenerationBudget returns the longest one unary generation can take when
// every attempt runs into its deadline and every backoff gets full jitter.
// Chat is left out: it streams over a websocket.
func (c *Config) GenerationBudget() time.Duration {
	var budget time.Duration
	for task, op := range c.GetOperationConfigs() {
		if task == types.TaskChat {
			continue
		}
		retries := max(*op.MaxRetries, 0)
		total := time.Duration(retries+1) * *op.Timeout
		step := RetryBackoffBase
		for range retries {
			total += min(step+step/10, RetryBackoffMax)
			if step < RetryBackoffMax {
				step *= 2
			}
		}
		budget = max(budget, total)
	}
	return budget
}
