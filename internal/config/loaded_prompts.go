package config

import (
	"sync"

	"hireforge/internal/types"
)

// PromptKind separates system instructions from user templates.
type PromptKind string

const (
	PromptKindSystem PromptKind = "system"
	PromptKindUser   PromptKind = "user"
)

// LoadedPrompts holds the content of prompt files. It is shared by every copy
// of the Config that produced it and is safe to reload while in use.
type LoadedPrompts struct {
	mu     sync.RWMutex
	system map[types.Task]string
	user   map[types.Task]string
}

func newLoadedPrompts() *LoadedPrompts {
	return &LoadedPrompts{
		system: make(map[types.Task]string),
		user:   make(map[types.Task]string),
	}
}

// Get returns the file content loaded for kind and task, or "".
func (l *LoadedPrompts) Get(kind PromptKind, task types.Task) string {
	if l == nil {
		return ""
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if kind == PromptKindSystem {
		return l.system[task]
	}
	return l.user[task]
}

// Count returns how many prompts are loaded from files.
func (l *LoadedPrompts) Count() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.system) + len(l.user)
}

func (l *LoadedPrompts) replace(system, user map[types.Task]string) {
	l.mu.Lock()
	l.system = system
	l.user = user
	l.mu.Unlock()
}

// SystemPrompt resolves the system instruction override for task: file
// content first, then inline configuration. "" means use the built-in one.
func (c *Config) SystemPrompt(task types.Task) string {
	if content := c.loaded.Get(PromptKindSystem, task); content != "" {
		return content
	}
	sp := c.Prompts.SystemPrompts
	switch task {
	case types.TaskJobAssets:
		return sp.JobAssets
	case types.TaskCandidateProfiles:
		return sp.CandidateProfiles
	case types.TaskAdvancedAssets:
		return sp.AdvancedAssets
	case types.TaskChat:
		return sp.Chat
	}
	return ""
}

// UserPrompt resolves the user template override for task.
func (c *Config) UserPrompt(task types.Task) string {
	if content := c.loaded.Get(PromptKindUser, task); content != "" {
		return content
	}
	up := c.Prompts.UserPrompts
	switch task {
	case types.TaskJobAssets:
		return up.JobAssets
	case types.TaskCandidateProfiles:
		return up.CandidateProfiles
	case types.TaskAdvancedAssets:
		return up.AdvancedAssets
	}
	return ""
}
