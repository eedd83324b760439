package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"hireforge/internal/types"
)

// PromptFile is one configured prompt template file.
type PromptFile struct {
	Kind PromptKind
	Task types.Task
	Path string
}

// PromptFiles lists the prompt files named in the configuration.
func (c *Config) PromptFiles() []PromptFile {
	sp := c.Prompts.SystemPrompts
	up := c.Prompts.UserPrompts
	candidates := []PromptFile{
		{PromptKindSystem, types.TaskJobAssets, sp.JobAssetsFile},
		{PromptKindSystem, types.TaskCandidateProfiles, sp.CandidateProfilesFile},
		{PromptKindSystem, types.TaskAdvancedAssets, sp.AdvancedAssetsFile},
		{PromptKindSystem, types.TaskChat, sp.ChatFile},
		{PromptKindUser, types.TaskJobAssets, up.JobAssetsFile},
		{PromptKindUser, types.TaskCandidateProfiles, up.CandidateProfilesFile},
		{PromptKindUser, types.TaskAdvancedAssets, up.AdvancedAssetsFile},
	}

	var files []PromptFile
	for _, f := range candidates {
		if f.Path != "" {
			files = append(files, f)
		}
	}
	return files
}

// LoadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) LoadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	if c.loaded == nil {
		c.loaded = newLoadedPrompts()
	}
	if err := c.ReloadPrompts(); err != nil {
		return err
	}

	c.logPromptLoadingSummary()
	return nil
}

// ReloadPrompts re-reads every prompt file. On error the previously loaded
// prompts stay in place.
func (c *Config) ReloadPrompts() error {
	if c.loaded == nil {
		c.loaded = newLoadedPrompts()
	}

	system := make(map[types.Task]string)
	user := make(map[types.Task]string)
	for _, f := range c.PromptFiles() {
		content, err := loadPromptFromFile(f.Path, string(f.Kind), string(f.Task))
		if err != nil {
			return err
		}
		if f.Kind == PromptKindSystem {
			system[f.Task] = content
		} else {
			user[f.Task] = content
		}
	}

	c.loaded.replace(system, user)
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, f := range c.PromptFiles() {
		absPath, err := filepath.Abs(f.Path)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", f.Kind, f.Task, f.Path))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", f.Kind, f.Task, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	for _, f := range c.PromptFiles() {
		log.Printf("[CONFIG] %s %s prompt: loaded from %s", f.Kind, f.Task, f.Path)
	}

	if promptCount := c.loaded.Count(); promptCount == 0 {
		log.Println("[CONFIG] No custom prompt files loaded - using configured or built-in prompts")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
