package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"hireforge/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// PromptWatcher watches prompt template files and reloads them after a
// quiet period.
type PromptWatcher struct {
	mu sync.RWMutex

	files       []string
	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	reload func() error
	logger *errors.Logger

	running bool
}

// NewPromptWatcher creates a watcher over files. reload is called once per
// settled burst of changes; its error is logged and the old prompts stay.
func NewPromptWatcher(files []string, debounceDelay time.Duration, reload func() error, logger *errors.Logger) *PromptWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}
	return &PromptWatcher{
		files:         slices.Clone(files),
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		reload:        reload,
		logger:        logger,
	}
}

// Start begins watching the prompt files.
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}
	if len(pw.files) == 0 {
		return fmt.Errorf("no prompt files configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher
	pw.updateModTimes()

	for _, file := range pw.files {
		if err := pw.addFileToWatcher(file); err != nil {
			pw.logger.Warn("Failed to watch prompt file", "file", file, "error", err)
		}
	}

	pw.running = true
	go pw.watchLoop(watcher)

	pw.logger.Info("Prompt file watcher started",
		"files", pw.files,
		"debounce_delay", pw.debounceDelay)
	return nil
}

// Stop stops the watcher. Stopping a stopped watcher is a no-op.
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	close(pw.stopChan)
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.running = false

	if err := pw.fsWatcher.Close(); err != nil {
		pw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	pw.logger.Info("Prompt file watcher stopped")
	return nil
}

// addFileToWatcher watches the file's directory so atomic replacements
// (write to temp, rename over) are seen.
func (pw *PromptWatcher) addFileToWatcher(file string) error {
	dir := filepath.Dir(file)
	if err := pw.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	return nil
}

func (pw *PromptWatcher) updateModTimes() {
	for _, file := range pw.files {
		if stat, err := os.Stat(file); err == nil {
			pw.lastModTime[file] = stat.ModTime()
		}
	}
}

// hasFileChanged reports whether file was modified or removed since the
// last check. Only the watch loop calls it.
func (pw *PromptWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		if _, known := pw.lastModTime[file]; known && os.IsNotExist(err) {
			delete(pw.lastModTime, file)
			return true
		}
		return false
	}

	lastMod, known := pw.lastModTime[file]
	if !known || !stat.ModTime().Equal(lastMod) {
		pw.lastModTime[file] = stat.ModTime()
		return true
	}
	return false
}

func (pw *PromptWatcher) watchLoop(watcher *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if pw.isWatchedEvent(event) {
				pw.scheduleReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			pw.logger.LogError(err, "Prompt watcher error")

		case <-pw.reloadChan:
			changed := false
			for _, file := range pw.files {
				if pw.hasFileChanged(file) {
					changed = true
				}
			}
			if !changed {
				continue
			}
			pw.logger.Info("Prompt files changed, reloading")
			if err := pw.reload(); err != nil {
				pw.logger.LogError(err, "Prompt reload failed, keeping previous prompts")
			}

		case <-pw.stopChan:
			return
		}
	}
}

func (pw *PromptWatcher) isWatchedEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	return slices.ContainsFunc(pw.files, func(file string) bool {
		return filepath.Clean(file) == name
	})
}

// scheduleReload restarts the debounce timer.
func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}
	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (pw *PromptWatcher) IsRunning() bool {
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	return pw.running
}

// GetWatchedFiles returns the list of files being watched
func (pw *PromptWatcher) GetWatchedFiles() []string {
	return slices.Clone(pw.files)
}
