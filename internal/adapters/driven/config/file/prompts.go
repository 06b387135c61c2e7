package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/voxdesk/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to the
// built-in templates.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.voxdesk/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// A missing or empty file falls back to the built-in template.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := driven.DefaultPrompt(name); ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err == nil && prompt == "" {
		err = fmt.Errorf("prompt file for %q is empty", name)
	}
	if err != nil {
		if defaultPrompt, ok := driven.DefaultPrompt(name); ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Another goroutine may have loaded it first; keep theirs.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Path returns the file backing a prompt.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

// Save writes a prompt file and drops it from the cache.
func (s *PromptStore) Save(name, content string) error {
	if _, ok := driven.DefaultPrompt(name); !ok {
		return fmt.Errorf("unknown prompt %q", name)
	}
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	if err := os.WriteFile(s.Path(name), []byte(content), 0600); err != nil {
		return fmt.Errorf("write prompt %q: %w", name, err)
	}

	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
	return nil
}

// Reset restores a prompt file to the built-in template.
func (s *PromptStore) Reset(name string) error {
	prompt, ok := driven.DefaultPrompt(name)
	if !ok {
		return fmt.Errorf("unknown prompt %q", name)
	}
	return s.Save(name, prompt)
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Existing files are user edits and are never overwritten.
	for _, name := range driven.DefaultPromptNames() {
		path := s.Path(name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			content, _ := driven.DefaultPrompt(name)
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# VoxDesk Prompts

These files hold the prompts the assistant sends to the language model.

## Files

- ` + "`system.txt`" + ` - The assistant persona used for every reply
- ` + "`rag_answer.txt`" + ` - Asks the model to answer from knowledge base excerpts
- ` + "`rag_augment.txt`" + ` - Adds a knowledge base answer to the system prompt
- ` + "`rag_failed.txt`" + ` - Used when the knowledge base could not be searched

## Customisation

Edit any file to change the assistant's behaviour. Changes take effect on the
next command or after restarting the TUI. Delete a file to restore its default.

## Format Placeholders

Prompts use Go fmt placeholders in a fixed order:
- ` + "`rag_answer`" + `: ` + "`%s`" + ` knowledge base excerpts, then ` + "`%s`" + ` the question
- ` + "`rag_augment`" + `: ` + "`%s`" + ` system prompt, then ` + "`%s`" + ` the knowledge base answer
- ` + "`rag_failed`" + `: ` + "`%s`" + ` system prompt

Keep the placeholders when editing these prompts.
`
	return os.WriteFile(path, []byte(content), 0600)
}
