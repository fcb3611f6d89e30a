package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk, falling
// back to built-in defaults. Files are created lazily on the first Load so
// construction performs no I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswerSystem: `You are Samarth, an intelligent agricultural data assistant.
Your role is to help policymakers, researchers, and farmers understand India's agricultural
economy and climate patterns using official government data from data.gov.in.

Guidelines:
1. Answer questions accurately using ONLY the provided context
2. Always cite your sources explicitly
3. If information is not in the context, clearly state that
4. Provide numerical data with appropriate units
5. When making comparisons, be specific and quantitative
6. Format responses clearly with bullet points when appropriate
7. For trends, mention the time period covered in the data

Remember: You are working with real government data. Accuracy and traceability are paramount.`,

	driven.PromptAnswerUser: `Context from data.gov.in:
%s

Question: %s

Please provide a detailed, data-backed answer with specific citations to the sources.`,
}

// placeholders is the number of %s verbs each template must keep.
var placeholders = map[string]int{
	driven.PromptAnswerSystem: 0,
	driven.PromptAnswerUser:   2,
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.samarth/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name. A user file that
// is missing, unreadable or has lost its placeholders is ignored in favour
// of the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	defaultPrompt, known := defaultPrompts[name]
	if s.initErr != nil {
		if known {
			return defaultPrompt, nil
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
	if err != nil {
		if known {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	if want, ok := placeholders[name]; ok && strings.Count(prompt, "%s") != want {
		return defaultPrompt, nil
	}

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

// initialise creates the prompt directory and writes any missing defaults.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
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

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Samarth Prompts

These files control how Samarth phrases questions to the language model.

- ` + "`answer_system.txt`" + ` - persona and answering rules
- ` + "`answer_user.txt`" + ` - wraps retrieved context and the question

The user template takes two ` + "`%s`" + ` placeholders, the retrieved context
first and the question second. A template with the wrong number of
placeholders is ignored and the built-in default is used instead.

Edits are picked up when the server restarts or the index is reloaded.
`
	return os.WriteFile(path, []byte(content), 0600)
}
