package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Mock returns canned completions for tests and offline runs. Replies
// are matched by substring of the prompt, longest match first, so a
// test can key on the request text embedded in a larger prompt.
type Mock struct {
	mu       sync.Mutex
	replies  map[string]string
	fallback string
	err      error
	prompts  []string
}

// NewMock creates a mock adapter with a default reply.
func NewMock() *Mock {
	return &Mock{replies: make(map[string]string)}
}

// Reply registers the completion returned when the prompt contains match.
func (m *Mock) Reply(match, completion string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[match] = completion
	return m
}

// Fallback sets the completion returned when no reply matches.
func (m *Mock) Fallback(completion string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = completion
	return m
}

// Fail makes every Generate call return err.
func (m *Mock) Fail(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Prompts returns every prompt seen so far, in call order.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Name returns the adapter identifier.
func (m *Mock) Name() string {
	return "mock"
}

// Models returns the supported mock models.
func (m *Mock) Models() []string {
	return []string{"mock-1"}
}

// Generate returns the registered completion for the prompt.
func (m *Mock) Generate(_ context.Context, model string, prompt string) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)

	if m.err != nil {
		return nil, m.err
	}
	if model == "" {
		model = "mock-1"
	}

	keys := make([]string, 0, len(m.replies))
	for k := range m.replies {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	lower := strings.ToLower(prompt)
	for _, k := range keys {
		if strings.Contains(lower, strings.ToLower(k)) {
			return &Completion{Content: m.replies[k], Adapter: m.Name(), Model: model}, nil
		}
	}

	if m.fallback != "" {
		return &Completion{Content: m.fallback, Adapter: m.Name(), Model: model}, nil
	}
	return nil, fmt.Errorf("mock adapter has no reply for prompt")
}
