// Package adapter wraps the text-completion services the decomposer can
// consume. Each backend implements the same narrow contract; the rest of
// the system treats the model as an opaque completion service.
package adapter

import "context"

// Completion is one immutable model response.
type Completion struct {
	Content string
	Adapter string
	Model   string
}

// Adapter is the contract for a text-completion backend.
type Adapter interface {
	// Generate sends a prompt to the model and returns its completion.
	Generate(ctx context.Context, model string, prompt string) (*Completion, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the supported model IDs, preferred first.
	Models() []string
}

// DefaultModel returns a's preferred model.
func DefaultModel(a Adapter) string {
	models := a.Models()
	if len(models) == 0 {
		return ""
	}
	return models[0]
}
