// internal/extraction/ai/provider.go
//
// Model-assisted criteria extraction. A Provider turns a prompt into raw
// model output; the Extractor chains providers in preference order, caches
// normalized results by document hash, and hands parse failures back to the
// caller so deterministic extraction can take over.
package ai

import "context"

// Provider is one LLM backend capable of completing an extraction prompt.
type Provider interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// Complete sends the prompt and returns the model's raw text output.
	Complete(ctx context.Context, prompt string) (string, error)
}
