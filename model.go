package automaton

import (
	"context"
)

// LanguageModel is the black-box text generator the agent loop drives.
//
// Invoke receives the projected prompt and returns the raw model text. Implementations own
// their timeout and retry policy; the loop treats any returned error as fatal to the run.
//
// See the models package for an adapter over langchaingo's llms.Model.
type LanguageModel interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
}

// LanguageModelFunc adapts an ordinary function to [LanguageModel].
type LanguageModelFunc func(ctx context.Context, messages []Message) (string, error)

// Invoke calls f.
func (f LanguageModelFunc) Invoke(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// Compile-time check that LanguageModelFunc implements LanguageModel.
var _ LanguageModel = LanguageModelFunc(nil)
