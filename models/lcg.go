package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/automaton"
	"github.com/tmc/langchaingo/llms"
)

// ErrNoChoices is returned when a provider answers without any choice.
var ErrNoChoices = errors.New("model returned no choices")

// Usage is the normalized token usage of one model call.
type Usage struct {
	Model             string
	InputTokens       int
	OutputTokens      int
	TotalTokens       int
	CachedInputTokens int
	ReasoningTokens   int
	Duration          time.Duration
}

// UsageHandler receives the usage of every successful call.
type UsageHandler func(ctx context.Context, usage Usage)

// LCG wraps an llms.Model and implements automaton.LanguageModel.
// It normalizes token usage across providers and reports it to an optional handler.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	model := models.NewLCG(llm).
//	    WithModelName("gpt-4.1").
//	    WithCallOptions(llms.WithTemperature(0))
type LCG struct {
	model     llms.Model
	modelName string
	options   []llms.CallOption
	onUsage   UsageHandler
}

// NewLCG creates a new LCG wrapping the given llms.Model.
func NewLCG(model llms.Model) *LCG {
	return &LCG{
		model: model,
	}
}

// WithModelName sets the model name reported in Usage.
// Returns the model for chaining.
func (m *LCG) WithModelName(name string) *LCG {
	m.modelName = name
	return m
}

// WithCallOptions appends options passed to every GenerateContent call.
func (m *LCG) WithCallOptions(options ...llms.CallOption) *LCG {
	m.options = append(m.options, options...)
	return m
}

// WithUsageHandler sets a handler called with the token usage of every successful call.
func (m *LCG) WithUsageHandler(h UsageHandler) *LCG {
	m.onUsage = h
	return m
}

// ModelName returns the name set via WithModelName.
func (m *LCG) ModelName() string {
	return m.modelName
}

// Unwrap returns the underlying llms.Model.
func (m *LCG) Unwrap() llms.Model {
	return m.model
}

// Invoke implements automaton.LanguageModel. It sends the messages as text parts and returns the
// content of the first choice.
func (m *LCG) Invoke(ctx context.Context, messages []automaton.Message) (string, error) {
	startTime := time.Now()
	response, err := m.model.GenerateContent(ctx, ToMessageContent(messages), m.options...)
	duration := time.Since(startTime)
	if err != nil {
		return "", err
	}
	if response == nil || len(response.Choices) == 0 {
		return "", ErrNoChoices
	}

	choice := response.Choices[0]
	if m.onUsage != nil {
		usage := UsageFromGenerationInfo(choice.GenerationInfo)
		usage.Model = m.modelName
		usage.Duration = duration
		m.onUsage(ctx, usage)
	}
	return choice.Content, nil
}

// ToMessageContent converts projected messages to langchaingo message content, one text part
// per message.
func ToMessageContent(messages []automaton.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		out = append(out, llms.TextParts(msg.Role, msg.Content))
	}
	return out
}

// UsageFromGenerationInfo extracts normalized token counts from a choice's GenerationInfo.
// Handles the different key names used by different providers.
func UsageFromGenerationInfo(info map[string]any) Usage {
	if info == nil {
		return Usage{}
	}
	input := extractInputTokens(info)
	output := extractOutputTokens(info)
	return Usage{
		InputTokens:       input,
		OutputTokens:      output,
		TotalTokens:       extractTotalTokens(info, input, output),
		CachedInputTokens: extractCachedInputTokens(info),
		ReasoningTokens:   extractReasoningTokens(info),
	}
}

// firstInt returns the first positive count found under keys, in order.
func firstInt(info map[string]any, keys ...string) int {
	for _, key := range keys {
		if v := getIntFromMap(info, key); v > 0 {
			return v
		}
	}
	return 0
}

func extractInputTokens(info map[string]any) int {
	// OpenAI / Ollama, Anthropic, Google / Bedrock
	return firstInt(info, "PromptTokens", "InputTokens", "input_tokens")
}

func extractOutputTokens(info map[string]any) int {
	return firstInt(info, "CompletionTokens", "OutputTokens", "output_tokens")
}

func extractTotalTokens(info map[string]any, input, output int) int {
	if v := firstInt(info, "TotalTokens", "total_tokens"); v > 0 {
		return v
	}
	return input + output
}

func extractCachedInputTokens(info map[string]any) int {
	return firstInt(info, "PromptCachedTokens", "CacheReadInputTokens", "CachedTokens")
}

func extractReasoningTokens(info map[string]any) int {
	return firstInt(info, "ReasoningTokens", "CompletionReasoningTokens", "ThinkingTokens")
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// String renders the usage for log lines.
func (u Usage) String() string {
	return fmt.Sprintf("in=%d out=%d total=%d cached=%d reasoning=%d",
		u.InputTokens, u.OutputTokens, u.TotalTokens, u.CachedInputTokens, u.ReasoningTokens)
}

// Compile-time check that LCG implements automaton.LanguageModel.
var _ automaton.LanguageModel = (*LCG)(nil)
