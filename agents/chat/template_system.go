package chat

import (
	"bytes"
	_ "embed"
	"text/template"
	"time"
)

//go:embed template_system.tmpl
var systemTemplateContent string

// SystemPromptData contains the data passed to system prompt templates.
type SystemPromptData struct {
	// Instructions holds caller-provided behavior and context, set via WithInstructions.
	Instructions string

	// Tools is the tool catalog, empty when the registry cannot render one or has no tools.
	Tools string

	// Format explains the action block format, with worked examples.
	Format string

	// Now is the time the run started, from the loop's clock.
	Now time.Time
}

// DefaultSystemTemplate is the default system prompt. It introduces the tools and teaches the
// action format. Replace it via Loop.WithSystemPrompt.
var DefaultSystemTemplate = template.Must(
	template.New("chat_system").Parse(systemTemplateContent),
)

// ExecuteTemplate executes a template with the given data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data SystemPromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
