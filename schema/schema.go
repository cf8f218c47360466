// Package schema describes tool parameters as JSON Schema and checks model-supplied arguments
// against them.
//
//	calculator := automaton.NewToolFunc(
//	    "calculator",
//	    "Apply an arithmetic operation to two numbers",
//	    schema.Object(schema.Props{
//	        "op": schema.String("Operation").Enum("add", "sub", "mul", "div"),
//	        "a":  schema.Number("Left operand"),
//	        "b":  schema.Number("Right operand"),
//	    }, "op", "a", "b"),
//	    calculate,
//	)
//
// The toolchain compiles each tool's schema once at registration. Validation failures carry one
// Violation per offending argument so the model can see exactly what to fix.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Schema is a compiled parameter schema of one tool.
type Schema struct {
	tool     string
	compiled *jsonschema.Schema
}

// Compile compiles the parameter schema of the named tool. A nil map yields a nil *Schema,
// which accepts any arguments.
func Compile(tool string, raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	// Go-typed values such as []string must become generic JSON values first.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("schema for %q is not serializable: %w", tool, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("schema for %q: %w", tool, err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("tool.json", doc); err != nil {
		return nil, fmt.Errorf("schema for %q: %w", tool, err)
	}
	compiled, err := c.Compile("tool.json")
	if err != nil {
		return nil, fmt.Errorf("schema for %q does not compile: %w", tool, err)
	}
	return &Schema{tool: tool, compiled: compiled}, nil
}

// Validate checks arguments against the schema. Failures are returned as *ValidationError.
func (s *Schema) Validate(arguments map[string]any) error {
	if s == nil {
		return nil
	}
	if arguments == nil {
		arguments = map[string]any{}
	}
	err := s.compiled.Validate(arguments)
	if err == nil {
		return nil
	}
	return &ValidationError{Tool: s.tool, Violations: violations(err), Err: err}
}

// Violation is one reason arguments were rejected.
type Violation struct {
	// Path is the JSON pointer of the offending value, empty for the arguments object itself.
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ValidationError reports arguments that do not match a tool's parameter schema.
type ValidationError struct {
	Tool       string
	Violations []Violation
	Err        error
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("arguments for %s do not match its schema: %s", e.Tool, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// violations flattens the validator's error tree into its leaves, ordered by path.
func violations(err error) []Violation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Message: err.Error()}}
	}

	var out []Violation
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{
				Path:    pointer(e.InstanceLocation),
				Message: e.ErrorKind.LocalizedString(printer),
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func pointer(location []string) string {
	if len(location) == 0 {
		return ""
	}
	return "/" + strings.Join(location, "/")
}
