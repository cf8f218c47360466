package schema

// Props maps parameter names to their schemas.
type Props map[string]Prop

// Prop is the schema of a single parameter. Modifiers mutate and return the same map.
type Prop map[string]any

// Object creates an object schema. Names passed after the properties are required.
func Object(properties Props, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, p := range properties {
		props[name] = map[string]any(p)
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func newProp(typ, description string) Prop {
	p := Prop{"type": typ}
	if description != "" {
		p["description"] = description
	}
	return p
}

// String creates a string parameter.
func String(description string) Prop { return newProp("string", description) }

// Integer creates an integer parameter. Integral floats such as 3.0 satisfy it.
func Integer(description string) Prop { return newProp("integer", description) }

// Number creates a floating point parameter.
func Number(description string) Prop { return newProp("number", description) }

// Boolean creates a boolean parameter.
func Boolean(description string) Prop { return newProp("boolean", description) }

// Array creates an array parameter whose elements match items.
func Array(description string, items Prop) Prop {
	p := newProp("array", description)
	p["items"] = map[string]any(items)
	return p
}

// Nested creates an object parameter from a schema built with Object.
func Nested(description string, object map[string]any) Prop {
	p := newProp("object", description)
	for k, v := range object {
		if k != "type" {
			p[k] = v
		}
	}
	return p
}

// Enum restricts the parameter to the given values.
func (p Prop) Enum(values ...any) Prop {
	p["enum"] = values
	return p
}

// Min sets the inclusive minimum of a numeric parameter.
func (p Prop) Min(v float64) Prop {
	p["minimum"] = v
	return p
}

// Max sets the inclusive maximum of a numeric parameter.
func (p Prop) Max(v float64) Prop {
	p["maximum"] = v
	return p
}

// Default documents the value a tool assumes when the parameter is omitted.
func (p Prop) Default(v any) Prop {
	p["default"] = v
	return p
}
