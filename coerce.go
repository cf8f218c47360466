package automaton

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// coerceArguments rewrites decoded argument values that encoding/json cannot map onto the
// fields of target:
//   - string -> time.Time, in any layout accepted by parseTime
//   - string -> time.Duration, via time.ParseDuration
//
// Nested structs and slices are walked. Unknown keys and values that fail to parse are left
// as they are, so the JSON decoder reports them.
func coerceArguments(args map[string]any, target reflect.Type) map[string]any {
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	if args == nil || target.Kind() != reflect.Struct {
		return args
	}

	out := make(map[string]any, len(args))
	for key, value := range args {
		field, ok := fieldForKey(target, key)
		if !ok {
			out[key] = value
			continue
		}
		out[key] = coerceValue(value, field.Type)
	}
	return out
}

// fieldForKey finds the struct field encoding/json would decode key into: json tag first,
// then a case-insensitive field name.
func fieldForKey(structType reflect.Type, key string) (reflect.StructField, bool) {
	for i := range structType.NumField() {
		field := structType.Field(i)
		if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name == key {
			return field, true
		}
	}
	for i := range structType.NumField() {
		field := structType.Field(i)
		if strings.EqualFold(field.Name, key) {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func coerceValue(value any, target reflect.Type) any {
	if value == nil {
		return nil
	}
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}

	switch {
	case target == timeType:
		if s, ok := value.(string); ok {
			if t, err := parseTime(s); err == nil {
				return t.Format(time.RFC3339Nano)
			}
		}
		return value
	case target == durationType:
		if s, ok := value.(string); ok {
			if d, err := time.ParseDuration(s); err == nil {
				return d.Nanoseconds()
			}
		}
		return value
	case target.Kind() == reflect.Struct:
		if m, ok := value.(map[string]any); ok {
			return coerceArguments(m, target)
		}
	case target.Kind() == reflect.Slice:
		if items, ok := value.([]any); ok {
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = coerceValue(item, target.Elem())
			}
			return out
		}
	}
	return value
}

// timeLayouts are tried in order by parseTime.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time: %s", s)
}
