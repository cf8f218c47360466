package toolchain

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/rickchristie/automaton"
	"github.com/rickchristie/automaton/schema"
)

// ClockInput is the argument mapping of the clock tool.
type ClockInput struct {
	Timezone string `json:"timezone"`
}

// ClockOutput is what the clock tool returns.
type ClockOutput struct {
	Now     string `json:"now"`
	Weekday string `json:"weekday"`
}

// NewClockTool returns a tool that reports the current time, optionally in an IANA timezone.
func NewClockTool(clock automaton.Clock) automaton.Tool {
	if clock == nil {
		clock = automaton.SystemClock{}
	}
	return automaton.NewToolFunc(
		"clock",
		"Get the current date and time",
		schema.Object(schema.Props{
			"timezone": schema.String("IANA timezone name, e.g. Asia/Tokyo. Defaults to UTC."),
		}),
		func(_ context.Context, in ClockInput) (ClockOutput, error) {
			loc := time.UTC
			if in.Timezone != "" {
				l, err := time.LoadLocation(in.Timezone)
				if err != nil {
					return ClockOutput{}, fmt.Errorf("unknown timezone %q", in.Timezone)
				}
				loc = l
			}
			now := clock.Now().In(loc)
			return ClockOutput{
				Now:     now.Format(time.RFC3339),
				Weekday: now.Weekday().String(),
			}, nil
		},
	)
}

// CalculatorInput is the argument mapping of the calculator tool.
type CalculatorInput struct {
	Op string  `json:"op"`
	A  float64 `json:"a"`
	B  float64 `json:"b"`
}

// ErrDivisionByZero is returned by the calculator tool.
var ErrDivisionByZero = errors.New("division by zero")

// NewCalculatorTool returns a tool that applies one arithmetic operation to two numbers.
func NewCalculatorTool() automaton.Tool {
	return automaton.NewToolFunc(
		"calculator",
		"Apply an arithmetic operation to two numbers",
		schema.Object(schema.Props{
			"op": schema.String("Operation").Enum("add", "sub", "mul", "div"),
			"a":  schema.Number("Left operand"),
			"b":  schema.Number("Right operand"),
		}, "op", "a", "b"),
		func(_ context.Context, in CalculatorInput) (float64, error) {
			switch in.Op {
			case "add":
				return in.A + in.B, nil
			case "sub":
				return in.A - in.B, nil
			case "mul":
				return in.A * in.B, nil
			case "div":
				if in.B == 0 {
					return 0, ErrDivisionByZero
				}
				return in.A / in.B, nil
			default:
				return 0, fmt.Errorf("unsupported operation %q", in.Op)
			}
		},
	)
}
