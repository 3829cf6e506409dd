package protocol

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/Iron-Ham/firefly/internal/codec"
	"github.com/Iron-Ham/firefly/internal/errors"
)

// Message kinds on the wire.
const (
	KindInsertChar = "insert_char"
	KindRenderLine = "render_line"
)

// Message family names used in decode errors and logs.
const (
	FamilyOperation   = "operation"
	FamilyDrawCommand = "draw_command"
)

// Operation is an edit requested by the front end.
type Operation interface {
	Kind() string
	isOperation()
}

// DrawCommand tells the front end what to display.
type DrawCommand interface {
	Kind() string
	isDrawCommand()
}

// InsertChar inserts one character at the engine's cursor.
type InsertChar struct {
	Char rune
}

func (InsertChar) Kind() string { return KindInsertChar }
func (InsertChar) isOperation() {}

// RenderLine states that the authoritative content of line Line is now
// Text. It replaces the whole line; it is not a diff.
type RenderLine struct {
	Line int
	Text string
}

func (RenderLine) Kind() string   { return KindRenderLine }
func (RenderLine) isDrawCommand() {}

type operationEnvelope struct {
	Kind string  `cbor:"kind"`
	Char *string `cbor:"char,omitempty"`
}

type drawCommandEnvelope struct {
	Kind string  `cbor:"kind"`
	Line *uint64 `cbor:"line,omitempty"`
	Text *string `cbor:"text,omitempty"`
}

// EncodeOperation encodes op for the UI→engine mailbox.
func EncodeOperation(op Operation) ([]byte, error) {
	switch op := op.(type) {
	case InsertChar:
		if !utf8.ValidRune(op.Char) {
			return nil, errors.NewValidationError("invalid character").WithField("char").WithValue(op.Char)
		}
		char := string(op.Char)
		return codec.Marshal(operationEnvelope{Kind: KindInsertChar, Char: &char})
	default:
		return nil, errors.NewValidationError("unsupported operation").WithValue(fmt.Sprintf("%T", op))
	}
}

// DecodeOperation decodes a payload read from the UI→engine mailbox.
func DecodeOperation(data []byte) (Operation, error) {
	var env operationEnvelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, errors.NewDecodeError(FamilyOperation, len(data), err)
	}

	switch env.Kind {
	case KindInsertChar:
		if env.Char == nil {
			return nil, errors.NewDecodeError(FamilyOperation, len(data), fmt.Errorf("insert_char: missing char"))
		}
		r, size := utf8.DecodeRuneInString(*env.Char)
		// U+FFFD itself decodes with size 3; RuneError with size 1 is invalid UTF-8.
		if (r == utf8.RuneError && size <= 1) || size != len(*env.Char) {
			return nil, errors.NewDecodeError(FamilyOperation, len(data),
				fmt.Errorf("insert_char: want exactly one character, got %q", *env.Char))
		}
		return InsertChar{Char: r}, nil
	default:
		return nil, errors.NewDecodeError(FamilyOperation, len(data),
			fmt.Errorf("%w: %q", errors.ErrUnknownKind, env.Kind))
	}
}

// EncodeDrawCommand encodes cmd for the engine→UI mailbox.
func EncodeDrawCommand(cmd DrawCommand) ([]byte, error) {
	switch cmd := cmd.(type) {
	case RenderLine:
		if cmd.Line < 0 {
			return nil, errors.NewValidationError("line index must be non-negative").WithField("line").WithValue(cmd.Line)
		}
		line := uint64(cmd.Line)
		text := cmd.Text
		return codec.Marshal(drawCommandEnvelope{Kind: KindRenderLine, Line: &line, Text: &text})
	default:
		return nil, errors.NewValidationError("unsupported draw command").WithValue(fmt.Sprintf("%T", cmd))
	}
}

// DecodeDrawCommand decodes a payload read from the engine→UI mailbox.
func DecodeDrawCommand(data []byte) (DrawCommand, error) {
	var env drawCommandEnvelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, errors.NewDecodeError(FamilyDrawCommand, len(data), err)
	}

	switch env.Kind {
	case KindRenderLine:
		if env.Line == nil || env.Text == nil {
			return nil, errors.NewDecodeError(FamilyDrawCommand, len(data), fmt.Errorf("render_line: missing line or text"))
		}
		if *env.Line > math.MaxInt32 {
			return nil, errors.NewDecodeError(FamilyDrawCommand, len(data),
				fmt.Errorf("render_line: line %d out of range", *env.Line))
		}
		return RenderLine{Line: int(*env.Line), Text: *env.Text}, nil
	default:
		return nil, errors.NewDecodeError(FamilyDrawCommand, len(data),
			fmt.Errorf("%w: %q", errors.ErrUnknownKind, env.Kind))
	}
}
