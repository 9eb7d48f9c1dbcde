// internal/engine/hybrid/literal.go
package hybrid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
	"github.com/law-makers/iemrank/internal/engine"
)

// DefaultEvalTimeout bounds how long a literal may run inside the VM
const DefaultEvalTimeout = 2 * time.Second

// MaxLiteralBytes caps the size of a relaxed literal handed to the VM.
// Strict JSON is not evaluated and is not subject to it.
const MaxLiteralBytes = 1 << 20

// DecodeLiteral turns a data literal captured from a page script into a JSON
// document. Strict JSON is returned as is. Anything else is evaluated as a
// JavaScript expression in an isolated VM and serialized with JSON.stringify,
// which accepts the relaxed forms pages ship (unquoted keys, single quotes,
// trailing commas). Only pure data literals are evaluated: calls, identifiers,
// functions and other expressions are rejected before the VM runs, so the
// work done is bounded by the span's size. Failures are DECODE errors.
func DecodeLiteral(span string, timeout time.Duration) ([]byte, error) {
	span = strings.TrimSpace(span)
	if span == "" {
		return nil, engine.NewEngineError(engine.ErrCodeDecode, "empty literal", nil)
	}
	if json.Valid([]byte(span)) {
		return []byte(span), nil
	}
	if len(span) > MaxLiteralBytes {
		return nil, engine.NewEngineError(engine.ErrCodeDecode, "literal too large to evaluate", nil).
			WithDetail("bytes", len(span))
	}
	if err := checkDataLiteral(span); err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeDecode, "literal is not plain data", err).
			WithDetail("bytes", len(span))
	}
	if timeout <= 0 {
		timeout = DefaultEvalTimeout
	}

	out, err := evaluate(span, timeout)
	if err != nil {
		return nil, engine.NewEngineError(engine.ErrCodeDecode, "literal is neither JSON nor a JS expression", err).
			WithDetail("bytes", len(span))
	}
	return out, nil
}

// checkDataLiteral parses span as a single JavaScript expression and accepts
// it only when it is built from array, object, string, number, boolean and
// null literals. The span is wrapped in an array literal so an object is not
// read as a block and a span like "1], [2" cannot smuggle a second element.
func checkDataLiteral(span string) error {
	program, err := parser.ParseFile(nil, "", "["+span+"\n]", 0)
	if err != nil {
		return err
	}
	if len(program.Body) != 1 {
		return fmt.Errorf("expected one expression, got %d statements", len(program.Body))
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return fmt.Errorf("expected an expression, got %T", program.Body[0])
	}
	wrapper, ok := stmt.Expression.(*ast.ArrayLiteral)
	if !ok || len(wrapper.Value) != 1 || wrapper.Value[0] == nil {
		return fmt.Errorf("expected exactly one value")
	}
	return checkValue(wrapper.Value[0])
}

func checkValue(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral:
		return nil
	case *ast.TemplateLiteral:
		if e.Tag != nil || len(e.Expressions) > 0 {
			return fmt.Errorf("template with substitutions")
		}
		return nil
	case *ast.UnaryExpression:
		if e.Operator != token.MINUS && e.Operator != token.PLUS {
			return fmt.Errorf("operator %s", e.Operator)
		}
		if _, ok := e.Operand.(*ast.NumberLiteral); !ok {
			return fmt.Errorf("sign applied to %T", e.Operand)
		}
		return nil
	case *ast.ArrayLiteral:
		for _, v := range e.Value {
			// holes serialize as null
			if v == nil {
				continue
			}
			if err := checkValue(v); err != nil {
				return err
			}
		}
		return nil
	case *ast.ObjectLiteral:
		for _, prop := range e.Value {
			keyed, ok := prop.(*ast.PropertyKeyed)
			if !ok {
				return fmt.Errorf("property %T", prop)
			}
			if keyed.Computed || keyed.Kind != ast.PropertyKindValue {
				return fmt.Errorf("computed or accessor property")
			}
			if err := checkValue(keyed.Value); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%T is not a data literal", expr)
	}
}

func evaluate(span string, timeout time.Duration) ([]byte, error) {
	vm := newSandbox()

	timer := time.AfterFunc(timeout, func() {
		vm.Interrupt("evaluation deadline exceeded")
	})
	defer timer.Stop()

	// parenthesized so an object literal is not read as a block
	value, err := vm.RunString("(" + span + "\n)")
	if err != nil {
		return nil, err
	}
	if goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, fmt.Errorf("literal evaluated to %s", value.String())
	}

	stringify, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))
	if !ok {
		return nil, fmt.Errorf("JSON.stringify unavailable")
	}
	encoded, err := stringify(goja.Undefined(), value)
	if err != nil {
		return nil, err
	}
	if goja.IsUndefined(encoded) {
		return nil, fmt.Errorf("literal is not serializable")
	}

	out := []byte(encoded.String())
	if !json.Valid(out) {
		return nil, fmt.Errorf("serialized literal is not valid JSON")
	}
	return bytes.TrimSpace(out), nil
}

// newSandbox creates a VM with the few browser globals inline data scripts
// tend to touch. Nothing in it reaches the network or filesystem.
func newSandbox() *goja.Runtime {
	vm := goja.New()
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }

	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("console", map[string]interface{}{
		"log":   noop,
		"warn":  noop,
		"error": noop,
	})
	return vm
}
