package action

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/flowcanvas/pkg/flow"
	flowio "github.com/matzehuels/flowcanvas/pkg/io"
)

var (
	// ErrUnknownType is returned for an envelope whose type names no action.
	ErrUnknownType = errors.New("unknown action type")

	// ErrInvalidPayload is returned when an action payload fails decoding or
	// validation.
	ErrInvalidPayload = errors.New("invalid action payload")
)

// Envelope is the wire form of an action: {"type": "...", "detail": {...}}.
// The detail of LoadFlow is a flow document as written by package io.
type Envelope struct {
	Type   string          `json:"type"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("elementtype", func(fl validator.FieldLevel) bool {
			t := flow.ElementType(fl.Field().String())
			return t.Valid() && !t.IsChild() && t != flow.ElementStart && t != flow.ElementRoot
		})
		_ = validate.RegisterValidation("connectortype", func(fl validator.FieldLevel) bool {
			return flow.ConnectorType(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Validate checks the payload of a against its struct tags. Element types
// must name a creatable canvas element and connector types a known role.
// History actions carry no payload and always validate.
func Validate(a Action) error {
	if a == nil {
		return fmt.Errorf("%w: nil action", ErrInvalidPayload)
	}
	if a.Type().IsHistory() {
		return nil
	}
	if err := validatorInstance().Struct(Deref(a)); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s: %s", ErrInvalidPayload, a.Type(), describe(verrs))
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, a.Type(), err)
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			parts[i] = fmt.Sprintf("%s fails %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			parts[i] = fmt.Sprintf("%s fails %s", fe.Namespace(), fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}

// Decode turns an envelope into a validated action value.
func Decode(env Envelope) (Action, error) {
	t, err := ParseType(env.Type)
	if err != nil {
		return nil, err
	}
	a, err := New(t)
	if err != nil {
		return nil, err
	}

	detail := bytes.TrimSpace(env.Detail)
	switch {
	case t == TypeLoadFlow:
		if len(detail) == 0 {
			return nil, fmt.Errorf("%w: %s: missing flow document", ErrInvalidPayload, t)
		}
		m, err := flowio.Unmarshal(detail)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, t, err)
		}
		a = &LoadFlow{Model: m}
	case len(detail) > 0 && !bytes.Equal(detail, []byte("null")):
		dec := json.NewDecoder(bytes.NewReader(detail))
		dec.DisallowUnknownFields()
		if err := dec.Decode(a); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, t, err)
		}
	}

	a = Deref(a)
	if err := Validate(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Encode returns the envelope of a.
func Encode(a Action) (Envelope, error) {
	if a = Deref(a); a == nil {
		return Envelope{}, fmt.Errorf("%w: nil action", ErrInvalidPayload)
	}
	env := Envelope{Type: string(a.Type())}
	switch v := a.(type) {
	case LoadFlow:
		if v.Model == nil {
			return Envelope{}, fmt.Errorf("%w: %s: nil model", ErrInvalidPayload, a.Type())
		}
		data, err := flowio.Marshal(v.Model)
		if err != nil {
			return Envelope{}, err
		}
		env.Detail = bytes.TrimSpace(data)
		return env, nil
	}
	if a.Type().IsHistory() {
		return env, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", a.Type(), err)
	}
	env.Detail = data
	return env, nil
}

// Unmarshal decodes one JSON envelope.
func Unmarshal(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return Decode(env)
}

// Marshal encodes a as a JSON envelope.
func Marshal(a Action) ([]byte, error) {
	env, err := Encode(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// ReadScript decodes an action script from r. A script is either a JSON
// array of envelopes or one envelope per line (blank lines and lines
// starting with # are skipped). Errors name the offending entry.
func ReadScript(r io.Reader) ([]Action, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var envs []Envelope
		if err := json.Unmarshal(trimmed, &envs); err != nil {
			return nil, fmt.Errorf("decode script: %w", err)
		}
		out := make([]Action, 0, len(envs))
		for i, env := range envs {
			a, err := Decode(env)
			if err != nil {
				return nil, fmt.Errorf("action %d: %w", i+1, err)
			}
			out = append(out, a)
		}
		return out, nil
	}

	var out []Action
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		a, err := Unmarshal([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, a)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return out, nil
}
