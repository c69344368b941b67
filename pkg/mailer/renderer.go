package mailer

import (
	"fmt"
	"strconv"
	"strings"
)

// Renderer substitutes {{key}} placeholders with variable values.
//
// Substitution is literal and single-pass: markers without a matching
// variable are left untouched, and substituted values are never scanned
// for further markers.
type Renderer struct {
	filter func(string) string
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithValueFilter passes every stringified value through fn before it is
// substituted. Used to escape variables placed into HTML bodies.
func WithValueFilter(fn func(string) string) RendererOption {
	return func(r *Renderer) {
		r.filter = fn
	}
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render replaces every {{key}} in pattern with the value of vars[key].
func (r *Renderer) Render(pattern string, vars Variables) string {
	if len(vars) == 0 || !strings.Contains(pattern, "{{") {
		return pattern
	}

	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		s := stringify(value)
		if r.filter != nil {
			s = r.filter(s)
		}
		pairs = append(pairs, "{{"+key+"}}", s)
	}
	return strings.NewReplacer(pairs...).Replace(pattern)
}

// Render is the unfiltered package-level form of Renderer.Render.
func Render(pattern string, vars Variables) string {
	return (&Renderer{}).Render(pattern, vars)
}

// stringify converts a decoded JSON value (or any Go value) to its
// substitution text.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
