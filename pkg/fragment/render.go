package fragment

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
)

// Builder renders a fragment. It may return a string, []byte,
// template.HTML, an HTMLer, a Renderable or a fmt.Stringer.
type Builder func(ctx context.Context) (any, error)

// HTMLer is implemented by values that know their HTML form.
type HTMLer interface {
	HTML() (string, error)
}

// Renderable streams HTML to a writer. templ components satisfy it.
type Renderable interface {
	Render(ctx context.Context, w io.Writer) error
}

// Static returns a Builder yielding html.
func Static(html string) Builder {
	return func(context.Context) (any, error) { return html, nil }
}

// Template returns a Builder executing the named html/template.
func Template(t *template.Template, name string, data any) Builder {
	return func(context.Context) (any, error) {
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, name, data); err != nil {
			return nil, err
		}
		return template.HTML(buf.String()), nil
	}
}

// render runs build and converts its output to a string. Builder errors are
// returned unchanged.
func render(ctx context.Context, build Builder) (string, error) {
	out, err := build(ctx)
	if err != nil {
		return "", err
	}
	return toHTML(ctx, out)
}

func toHTML(ctx context.Context, v any) (string, error) {
	switch h := v.(type) {
	case nil:
		return "", nil
	case string:
		return h, nil
	case template.HTML:
		return string(h), nil
	case []byte:
		return string(h), nil
	case HTMLer:
		return h.HTML()
	case Renderable:
		var buf bytes.Buffer
		if err := h.Render(ctx, &buf); err != nil {
			return "", err
		}
		return buf.String(), nil
	case fmt.Stringer:
		return h.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnrenderable, v)
	}
}
