package fragment

import (
	"context"
	"errors"
	"html/template"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type htmler string

func (h htmler) HTML() (string, error) { return "<b>" + string(h) + "</b>", nil }

type streamed string

func (s streamed) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, "<i>"+string(s)+"</i>")
	return err
}

type brokenRender struct{}

func (brokenRender) Render(context.Context, io.Writer) error { return errors.New("render failed") }

type stringer int

func (s stringer) String() string { return "<span>n</span>" }

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "<p>a</p>", "<p>a</p>"},
		{"bytes", []byte("<p>b</p>"), "<p>b</p>"},
		{"template.HTML", template.HTML("<p>c</p>"), "<p>c</p>"},
		{"HTMLer", htmler("d"), "<b>d</b>"},
		{"Renderable", streamed("e"), "<i>e</i>"},
		{"Stringer", stringer(1), "<span>n</span>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toHTML(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToHTML_Errors(t *testing.T) {
	_, err := toHTML(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUnrenderable)
	assert.Contains(t, err.Error(), "int")

	_, err = toHTML(context.Background(), brokenRender{})
	assert.EqualError(t, err, "render failed")
}

func TestTemplateBuilder(t *testing.T) {
	tmpl := template.Must(template.New("greeting").Parse(`<p>Hello {{.}}</p>`))

	html, err := render(context.Background(), Template(tmpl, "greeting", "<World>"))
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello &lt;World&gt;</p>", html)

	_, err = render(context.Background(), Template(tmpl, "missing", nil))
	assert.Error(t, err)
}

func TestService_RememberHTML_NormalizesOutput(t *testing.T) {
	svc, store := newTestService(t)

	html, err := svc.RememberHTML(context.Background(), "7", func(context.Context) (any, error) {
		return streamed("cached"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "<i>cached</i>", html)

	got, err := store.Get(context.Background(), svc.Key("7"))
	require.NoError(t, err)
	assert.Equal(t, "<i>cached</i>", string(got))
}
