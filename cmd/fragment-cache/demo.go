package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"

	"github.com/Sternrassler/html-fragment-cache/pkg/fragment"
)

// widgetBuilder renders the demo customer widget from markdown. goldmark's
// default renderer omits raw HTML in the input.
func widgetBuilder(md goldmark.Markdown, customer string, now func() time.Time) fragment.Builder {
	return func(context.Context) (any, error) {
		src := fmt.Sprintf("## Customer %s\n\nRendered at `%s`.\n", customer, now().UTC().Format(time.RFC3339))

		var buf bytes.Buffer
		if err := md.Convert([]byte(src), &buf); err != nil {
			return nil, fmt.Errorf("render widget: %w", err)
		}
		return template.HTML(buf.String()), nil
	}
}
