package fragment

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

// PartSeparator joins identifier parts passed to BeginParts.
const PartSeparator = "|"

// Capture buffers markup written between Begin and End. End decides whether
// the buffer or a previously cached rendering is used.
//
//	c := svc.Begin("customer:123", fragment.WithVariant("sidebar"))
//	tmpl.Execute(c, data)
//	html, err := c.End(ctx)
//
// A Capture is not safe for concurrent writes.
type Capture struct {
	svc        *Service
	identifier string
	opts       []Option

	mu   sync.Mutex
	buf  bytes.Buffer
	done bool
}

// Begin starts capturing markup for identifier.
func (s *Service) Begin(identifier string, opts ...Option) *Capture {
	return &Capture{svc: s, identifier: identifier, opts: opts}
}

// BeginParts starts a capture whose identifier is parts joined with "|".
func (s *Service) BeginParts(parts []string, opts ...Option) *Capture {
	return s.Begin(strings.Join(parts, PartSeparator), opts...)
}

// Identifier returns the identifier the capture will be cached under.
func (c *Capture) Identifier() string {
	return c.identifier
}

// Write implements io.Writer. Writes after End fail with ErrCaptureClosed.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return 0, ErrCaptureClosed
	}
	return c.buf.Write(p)
}

// WriteString implements io.StringWriter.
func (c *Capture) WriteString(s string) (int, error) {
	return c.Write([]byte(s))
}

// End closes the capture and returns the cached fragment if present, the
// captured markup otherwise. On a hit the captured markup is discarded.
func (c *Capture) End(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return "", ErrCaptureClosed
	}
	c.done = true
	captured := c.buf.String()
	c.buf.Reset()
	c.mu.Unlock()

	return c.svc.RememberHTML(ctx, c.identifier, Static(captured), c.opts...)
}

// EndTo ends the capture and writes the result to w.
func (c *Capture) EndTo(ctx context.Context, w io.Writer) error {
	html, err := c.End(ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, html)
	return err
}
