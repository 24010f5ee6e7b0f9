package antixss

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hangy/AntiXss-sub003/internal/builder"
	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/htmlin"
	"github.com/hangy/AntiXss-sub003/internal/htmlout"
	"github.com/hangy/AntiXss-sub003/internal/textin"
	"github.com/hangy/AntiXss-sub003/internal/textout"
)

// Converter runs conversions with one Config, Policy and logger. It holds
// no per-document state and is safe for concurrent use.
type Converter struct {
	cfg    Config
	policy *htmlin.Policy
	link   bool
	log    logrus.FieldLogger
}

// Option configures a Converter.
type Option func(*Converter)

// WithConfig sets the limits and output settings.
func WithConfig(cfg Config) Option {
	return func(c *Converter) { c.cfg = cfg }
}

// WithPolicy sets the policy HTML input is sanitized with. A nil policy
// means DefaultPolicy. The policy is read once; later changes to it have
// no effect on the Converter.
func WithPolicy(p *Policy) Option {
	return func(c *Converter) {
		if p == nil {
			p = DefaultPolicy()
		}
		c.policy = p.compile()
		c.link = p.Linkify
	}
}

// WithLogger sets the logger that recoveries from malformed input and
// aborted conversions are reported to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Converter) { c.log = l }
}

// NewConverter returns a Converter using DefaultConfig and DefaultPolicy
// unless options say otherwise.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{cfg: DefaultConfig()}
	WithPolicy(nil)(c)
	for _, o := range opts {
		o(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c, nil
}

func (c *Converter) builderOptions() builder.Options {
	return builder.Options{
		MaxNesting: c.cfg.Limits.MaxNesting,
		Document:   c.cfg.documentConfig(),
		Logger:     c.log,
	}
}

func (c *Converter) readHTML(r io.Reader, p *htmlin.Policy) (*doctree.Document, error) {
	doc, err := htmlin.Read(r, htmlin.Options{Builder: c.builderOptions(), Policy: p})
	return doc, c.check(err, "read html")
}

// check logs conversions aborted by a limit and wraps err with the step
// that failed.
func (c *Converter) check(err error, step string) error {
	if err == nil {
		return nil
	}
	if complexity.IsTooComplex(err) {
		c.log.WithField("action", "convert_abort").
			WithField("step", step).
			WithError(err).
			Warn("document exceeds conversion limits")
	}
	return errors.Wrap(err, step)
}

// SanitizeTo reads HTML from r and writes the sanitized HTML to w as it is
// rendered. It returns the number of bytes written.
func (c *Converter) SanitizeTo(w io.Writer, r io.Reader) (int64, error) {
	doc, err := c.readHTML(r, c.policy)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, htmlout.New(doc, c.htmlOptions()))
	return n, c.check(err, "write html")
}

// SanitizeReader reads HTML from r and returns the sanitized HTML.
func (c *Converter) SanitizeReader(r io.Reader) (string, error) {
	var sb strings.Builder
	if _, err := c.SanitizeTo(&sb, r); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Sanitize returns htmlStr sanitized.
func (c *Converter) Sanitize(htmlStr string) (string, error) {
	return c.SanitizeReader(strings.NewReader(htmlStr))
}

// StripTags returns the text content of htmlStr, ignoring the
// Converter's policy. Script, style and other non-content elements are
// dropped with what they contain.
func (c *Converter) StripTags(htmlStr string) (string, error) {
	doc, err := c.readHTML(strings.NewReader(htmlStr), &htmlin.Policy{KeepUnknown: true})
	if err != nil {
		return "", err
	}
	s, err := textout.Render(doc, textout.Options{
		ChunkSize: c.cfg.OutputChunkSize,
		MaxUndo:   c.cfg.Limits.UndoEntries,
	})
	return s, c.check(err, "write text")
}

// TextToHTML converts plain text to HTML. URLs become links when the
// Converter's policy sets Linkify.
func (c *Converter) TextToHTML(text string) (string, error) {
	doc, err := textin.Read(strings.NewReader(text), textin.Options{
		Builder: c.builderOptions(),
		Linkify: c.link,
	})
	if err != nil {
		return "", c.check(err, "read text")
	}
	s, err := htmlout.Render(doc, c.htmlOptions())
	return s, c.check(err, "write html")
}

func (c *Converter) htmlOptions() htmlout.Options {
	return htmlout.Options{
		ChunkSize: c.cfg.OutputChunkSize,
		MaxUndo:   c.cfg.Limits.UndoEntries,
	}
}
