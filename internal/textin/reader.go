// Package textin reads plain text into a doctree.Document. Line breaks, tabs
// and spaces are kept as their own runs; URLs can be turned into links.
package textin

import (
	"bufio"
	"io"
	"regexp"

	"github.com/pkg/errors"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hangy/AntiXss-sub003/internal/builder"
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/props"
)

// URLPattern matches http/https URLs inside plain text.
var URLPattern = regexp.MustCompile(`https?://[^\s<>"]+[^\s<>".,;:!?)\]]`)

// Options configure Read.
type Options struct {
	Builder builder.Options
	Linkify bool
}

// NewDecoder returns r decoded to UTF-8. A UTF-8 or UTF-16 byte order mark
// selects the encoding and is removed; without one the input is UTF-8.
func NewDecoder(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// Read returns the document holding the text of r.
func Read(r io.Reader, opts Options) (*doctree.Document, error) {
	b, err := builder.New(opts.Builder)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(NewDecoder(r))
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if aerr := addLine(b, line, opts.Linkify); aerr != nil {
				return nil, aerr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read text")
		}
	}
	return b.Finish()
}

func addLine(b *builder.Builder, line string, linkify bool) error {
	if !linkify {
		return b.AddText(line)
	}
	last := 0
	for _, m := range URLPattern.FindAllStringIndex(line, -1) {
		if err := b.AddText(line[last:m[0]]); err != nil {
			return err
		}
		if err := AddLink(b, line[m[0]:m[1]]); err != nil {
			return err
		}
		last = m[1]
	}
	return b.AddText(line[last:])
}

// AddLink adds url as a hyperlink showing itself, marked rel="noopener
// noreferrer".
func AddLink(b *builder.Builder, url string) error {
	if err := b.OpenContainer(doctree.TypeHyperlink, atom.A, false); err != nil {
		return err
	}
	if err := b.SetStringProperty(props.PrecedenceAttribute, props.PropHyperlinkURL, url); err != nil {
		return err
	}
	if err := b.SetStringProperty(props.PrecedenceAttribute, props.PropRel, "noopener noreferrer"); err != nil {
		return err
	}
	if err := b.AddText(url); err != nil {
		return err
	}
	return b.CloseContainer()
}
