// Package htmlin reads HTML into a doctree.Document through a builder, applying
// a sanitizing Policy on the way.
//
// The input is tokenized, never parsed into a DOM: elements open and close
// builder containers as their tags stream by. Elements whose content is
// never wanted (script, style and friends, or anything disallowed when
// stripping) are skipped by depth counting. Disallowed elements are
// otherwise written out as literal text, so their markup shows but cannot
// execute.
package htmlin

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hangy/AntiXss-sub003/internal/builder"
	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/htmltags"
	"github.com/hangy/AntiXss-sub003/internal/props"
	"github.com/hangy/AntiXss-sub003/internal/textin"
)

// Options configure Read.
type Options struct {
	Builder builder.Options

	// Policy defaults to a Policy that allows everything the model knows.
	Policy *Policy
}

type elementMode uint8

const (
	// modeOpened elements own a builder container.
	modeOpened elementMode = iota
	// modeEscaped elements were written out as text.
	modeEscaped
	// modeIgnored elements contribute nothing but still nest.
	modeIgnored
	// modeTransparent elements do not count towards the depth limit.
	modeTransparent
)

type element struct {
	name  string
	tag   atom.Atom
	info  htmltags.Info
	mode  elementMode
	level int
	pre   bool
}

func (e *element) inline() bool {
	switch {
	case e.info.Kind == htmltags.Property:
		return true
	case e.info.Type == doctree.TypeInline, e.info.Type == doctree.TypeHyperlink:
		return true
	}
	return false
}

func (e *element) block() bool {
	return e.info.Type.IsBlock() || e.info.Type == doctree.TypeAny
}

type reader struct {
	b     *builder.Builder
	p     *Policy
	log   logrus.FieldLogger
	stack []element

	skip     int
	skipName string

	// spaced is set when the output ends with collapsible whitespace or a
	// line start, so further whitespace is dropped.
	spaced bool
	pre    int
	// preStart drops the newline right after a pre start tag.
	preStart bool
}

// Read tokenizes r and returns the document built from it.
func Read(r io.Reader, opts Options) (*doctree.Document, error) {
	if opts.Builder.TypeFixup == nil {
		opts.Builder.TypeFixup = fixupType
	}
	b, err := builder.New(opts.Builder)
	if err != nil {
		return nil, err
	}
	p := opts.Policy
	if p == nil {
		p = &Policy{}
	}
	rd := &reader{b: b, p: p, log: b.Logger(), spaced: true}
	if err := rd.run(html.NewTokenizer(textin.NewDecoder(r))); err != nil {
		return nil, err
	}
	if _, err := b.RevokeTrailingSpace(); err != nil {
		return nil, err
	}
	return b.Finish()
}

func (r *reader) run(z *html.Tokenizer) error {
	for {
		tt := z.Next()
		var err error
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return nil
			}
			return errors.Wrap(z.Err(), "tokenize html")
		case html.TextToken:
			if r.skip == 0 {
				err = r.text(string(z.Text()), r.p.Linkify)
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			err = r.startTag(&tok, raw, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			raw := string(z.Raw())
			tok := z.Token()
			err = r.endTag(&tok, raw)
		}
		if err != nil {
			return err
		}
	}
}

// rawText reports whether the tokenizer reads the content of the element
// as text even when its start tag is self-closing.
func rawText(name string) bool {
	switch name {
	case "iframe", "noembed", "noframes", "noscript", "plaintext", "script", "style", "textarea", "title", "xmp":
		return true
	}
	return false
}

func (r *reader) beginSkip(name, reason string) {
	r.skip, r.skipName = 1, name
	r.log.WithField("action", "drop_element").
		WithField("tag", name).
		WithField("reason", reason).
		Debug("dropping element with its content")
}

// depth returns the nesting depth a new element would have.
func (r *reader) depth() int {
	d := 1
	for i := range r.stack {
		if r.stack[i].mode != modeTransparent {
			d++
		}
	}
	return d
}

func (r *reader) startTag(t *html.Token, raw string, selfClosing bool) error {
	name := t.Data
	info, known := htmltags.Lookup(t.DataAtom)
	void := selfClosing || htmltags.IsVoidElement(name) || info.Kind == htmltags.Void || info.Kind == htmltags.LineBreak
	if r.skip > 0 {
		if name == r.skipName && !void {
			r.skip++
		}
		return nil
	}
	if !known && (r.p.KeepUnknown || t.DataAtom != 0 && r.p.AllowedTags[name]) {
		info, known = htmltags.Info{Type: doctree.TypeInline}, true
	}

	switch {
	case known && info.Kind == htmltags.Omit:
		if !void || rawText(name) {
			r.beginSkip(name, "unsafe")
		}
		return nil
	case known && info.Kind == htmltags.Transparent:
		if !void {
			r.stack = append(r.stack, element{name: name, tag: t.DataAtom, mode: modeTransparent})
		}
		return nil
	case !known || !r.p.allowsTag(name):
		if r.p.StripDisallowed {
			if !void {
				r.beginSkip(name, "disallowed")
			}
			return nil
		}
		r.log.WithField("action", "escape_element").WithField("tag", name).Debug("writing disallowed tag as text")
		if !void {
			r.stack = append(r.stack, element{name: name, tag: t.DataAtom, mode: modeEscaped})
		}
		return r.text(raw, false)
	case r.p.MaxDepth > 0 && r.depth() > r.p.MaxDepth:
		r.log.WithField("action", "flatten_element").WithField("tag", name).Debug("element nested too deep")
		if !void {
			r.stack = append(r.stack, element{name: name, tag: t.DataAtom, mode: modeIgnored})
		}
		return nil
	}

	t.Attr = r.p.filterAttrs(t.Attr, name)
	for _, tr := range r.p.Transformers {
		if t = tr(t); t == nil {
			if !void {
				r.beginSkip(name, "transformer")
			}
			return nil
		}
	}
	return r.open(t, info, void)
}

func (r *reader) open(t *html.Token, info htmltags.Info, void bool) error {
	block := info.Type.IsBlock() || info.Type == doctree.TypeAny
	if err := r.closeImplied(t.DataAtom, block); err != nil {
		return err
	}
	if info.Kind == htmltags.LineBreak {
		r.spaced = true
		return r.b.AddLineBreak(1)
	}
	if block {
		if _, err := r.b.RevokeTrailingSpace(); err != nil {
			return err
		}
		r.spaced = true
	}

	var err error
	switch {
	case info.Kind == htmltags.Property:
		err = r.b.OpenPropertyContainer(t.DataAtom)
	case t.DataAtom == atom.A && !hasAttr(t, "href") && hasAttr(t, "name"):
		err = r.b.OpenContainer(doctree.TypeBookmark, t.DataAtom, false)
	default:
		err = r.b.OpenContainer(info.Type, t.DataAtom, void)
	}
	if err != nil {
		return err
	}
	if err := r.setDefaults(info); err != nil {
		return err
	}
	if err := r.applyAttributes(t); err != nil {
		return err
	}
	if void {
		return r.b.CloseContainer()
	}
	e := element{name: t.Data, tag: t.DataAtom, info: info, mode: modeOpened, level: r.b.Depth()}
	if e.pre = r.b.Flags().IsOn(props.FlagPreformatted); e.pre {
		r.pre++
		r.preStart = true
	}
	r.stack = append(r.stack, e)
	return nil
}

func hasAttr(t *html.Token, key string) bool {
	for _, a := range t.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// implied lists, per tag, the open elements its start tag closes and the
// elements that stop the search.
var implied = map[atom.Atom]struct{ closes, scope []atom.Atom }{
	atom.Li:    {[]atom.Atom{atom.Li}, []atom.Atom{atom.Ul, atom.Ol, atom.Table}},
	atom.Dt:    {[]atom.Atom{atom.Dt, atom.Dd}, []atom.Atom{atom.Dl, atom.Table}},
	atom.Dd:    {[]atom.Atom{atom.Dt, atom.Dd}, []atom.Atom{atom.Dl, atom.Table}},
	atom.Tr:    {[]atom.Atom{atom.Tr}, []atom.Atom{atom.Table}},
	atom.Td:    {[]atom.Atom{atom.Td, atom.Th}, []atom.Atom{atom.Tr, atom.Table}},
	atom.Th:    {[]atom.Atom{atom.Td, atom.Th}, []atom.Atom{atom.Tr, atom.Table}},
	atom.Thead: {[]atom.Atom{atom.Thead, atom.Tbody, atom.Tfoot}, []atom.Atom{atom.Table}},
	atom.Tbody: {[]atom.Atom{atom.Thead, atom.Tbody, atom.Tfoot}, []atom.Atom{atom.Table}},
	atom.Tfoot: {[]atom.Atom{atom.Thead, atom.Tbody, atom.Tfoot}, []atom.Atom{atom.Table}},
	atom.A:     {[]atom.Atom{atom.A}, []atom.Atom{atom.Table}},
}

func hasAtom(list []atom.Atom, a atom.Atom) bool {
	for _, x := range list {
		if x == a {
			return true
		}
	}
	return false
}

// closeImplied closes the elements a new start tag ends implicitly: a
// paragraph before any block, a list item before the next one and so on.
func (r *reader) closeImplied(tag atom.Atom, block bool) error {
	rule, ok := implied[tag]
	for i := len(r.stack) - 1; i >= 0; i-- {
		e := &r.stack[i]
		if e.mode != modeOpened {
			continue
		}
		if ok {
			if hasAtom(rule.closes, e.tag) {
				return r.closeElement(i)
			}
			if hasAtom(rule.scope, e.tag) {
				return nil
			}
			continue
		}
		if !block {
			return nil
		}
		if e.tag == atom.P {
			return r.closeElement(i)
		}
		if !e.inline() {
			return nil
		}
	}
	return nil
}

func (r *reader) endTag(t *html.Token, raw string) error {
	name := t.Data
	if r.skip > 0 {
		if name == r.skipName {
			r.skip--
		}
		return nil
	}
	idx := -1
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		if t.DataAtom == atom.Br {
			return r.b.AddLineBreak(1)
		}
		return nil
	}
	switch r.stack[idx].mode {
	case modeOpened:
		return r.closeElement(idx)
	case modeEscaped:
		r.remove(idx)
		return r.text(raw, false)
	default:
		r.remove(idx)
		return nil
	}
}

func (r *reader) remove(idx int) {
	r.stack = append(r.stack[:idx], r.stack[idx+1:]...)
}

// closeElement closes the opened element at idx. Inline elements left open
// above an inline element are carried over past its end; anything else
// above it is closed with it.
func (r *reader) closeElement(idx int) error {
	e := r.stack[idx]
	overlap := e.inline() && idx < len(r.stack)-1
	for i := idx + 1; i < len(r.stack) && overlap; i++ {
		if above := &r.stack[i]; above.mode == modeOpened && !above.inline() {
			overlap = false
		}
	}
	if e.block() {
		if _, err := r.b.RevokeTrailingSpace(); err != nil {
			return err
		}
	}

	if overlap {
		keep := r.b.Depth() - e.level
		r.log.WithField("action", "close_overlapping").
			WithField("tag", e.name).
			WithField("kept", keep).
			Debug("end tag closes an element before its inner elements")
		if err := r.b.CloseOverlappingContainer(keep); err != nil {
			return err
		}
		if e.pre {
			r.pre--
		}
		r.remove(idx)
		for i := idx; i < len(r.stack); i++ {
			if r.stack[i].mode == modeOpened {
				r.stack[i].level--
			}
		}
		return nil
	}

	for i := idx; i < len(r.stack); i++ {
		if r.stack[i].pre {
			r.pre--
		}
	}
	if err := r.b.CloseContainerTo(e.level - 1); err != nil {
		return err
	}
	r.stack = r.stack[:idx]
	if e.block() {
		r.spaced = true
	}
	return nil
}

// fixupType resolves generic block containers from their display property.
func fixupType(tag atom.Atom, flags props.FlagProperties, list []props.Property) doctree.NodeType {
	switch props.Find(list, props.PropDisplay).Int() {
	case props.DisplayInline:
		return doctree.TypeInline
	case props.DisplayListItem:
		return doctree.TypeListItem
	}
	return doctree.TypeBlock
}
