package antixss

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/hangy/AntiXss-sub003/internal/complexity"
	"github.com/hangy/AntiXss-sub003/internal/htmlin"
)

// ErrDocumentTooComplex is returned, wrapped, when a document exceeds one of
// the configured Limits. Test for it with errors.Is.
var ErrDocumentTooComplex = complexity.ErrDocumentTooComplex

// Transformer is a function that receives an allowed start tag after
// attribute filtering and may mutate it in place (e.g., adding or removing
// attributes). Returning nil removes the element and its content from the
// output entirely.
type Transformer func(t *html.Token) *html.Token

// Policy defines what HTML is considered safe.
type Policy struct {
	// AllowedTags is the list of tag names that are kept in output.
	// All other element nodes are either stripped (removed entirely,
	// with their content) or escaped, depending on StripDisallowed.
	AllowedTags []string

	// AllowedAttributes maps tag names to the list of attribute names
	// that are kept on that tag. Use "*" as a key to allow attributes
	// on every tag. Style attributes are never copied verbatim: the
	// declarations the document model understands are re-emitted from
	// parsed values, everything else is dropped.
	AllowedAttributes map[string][]string

	// AllowedSchemes lists the URL schemes (e.g. "http", "https",
	// "mailto") permitted in href, src and cite attributes. Any URL
	// whose scheme is not in this list is removed from the attribute.
	AllowedSchemes []string

	// StripDisallowed controls behavior for disallowed element nodes.
	// When true the element and all its descendants are removed.
	// When false (default) the element tags are escaped to plain text
	// but descendants are still walked.
	StripDisallowed bool

	// Transformers is an optional slice of Transformer functions applied
	// in order to every allowed element after attribute filtering.
	Transformers []Transformer

	// Linkify converts plain-text URLs found in text into <a>
	// elements pointing to those URLs.
	Linkify bool

	// MaxDepth limits how deeply nested elements may be. Elements at
	// a depth greater than MaxDepth are dropped (children promoted).
	// Zero means unlimited.
	MaxDepth int
}

// DefaultPolicy returns a Policy that allows a common safe subset of
// HTML used in content: headings, paragraphs, formatting, lists,
// links, images, code and blockquotes. Script, style and other
// dangerous tags are rejected. Links and image sources must use http,
// https, or mailto.
func DefaultPolicy() *Policy {
	return &Policy{
		AllowedTags: []string{
			"h1", "h2", "h3", "h4", "h5", "h6",
			"p", "br", "hr",
			"b", "i", "em", "strong", "u", "s", "strike", "del", "ins",
			"a", "img",
			"ul", "ol", "li",
			"table", "thead", "tbody", "tfoot", "tr", "th", "td",
			"code", "pre", "kbd", "samp",
			"blockquote", "cite", "q",
			"figure", "figcaption",
			"div", "span", "section", "article", "header", "footer",
			"details", "summary",
			"abbr", "acronym", "address",
			"sup", "sub",
		},
		AllowedAttributes: map[string][]string{
			"a":          {"href", "title", "target", "rel"},
			"img":        {"src", "alt", "title", "width", "height"},
			"td":         {"colspan", "rowspan", "align", "valign"},
			"th":         {"colspan", "rowspan", "align", "valign", "scope"},
			"blockquote": {"cite"},
			"q":          {"cite"},
			"abbr":       {"title"},
			"acronym":    {"title"},
			"*":          {"id", "class", "lang", "dir", "style"},
		},
		AllowedSchemes:  []string{"http", "https", "mailto"},
		StripDisallowed: false,
	}
}

// StrictPolicy returns a Policy that allows only the most basic inline
// formatting tags with no attributes at all. It suits comment sections
// and user-generated content where you want minimal markup.
func StrictPolicy() *Policy {
	return &Policy{
		AllowedTags:       []string{"b", "i", "em", "strong", "br", "p", "ul", "ol", "li"},
		AllowedAttributes: map[string][]string{},
		AllowedSchemes:    []string{"https"},
		StripDisallowed:   true,
	}
}

// compile turns p into the lookup sets the reader consults. A nil slice or
// map allows nothing.
func (p *Policy) compile() *htmlin.Policy {
	attrs := p.AllowedAttributes
	if attrs == nil {
		attrs = map[string][]string{}
	}
	c := &htmlin.Policy{
		AllowedTags:       sliceToSet(p.AllowedTags),
		AllowedAttributes: attrs,
		AllowedSchemes:    sliceToSet(p.AllowedSchemes),
		StripDisallowed:   p.StripDisallowed,
		Linkify:           p.Linkify,
		MaxDepth:          p.MaxDepth,
	}
	for _, t := range p.Transformers {
		c.Transformers = append(c.Transformers, htmlin.Transformer(t))
	}
	return c
}

// Sanitize parses htmlStr, applies p, and returns the sanitized HTML.
// If p is nil, DefaultPolicy is used.
func Sanitize(htmlStr string, p *Policy) (string, error) {
	return SanitizeReader(strings.NewReader(htmlStr), p)
}

// SanitizeReader reads HTML from r, applies p, and returns the
// sanitized HTML string.
func SanitizeReader(r io.Reader, p *Policy) (string, error) {
	c, err := NewConverter(WithPolicy(p))
	if err != nil {
		return "", err
	}
	return c.SanitizeReader(r)
}

// StripTags removes all HTML tags and returns plain text. Entity
// references are decoded and blocks are separated by line breaks.
func StripTags(htmlStr string) (string, error) {
	c, err := NewConverter()
	if err != nil {
		return "", err
	}
	return c.StripTags(htmlStr)
}

// TextToHTML converts plain text to HTML: markup characters are escaped
// and line breaks become <br /> elements.
func TextToHTML(text string) (string, error) {
	c, err := NewConverter()
	if err != nil {
		return "", err
	}
	return c.TextToHTML(text)
}

// SetAttr sets (or adds) the attribute key=val on token t. It is
// intended for use inside Transformer functions.
func SetAttr(t *html.Token, key, val string) {
	for i, a := range t.Attr {
		if a.Key == key {
			t.Attr[i].Val = val
			return
		}
	}
	t.Attr = append(t.Attr, html.Attribute{Key: key, Val: val})
}

// GetAttr returns the value of the named attribute on t, or "" if not
// present.
func GetAttr(t *html.Token, key string) string {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// RemoveAttr removes the named attribute from t if present.
func RemoveAttr(t *html.Token, key string) {
	attrs := t.Attr[:0]
	for _, a := range t.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	t.Attr = attrs
}

// --- helpers ---------------------------------------------------------

func sliceToSet(s []string) map[string]bool {
	m := make(map[string]bool, len(s))
	for _, v := range s {
		m[strings.ToLower(v)] = true
	}
	return m
}
