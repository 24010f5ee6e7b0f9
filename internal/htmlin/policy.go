package htmlin

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Transformer receives an allowed element after attribute filtering and may
// mutate it in place. Returning nil drops the element and its content.
type Transformer func(t *html.Token) *html.Token

// Policy decides what survives reading.
type Policy struct {
	// AllowedTags is the set of kept element names. Nil allows every
	// element the document model knows.
	AllowedTags map[string]bool

	// AllowedAttributes maps element names, or "*" for all of them, to the
	// attributes kept. Nil allows every attribute.
	AllowedAttributes map[string][]string

	// AllowedSchemes is the set of URL schemes kept in href, src, action and
	// cite. Nil means http, https and mailto.
	AllowedSchemes map[string]bool

	// StripDisallowed drops disallowed elements with their content instead
	// of writing their tags out as text.
	StripDisallowed bool

	Transformers []Transformer

	// Linkify turns URLs in text into hyperlinks.
	Linkify bool

	// MaxDepth, when positive, stops opening elements nested deeper than
	// this. Their content is kept.
	MaxDepth int

	// KeepUnknown reads elements the document model does not know as
	// plain inline containers instead of treating them as disallowed.
	KeepUnknown bool
}

var defaultSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

func (p *Policy) allowsTag(tag string) bool {
	return p.AllowedTags == nil || p.AllowedTags[tag]
}

func (p *Policy) filterAttrs(attrs []html.Attribute, tag string) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if !p.attrAllowed(a.Key, tag) {
			continue
		}
		if isURLAttribute(a.Key) && !p.schemeAllowed(a.Val) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func isURLAttribute(key string) bool {
	switch key {
	case "href", "src", "action", "cite":
		return true
	}
	return false
}

func (p *Policy) attrAllowed(attr, tag string) bool {
	if p.AllowedAttributes == nil {
		return true
	}
	for _, key := range []string{"*", tag} {
		for _, a := range p.AllowedAttributes[key] {
			if a == attr {
				return true
			}
		}
	}
	return false
}

func (p *Policy) schemeAllowed(raw string) bool {
	// Decode entities a second time to catch &amp;#106;avascript: tricks.
	decoded := strings.ToLower(strings.TrimSpace(html.UnescapeString(strings.TrimSpace(raw))))

	// Strip zero-width / control chars that can confuse parsers.
	decoded = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '\u200b' || r == '\ufeff' {
			return -1
		}
		return r
	}, decoded)

	u, err := url.Parse(decoded)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		// Relative URL, allow.
		return true
	}
	schemes := p.AllowedSchemes
	if schemes == nil {
		schemes = defaultSchemes
	}
	return schemes[scheme]
}
