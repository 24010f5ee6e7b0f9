package htmlin

import (
	"strings"

	"github.com/hangy/AntiXss-sub003/internal/doctree"
	"github.com/hangy/AntiXss-sub003/internal/textin"
)

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// inTableStructure reports whether text would land directly inside a table,
// section or row, where it has no place.
func (r *reader) inTableStructure() bool {
	switch r.b.TopType() {
	case doctree.TypeTable, doctree.TypeTableSection, doctree.TypeTableRow, doctree.TypeTableColumnGroup:
		return true
	}
	return false
}

func (r *reader) text(s string, linkify bool) error {
	if r.pre > 0 {
		if r.preStart && strings.HasPrefix(s, "\n") {
			s = s[1:]
		}
		r.preStart = false
		r.spaced = false
		return r.b.AddText(s)
	}
	if r.inTableStructure() {
		if strings.TrimLeft(s, " \t\n\r\f") == "" {
			return nil
		}
		return r.foster(s, linkify)
	}
	return r.collapse(s, linkify)
}

// collapse adds s with every whitespace sequence folded into one space,
// dropping whitespace after a line start or a previous space.
func (r *reader) collapse(s string, linkify bool) error {
	for i := 0; i < len(s); {
		if isSpace(s[i]) {
			for i < len(s) && isSpace(s[i]) {
				i++
			}
			if !r.spaced {
				if err := r.b.AddSpace(1); err != nil {
					return err
				}
				r.spaced = true
			}
			continue
		}
		j := i
		for j < len(s) && !isSpace(s[j]) {
			j++
		}
		if err := r.word(s[i:j], linkify); err != nil {
			return err
		}
		r.spaced = false
		i = j
	}
	return nil
}

// foster places stray table text in a block right before the table.
func (r *reader) foster(s string, linkify bool) error {
	r.log.WithField("action", "foster_text").Debug("moving stray table text before the table")
	if err := r.b.OpenOutOfOrderContainer(doctree.TypeBlock, 0, doctree.TypeTable); err != nil {
		return err
	}
	r.spaced = true
	level := r.b.Depth()
	if err := r.collapse(s, linkify); err != nil {
		return err
	}
	if _, err := r.b.RevokeTrailingSpace(); err != nil {
		return err
	}
	r.spaced = true
	return r.b.CloseContainerTo(level - 1)
}

func (r *reader) word(w string, linkify bool) error {
	if !linkify || r.b.FindOpenType(doctree.TypeHyperlink) != 0 {
		return r.b.AddText(w)
	}
	last := 0
	for _, m := range textin.URLPattern.FindAllStringIndex(w, -1) {
		link := w[m[0]:m[1]]
		if !r.p.schemeAllowed(link) {
			continue
		}
		if err := r.b.AddText(w[last:m[0]]); err != nil {
			return err
		}
		if err := textin.AddLink(r.b, link); err != nil {
			return err
		}
		last = m[1]
	}
	return r.b.AddText(w[last:])
}
