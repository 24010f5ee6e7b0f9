package htmlin

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/gorilla/css/scanner"

	"github.com/hangy/AntiXss-sub003/internal/props"
)

// declaration is one "name: value" pair of a style attribute.
type declaration struct {
	name, value string
}

// scanStyle splits a style attribute into declarations. Names are
// lower-cased, comments and "!important" are dropped. Quoted strings are
// single tokens, so a ";" inside one does not end a declaration. Scanning
// stops at the first token the scanner rejects or at an unterminated
// comment.
func scanStyle(s string) []declaration {
	var (
		out    []declaration
		name   string
		value  string
		colon  bool
		broken bool
		prev   string
	)
	flush := func() {
		v := strings.TrimSpace(value)
		if l := len(v) - len("!important"); l >= 0 && strings.EqualFold(v[l:], "!important") {
			v = strings.TrimSpace(v[:l])
		}
		if !broken && colon && name != "" && v != "" {
			out = append(out, declaration{name, v})
		}
		name, value, colon, broken = "", "", false, false
	}
	sc := scanner.New(s)
	for {
		tok := sc.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			flush()
			return out
		case scanner.TokenError:
			return out
		}
		if tok.Type == scanner.TokenChar {
			switch {
			case tok.Value == ";":
				flush()
				prev = ""
				continue
			case tok.Value == "*" && prev == "/":
				value = strings.TrimSuffix(value, "/")
				flush()
				return out
			}
			prev = tok.Value
		} else {
			prev = ""
		}
		switch {
		case broken:
		case colon:
			if tok.Type == scanner.TokenS || tok.Type == scanner.TokenComment {
				if !strings.HasSuffix(value, " ") {
					value += " "
				}
				continue
			}
			value += tok.Value
		case tok.Type == scanner.TokenS || tok.Type == scanner.TokenComment:
		case name == "" && tok.Type == scanner.TokenIdent:
			name = strings.ToLower(tok.Value)
		case name != "" && tok.Type == scanner.TokenChar && tok.Value == ":":
			colon = true
		default:
			broken = true
		}
	}
}

var namedColors = map[string]uint32{
	"black":   0x000000,
	"white":   0xffffff,
	"red":     0xff0000,
	"lime":    0x00ff00,
	"green":   0x008000,
	"blue":    0x0000ff,
	"yellow":  0xffff00,
	"aqua":    0x00ffff,
	"cyan":    0x00ffff,
	"fuchsia": 0xff00ff,
	"magenta": 0xff00ff,
	"silver":  0xc0c0c0,
	"gray":    0x808080,
	"grey":    0x808080,
	"maroon":  0x800000,
	"olive":   0x808000,
	"purple":  0x800080,
	"teal":    0x008080,
	"navy":    0x000080,
	"orange":  0xffa500,
}

// parseColor reads #rgb, #rrggbb, rgb(r, g, b) and the basic named colors.
func parseColor(s string) (props.Value, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if rgb, ok := namedColors[s]; ok {
		return props.Color(rgb), true
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return props.Null, false
		}
		var rgb uint32
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return props.Null, false
			}
			rgb = rgb<<8 | uint32(n)
		}
		return props.Color(rgb), true
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return props.Null, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return props.Null, false
	}
	return props.Color(uint32(n)), true
}

// parseLength reads a CSS or attribute length. Bare numbers are pixels. em
// units are only accepted where allowEm is set and become percentages.
func parseLength(s string, allowEm bool) (props.Value, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	unit := props.Pixels
	switch {
	case strings.HasSuffix(s, "px"):
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "pt"):
		s, unit = s[:len(s)-2], props.Points
	case strings.HasSuffix(s, "%"):
		s, unit = s[:len(s)-1], props.Percentage
	case strings.HasSuffix(s, "em") && allowEm:
		s = s[:len(s)-2]
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || f < 0 {
			return props.Null, false
		}
		return props.Percentage(int(math.Round(f * 100))), true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || f > math.MaxInt32 {
		return props.Null, false
	}
	return unit(int(math.Round(f))), true
}

// fontFamily validates a family list: comma separated entries, each a run
// of identifiers or one quoted string holding only letters, digits, spaces,
// hyphens and underscores. It returns the list with whitespace normalized.
func fontFamily(s string) (string, bool) {
	var (
		families []string
		words    []string
		quoted   string
	)
	entry := func() bool {
		switch {
		case quoted != "" && len(words) == 0:
			families = append(families, quoted)
		case quoted == "" && len(words) > 0:
			families = append(families, strings.Join(words, " "))
		default:
			return false
		}
		words, quoted = nil, ""
		return true
	}
	sc := scanner.New(s)
	for {
		tok := sc.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			if !entry() {
				return "", false
			}
			return strings.Join(families, ", "), true
		case scanner.TokenS, scanner.TokenComment:
		case scanner.TokenIdent:
			if quoted != "" || strings.ContainsRune(tok.Value, '\\') {
				return "", false
			}
			words = append(words, tok.Value)
		case scanner.TokenString:
			if quoted != "" || len(words) > 0 || len(tok.Value) < 2 || !familyNameOK(tok.Value[1:len(tok.Value)-1]) {
				return "", false
			}
			quoted = tok.Value
		case scanner.TokenChar:
			if tok.Value != "," || !entry() {
				return "", false
			}
		default:
			return "", false
		}
	}
}

func familyNameOK(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

// fontSizes maps the legacy size attribute 1..7 to points.
var fontSizes = [...]int{0, 8, 10, 12, 14, 18, 24, 36}

func parseFontSize(s string) (props.Value, bool) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(strings.TrimLeft(s, "+-"))
	if err != nil {
		return props.Null, false
	}
	switch {
	case strings.HasPrefix(s, "+"):
		n = 3 + n
	case strings.HasPrefix(s, "-"):
		n = 3 - n
	}
	if n < 1 {
		n = 1
	} else if n > 7 {
		n = 7
	}
	return props.Points(fontSizes[n]), true
}

var listTypes = map[string]int{
	"1": props.ListDecimal,
	"a": props.ListLowerAlpha,
	"A": props.ListUpperAlpha,
	"i": props.ListLowerRoman,
	"I": props.ListUpperRoman,
}

// parseListType reads the type attribute of ol, ul and li.
func parseListType(s string) (props.Value, bool) {
	if n, ok := listTypes[strings.TrimSpace(s)]; ok {
		return props.Enum(n), true
	}
	return props.ParseEnum(props.PropListStyle, s)
}
