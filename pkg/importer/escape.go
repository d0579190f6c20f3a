package importer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// unquoteJS decodes a single- or double-quoted JavaScript string literal.
func unquoteJS(raw string) (string, error) {
	if len(raw) < 2 || raw[len(raw)-1] != raw[0] {
		return "", fmt.Errorf("unterminated string")
	}
	return decodeEscapes(raw[1:len(raw)-1], false)
}

// cookTemplate returns the value of a template literal without
// substitutions. Raw line breaks are normalized to \n.
func cookTemplate(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '`' || raw[len(raw)-1] != '`' {
		return "", fmt.Errorf("unterminated template literal")
	}
	return decodeEscapes(raw[1:len(raw)-1], true)
}

func decodeEscapes(body string, template bool) (string, error) {
	if !strings.ContainsAny(body, "\\\r") {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		ch := body[i]
		if ch == '\r' && template {
			b.WriteByte('\n')
			i++
			if i < len(body) && body[i] == '\n' {
				i++
			}
			continue
		}
		if ch != '\\' {
			b.WriteByte(ch)
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", fmt.Errorf("trailing backslash")
		}

		esc := body[i+1]
		i += 2
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			if i < len(body) && isDigit(body[i]) {
				return "", fmt.Errorf("octal escape sequences are not supported")
			}
			b.WriteByte(0)
		case '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return "", fmt.Errorf("octal escape sequences are not supported")
		case 'x':
			if i+2 > len(body) {
				return "", fmt.Errorf("invalid \\x escape")
			}
			n, err := strconv.ParseUint(body[i:i+2], 16, 8)
			if err != nil {
				return "", fmt.Errorf("invalid \\x escape %q", body[i:i+2])
			}
			b.WriteRune(rune(n))
			i += 2
		case 'u':
			r, next, err := readUnicodeEscape(body, i)
			if err != nil {
				return "", err
			}
			i = next
			// A high surrogate followed by a low one encodes a single code point.
			if utf16.IsSurrogate(r) && r < 0xDC00 && strings.HasPrefix(body[i:], `\u`) {
				if lo, after, err := readUnicodeEscape(body, i+2); err == nil {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r, i = pair, after
					}
				}
			}
			b.WriteRune(r)
		case '\r':
			// Line continuation.
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case '\n':
		default:
			// Identity escape, including U+2028 and U+2029 continuations.
			r, size := utf8.DecodeRuneInString(body[i-1:])
			if r != '\u2028' && r != '\u2029' {
				b.WriteRune(r)
			}
			i += size - 1
		}
	}
	return b.String(), nil
}

// readUnicodeEscape reads the digits of \uHHHH or \u{H...} starting at i,
// just after the "u".
func readUnicodeEscape(body string, i int) (rune, int, error) {
	if i < len(body) && body[i] == '{' {
		end := strings.IndexByte(body[i:], '}')
		if end < 2 {
			return 0, 0, fmt.Errorf("invalid \\u{} escape")
		}
		digits := body[i+1 : i+end]
		n, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || n > utf8.MaxRune {
			return 0, 0, fmt.Errorf("invalid code point \\u{%s}", digits)
		}
		return rune(n), i + end + 1, nil
	}
	if i+4 > len(body) {
		return 0, 0, fmt.Errorf("invalid \\u escape")
	}
	n, err := strconv.ParseUint(body[i:i+4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid \\u escape %q", body[i:i+4])
	}
	return rune(n), i + 4, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
