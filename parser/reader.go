package parser

import (
	"strings"
	"unicode/utf8"
)

var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// reader owns the whole normalized source and a byte cursor into it.
type reader struct {
	src string
	pos int
	// set when the last Consume hit the end of input, so that Reconsume
	// hands EOF back again instead of rewinding into the text.
	atEOF bool
}

func newReader(src string) *reader {
	return &reader{src: normalizeNewlines(src)}
}

// https://infra.spec.whatwg.org/#normalize-newlines
func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	return newlineNormalizer.Replace(s)
}

// Consume returns the next code point, or eof once the input is exhausted.
// Consuming past the end keeps returning eof.
func (r *reader) Consume() (rune, bool) {
	if r.pos >= len(r.src) {
		r.atEOF = true
		return 0, true
	}
	c, w := utf8.DecodeRuneInString(r.src[r.pos:])
	r.pos += w
	r.atEOF = false
	return c, false
}

// Reconsume steps back over the last consumed code point so the next Consume
// returns it again. It never moves before the start of the input.
func (r *reader) Reconsume() {
	if r.atEOF {
		r.atEOF = false
		return
	}
	if r.pos == 0 {
		return
	}
	_, w := utf8.DecodeLastRuneInString(r.src[:r.pos])
	r.pos -= w
}

// HasPrefix reports whether the unconsumed input starts with s.
func (r *reader) HasPrefix(s string) bool {
	return strings.HasPrefix(r.src[r.pos:], s)
}

// HasPrefixFold is HasPrefix with ASCII case folding.
func (r *reader) HasPrefixFold(s string) bool {
	rest := r.src[r.pos:]
	return len(rest) >= len(s) && strings.EqualFold(rest[:len(s)], s)
}

// Skip advances over n bytes that were already matched with HasPrefix.
func (r *reader) Skip(n int) {
	r.pos += n
	if r.pos > len(r.src) {
		r.pos = len(r.src)
	}
	r.atEOF = false
}

// Remaining is the unconsumed input.
func (r *reader) Remaining() string {
	return r.src[r.pos:]
}

// Offset is the byte offset of the cursor in the normalized source.
func (r *reader) Offset() int {
	return r.pos
}
