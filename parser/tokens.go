package parser

import (
	"fmt"
	"strings"

	"github.com/heathj/based/parser/dom"
)

type tokenType uint

const (
	characterToken tokenType = iota
	startTagToken
	endTagToken
	endOfFileToken
	commentToken
	docTypeToken
)

var tokenTypeNames = [...]string{
	characterToken: "Character",
	startTagToken:  "StartTag",
	endTagToken:    "EndTag",
	endOfFileToken: "EOF",
	commentToken:   "Comment",
	docTypeToken:   "Doctype",
}

func (t tokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("tokenType(%d)", t)
}

// missing marks a doctype identifier that never appeared, which is different
// from an empty one.
const missing string = "MISSING"

// Token is a concrete token that is ready to be emitted.
type Token struct {
	TokenType        tokenType
	TagName          string
	Attributes       []dom.Attribute
	PublicIdentifier string
	SystemIdentifier string
	ForceQuirks      bool
	SelfClosing      bool
	Data             string
}

func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.TokenType {
	case characterToken:
		return fmt.Sprintf("Character{%q}", t.Data)
	case startTagToken:
		return fmt.Sprintf("StartTag{%s %v self-closing=%t}", t.TagName, t.Attributes, t.SelfClosing)
	case endTagToken:
		return fmt.Sprintf("EndTag{%s}", t.TagName)
	case commentToken:
		return fmt.Sprintf("Comment{%q}", t.Data)
	case docTypeToken:
		return fmt.Sprintf("Doctype{%s public=%q system=%q force-quirks=%t}",
			t.TagName, t.PublicIdentifier, t.SystemIdentifier, t.ForceQuirks)
	default:
		return t.TokenType.String()
	}
}

// TokenBuilder is the single "current token" slot. States write into it field
// by field and the finished value is copied out on emission.
type TokenBuilder struct {
	kind                   tokenType
	attributes             []dom.Attribute
	attributeKey           strings.Builder
	attributeValue         strings.Builder
	pendingAttribute       bool
	name                   strings.Builder
	data                   strings.Builder
	tempBuffer             strings.Builder
	publicID               strings.Builder
	systemID               strings.Builder
	selfClosing            bool
	forceQuirks            bool
	characterReferenceCode int
}

func newTokenBuilder() *TokenBuilder {
	return &TokenBuilder{}
}

// NewToken clears everything but the temporary buffer and starts a token of
// the given kind.
func (t *TokenBuilder) NewToken(kind tokenType) {
	t.kind = kind
	t.attributes = nil
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.pendingAttribute = false
	t.publicID.Reset()
	t.systemID.Reset()
	t.publicID.WriteString(missing)
	t.systemID.WriteString(missing)
	t.data.Reset()
	t.name.Reset()
	t.selfClosing = false
	t.forceQuirks = false
}

func (t *TokenBuilder) Kind() tokenType {
	return t.kind
}

func (t *TokenBuilder) IsTag() bool {
	return t.kind == startTagToken || t.kind == endTagToken
}

// EnableSelfClosing changes to the self-closing flag to "set".
func (t *TokenBuilder) EnableSelfClosing() {
	t.selfClosing = true
}

// EnableForceQuirks changes to the force-quirks flag to "set".
func (t *TokenBuilder) EnableForceQuirks() {
	t.forceQuirks = true
}

// SetPublicIdentifierEmpty turns a missing public identifier into a present,
// empty one.
func (t *TokenBuilder) SetPublicIdentifierEmpty() {
	t.publicID.Reset()
}

func (t *TokenBuilder) SetSystemIdentifierEmpty() {
	t.systemID.Reset()
}

func (t *TokenBuilder) WritePublicIdentifier(r rune) {
	t.publicID.WriteRune(r)
}

func (t *TokenBuilder) WriteSystemIdentifier(r rune) {
	t.systemID.WriteRune(r)
}

// StartAttribute commits any attribute in progress and begins a new one with
// an empty name and value. It reports whether the committed attribute was a
// duplicate and got dropped.
func (t *TokenBuilder) StartAttribute() bool {
	dup := t.CommitAttribute()
	t.pendingAttribute = true
	return dup
}

func (t *TokenBuilder) WriteAttributeName(r rune) {
	t.attributeKey.WriteRune(r)
}

func (t *TokenBuilder) WriteAttributeValue(r rune) {
	t.attributeValue.WriteRune(r)
}

func (t *TokenBuilder) WriteAttributeValueString(s string) {
	t.attributeValue.WriteString(s)
}

// CommitAttribute appends the attribute in progress to the list. An attribute
// whose name is already present is dropped and true is returned.
func (t *TokenBuilder) CommitAttribute() bool {
	if !t.pendingAttribute {
		return false
	}
	k := t.attributeKey.String()
	v := t.attributeValue.String()
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.pendingAttribute = false

	for _, a := range t.attributes {
		if a.Name == k {
			return true
		}
	}
	t.attributes = append(t.attributes, dom.Attribute{Name: k, Value: v})
	return false
}

func (t *TokenBuilder) WriteName(r rune) {
	t.name.WriteRune(r)
}

func (t *TokenBuilder) WriteData(r rune) {
	t.data.WriteRune(r)
}

func (t *TokenBuilder) WriteDataString(s string) {
	t.data.WriteString(s)
}

// WriteTempBuffer appends a character to the temporary buffer of the current
// state.
func (t *TokenBuilder) WriteTempBuffer(r rune) {
	t.tempBuffer.WriteRune(r)
}

func (t *TokenBuilder) ResetTempBuffer() {
	t.tempBuffer.Reset()
}

func (t *TokenBuilder) TempBuffer() string {
	return t.tempBuffer.String()
}

// TempBufferCharTokens turns the temporary buffer into one character token
// per code point.
func (t *TokenBuilder) TempBufferCharTokens() []Token {
	tokens := make([]Token, 0, t.tempBuffer.Len())
	for _, r := range t.tempBuffer.String() {
		tokens = append(tokens, t.CharacterToken(r))
	}
	return tokens
}

func (t *TokenBuilder) SetCharRef(i int) {
	t.characterReferenceCode = i
}

func (t *TokenBuilder) GetCharRef() int {
	return t.characterReferenceCode
}

// AccumulateCharRef shifts digit into the character reference code, clamping
// anything past the Unicode range so long inputs can't overflow.
func (t *TokenBuilder) AccumulateCharRef(base, digit int) {
	if t.characterReferenceCode > 0x10FFFF {
		return
	}
	t.characterReferenceCode = t.characterReferenceCode*base + digit
}

// Token copies the current token out of the builder.
func (t *TokenBuilder) Token() Token {
	switch t.kind {
	case startTagToken, endTagToken:
		t.CommitAttribute()
		tok := Token{
			TokenType:   t.kind,
			TagName:     t.name.String(),
			SelfClosing: t.selfClosing,
		}
		if len(t.attributes) > 0 {
			tok.Attributes = make([]dom.Attribute, len(t.attributes))
			copy(tok.Attributes, t.attributes)
		}
		return tok
	case docTypeToken:
		return Token{
			TokenType:        docTypeToken,
			TagName:          t.name.String(),
			ForceQuirks:      t.forceQuirks,
			PublicIdentifier: t.publicID.String(),
			SystemIdentifier: t.systemID.String(),
		}
	default:
		return Token{
			TokenType: commentToken,
			Data:      t.data.String(),
		}
	}
}

func (t *TokenBuilder) CharacterToken(r rune) Token {
	return Token{
		TokenType: characterToken,
		Data:      string(r),
	}
}

func (t *TokenBuilder) EndOfFileToken() Token {
	return Token{
		TokenType: endOfFileToken,
	}
}
