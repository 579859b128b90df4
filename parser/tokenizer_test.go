package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/heathj/based/parser/dom"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, in string, state tokenizerState) ([]Token, []ErrorRecord) {
	t.Helper()
	p := NewHTMLTokenizer(in, DefaultConfig())
	p.SetState(state)
	tokens, err := p.Tokenize()
	require.NoError(t, err)
	return tokens, p.Errors()
}

func errorKinds(records []ErrorRecord) []ParsingError {
	var kinds []ParsingError
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}
	return kinds
}

// charData joins the data of every character token.
func charData(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		if tok.TokenType == characterToken {
			sb.WriteString(tok.Data)
		}
	}
	return sb.String()
}

func chars(s string) []Token {
	var tokens []Token
	for _, r := range s {
		tokens = append(tokens, Token{TokenType: characterToken, Data: string(r)})
	}
	return tokens
}

func startTag(name string, attrs ...dom.Attribute) Token {
	return Token{TokenType: startTagToken, TagName: name, Attributes: attrs}
}

func endTag(name string) Token {
	return Token{TokenType: endTagToken, TagName: name}
}

func comment(data string) Token {
	return Token{TokenType: commentToken, Data: data}
}

var eofToken = Token{TokenType: endOfFileToken}

func seq(parts ...interface{}) []Token {
	var tokens []Token
	for _, p := range parts {
		switch v := p.(type) {
		case Token:
			tokens = append(tokens, v)
		case []Token:
			tokens = append(tokens, v...)
		}
	}
	return tokens
}

func TestTokenizeSequence(t *testing.T) {
	tests := []struct {
		in   string
		want []Token
	}{
		{"<p>hi</p>", seq(startTag("p"), chars("hi"), endTag("p"), eofToken)},
		{"<DIV>", seq(startTag("div"), eofToken)},
		{`<Div CLASS="x">`, seq(startTag("div", dom.Attribute{Name: "class", Value: "x"}), eofToken)},
		{"<br/>", seq(Token{TokenType: startTagToken, TagName: "br", SelfClosing: true}, eofToken)},
		{"a<!-- b -->c", seq(chars("a"), comment(" b "), chars("c"), eofToken)},
		{"", seq(eofToken)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, errs := tokenize(t, tt.in, dataState)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
			assert.Empty(t, errs)
		})
	}
}

// TestTokenizerAttributeAccuracy makes sure attributes come out in source
// order with the right names and values.
func TestTokenizerAttributeAccuracy(t *testing.T) {
	tests := []struct {
		in    string
		attrs []dom.Attribute
	}{
		{"<head></head>", nil},
		{"<script src='123' onload='test'></script>", []dom.Attribute{{Name: "src", Value: "123"}, {Name: "onload", Value: "test"}}},
		{"<a href='https://google.com' onclick='alert(1)'>Click this</a>", []dom.Attribute{{Name: "href", Value: "https://google.com"}, {Name: "onclick", Value: "alert(1)"}}},
		{"<script src='123' src='456'></script>", []dom.Attribute{{Name: "src", Value: "123"}}},
		{"<script src=123 onload=test></script>", []dom.Attribute{{Name: "src", Value: "123"}, {Name: "onload", Value: "test"}}},
		{"<script =src='123'onload='test' ></script>", []dom.Attribute{{Name: "=src", Value: "123"}, {Name: "onload", Value: "test"}}},
		{"<script src></script>", []dom.Attribute{{Name: "src"}}},
		{"<script src test></script>", []dom.Attribute{{Name: "src"}, {Name: "test"}}},
		{"<script 'asd></script>", []dom.Attribute{{Name: "'asd"}}},
		{"<script <asd></script>", []dom.Attribute{{Name: "<asd"}}},
		{"<script ABC=123></script>", []dom.Attribute{{Name: "abc", Value: "123"}}},
		{"<script abc='\u0000123'></script>", []dom.Attribute{{Name: "abc", Value: "\uFFFD123"}}},
		{"<script abc=></script>", []dom.Attribute{{Name: "abc"}}},
		{"<script\tabc=123></script>", []dom.Attribute{{Name: "abc", Value: "123"}}},
		{`<a href="?a=1&copy=2">`, []dom.Attribute{{Name: "href", Value: "?a=1&copy=2"}}},
		{`<a title="&amp;&lt;">`, []dom.Attribute{{Name: "title", Value: "&<"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			tokens, _ := tokenize(t, tt.in, dataState)
			require.NotEmpty(t, tokens)
			assert.Equal(t, tt.attrs, tokens[0].Attributes)
		})
	}
}

func TestTokenizerErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		state tokenizerState
		want  []Token
		errs  []ParsingError
	}{
		{"null in tag name", "<a\u0000b>", dataState,
			seq(startTag("a\uFFFDb"), eofToken), []ParsingError{UnexpectedNullCharacter}},
		{"null in comment", "<!--\u0000-->", dataState,
			seq(comment("\uFFFD"), eofToken), []ParsingError{UnexpectedNullCharacter}},
		{"null in rawtext", "a\u0000b", rawTextState,
			seq(chars("a\uFFFDb"), eofToken), []ParsingError{UnexpectedNullCharacter}},
		{"null in rcdata", "\u0000", rcDataState,
			seq(chars("\uFFFD"), eofToken), []ParsingError{UnexpectedNullCharacter}},
		{"null in data is kept", "\u0000", dataState,
			seq(chars("\u0000"), eofToken), []ParsingError{UnexpectedNullCharacter}},
		{"eof in tag", "<div class=", dataState,
			seq(eofToken), []ParsingError{EOFInTag}},
		{"eof before tag name", "<", dataState,
			seq(chars("<"), eofToken), []ParsingError{EOFBeforeTagName}},
		{"eof in comment", "<!--a", dataState,
			seq(comment("a"), eofToken), []ParsingError{EOFInComment}},
		{"abrupt empty comment", "<!-->", dataState,
			seq(comment(""), eofToken), []ParsingError{AbruptClosingOfEmptyComment}},
		{"incorrectly closed comment", "<!--a--!>", dataState,
			seq(comment("a"), eofToken), []ParsingError{IncorrectlyClosedComment}},
		{"nested comment", "<!--<!--x-->", dataState,
			seq(comment("<!--x"), eofToken), []ParsingError{NestedComment}},
		{"question mark", "<?xml?>", dataState,
			seq(comment("?xml?"), eofToken), []ParsingError{UnexpectedQuestionMarkInsteadOfTagName}},
		{"cdata", "<![CDATA[x]]>", dataState,
			seq(comment("[CDATA[x]]"), eofToken), []ParsingError{CDATAInHTMLContent}},
		{"incorrectly opened comment", "<!x>", dataState,
			seq(comment("x"), eofToken), []ParsingError{IncorrectlyOpenedComment}},
		{"invalid first character", "<1>", dataState,
			seq(chars("<1>"), eofToken), []ParsingError{InvalidFirstCharacterOfTagName}},
		{"missing end tag name", "</>", dataState,
			seq(eofToken), []ParsingError{MissingEndTagName}},
		{"duplicate attribute", "<p a=1 a=2>", dataState,
			seq(startTag("p", dom.Attribute{Name: "a", Value: "1"}), eofToken), []ParsingError{DuplicateAttribute}},
		{"end tag attributes", "</p class=x>", dataState,
			seq(endTag("p"), eofToken), []ParsingError{EndTagWithAttributes}},
		{"end tag solidus", "</p/>", dataState,
			seq(endTag("p"), eofToken), []ParsingError{EndTagWithTrailingSolidus}},
		{"missing whitespace between attributes", `<p a="1"b="2">`, dataState,
			seq(startTag("p", dom.Attribute{Name: "a", Value: "1"}, dom.Attribute{Name: "b", Value: "2"}), eofToken),
			[]ParsingError{MissingWhitespaceBetweenAttributes}},
		{"unexpected solidus", "<p / a>", dataState,
			seq(startTag("p", dom.Attribute{Name: "a"}), eofToken), []ParsingError{UnexpectedSolidusInTag}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, errs := tokenize(t, tt.in, tt.state)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.errs, errorKinds(errs))
		})
	}
}

func TestRawTextEndTag(t *testing.T) {
	tests := []struct {
		state tokenizerState
		in    string
		want  []Token
	}{
		{rawTextState, "a{color:<b>}</style>x", seq(chars("a{color:<b>}"), endTag("style"), chars("x"), eofToken)},
		{rawTextState, "</b></style>", seq(chars("</b>"), endTag("style"), eofToken)},
		{rawTextState, "</STYLE >", seq(endTag("style"), eofToken)},
		{rawTextState, "</styles>", seq(chars("</styles>"), eofToken)},
		{rcDataState, "a &amp; b</style>", seq(chars("a & b"), endTag("style"), eofToken)},
		{rawTextState, "a &amp; b", seq(chars("a &amp; b"), eofToken)},
		{rawTextState, "<", seq(chars("<"), eofToken)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("%s-%s", tt.state, tt.in), func(t *testing.T) {
			t.Parallel()
			p := NewHTMLTokenizer(tt.in, DefaultConfig())
			p.lastEmittedStartTagName = "style"
			p.SetState(tt.state)
			got, err := p.Tokenize()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDoctypeTokens(t *testing.T) {
	tests := []struct {
		in   string
		want Token
		errs []ParsingError
	}{
		{"<!DOCTYPE html>", Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: missing, SystemIdentifier: missing}, nil},
		{"<!doctype HTML>", Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: missing, SystemIdentifier: missing}, nil},
		{`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd">`, Token{
			TokenType:        docTypeToken,
			TagName:          "html",
			PublicIdentifier: "-//W3C//DTD HTML 4.01//EN",
			SystemIdentifier: "http://www.w3.org/TR/html4/strict.dtd",
		}, nil},
		{"<!DOCTYPE html SYSTEM 'about:legacy-compat'>", Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: missing, SystemIdentifier: "about:legacy-compat"}, nil},
		{`<!DOCTYPE html PUBLIC "">`, Token{TokenType: docTypeToken, TagName: "html", SystemIdentifier: missing}, nil},
		{"<!DOCTYPE>", Token{TokenType: docTypeToken, PublicIdentifier: missing, SystemIdentifier: missing, ForceQuirks: true},
			[]ParsingError{MissingDoctypeName}},
		{"<!DOCTYPEhtml>", Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: missing, SystemIdentifier: missing},
			[]ParsingError{MissingWhitespaceBeforeDoctypeName}},
		{"<!DOCTYPE html bogus>", Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: missing, SystemIdentifier: missing, ForceQuirks: true},
			[]ParsingError{InvalidCharacterSequenceAfterDoctypeName}},
		{`<!DOCTYPE html PUBLIC"x">`, Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: "x", SystemIdentifier: missing},
			[]ParsingError{MissingWhitespaceAfterDoctypePublicKeyword}},
		{`<!DOCTYPE html PUBLIC "x>`, Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: "x", SystemIdentifier: missing, ForceQuirks: true},
			[]ParsingError{AbruptDoctypePublicIdentifier}},
		{`<!DOCTYPE html SYSTEM "x" y>`, Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: missing, SystemIdentifier: "x"},
			[]ParsingError{UnexpectedCharacterAfterDoctypeSystemIdentifier}},
		{"<!DOCTYPE html", Token{TokenType: docTypeToken, TagName: "html", PublicIdentifier: missing, SystemIdentifier: missing, ForceQuirks: true},
			[]ParsingError{EOFInDoctype}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, errs := tokenize(t, tt.in, dataState)
			if diff := cmp.Diff(seq(tt.want, eofToken), got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.errs, errorKinds(errs))
		})
	}
}

func TestCharacterReferences(t *testing.T) {
	tests := []struct {
		in   string
		out  string
		errs []ParsingError
	}{
		{"&amp;", "&", nil},
		{"&lt", "<", []ParsingError{MissingSemicolonAfterCharacterReference}},
		{"&ampx", "&x", []ParsingError{MissingSemicolonAfterCharacterReference}},
		{"&notit;", "¬it;", []ParsingError{MissingSemicolonAfterCharacterReference}},
		{"&notin;", "∉", nil},
		{"&NotEqualTilde;", "≂̸", nil},
		{"&#x41;", "A", nil},
		{"&#X61;", "a", nil},
		{"&#65;", "A", nil},
		{"&#65", "A", []ParsingError{MissingSemicolonAfterCharacterReference}},
		{"&#0;", "\uFFFD", []ParsingError{NullCharacterReference}},
		{"&#x110000;", "\uFFFD", []ParsingError{CharacterReferenceOutsideUnicodeRange}},
		{"&#99999999999999;", "\uFFFD", []ParsingError{CharacterReferenceOutsideUnicodeRange}},
		{"&#xD800;", "\uFFFD", []ParsingError{SurrogateCharacterReference}},
		{"&#x80;", "€", []ParsingError{ControlCharacterReference}},
		{"&#x81;", "\u0081", []ParsingError{ControlCharacterReference}},
		{"&#xFFFF;", "\uFFFF", []ParsingError{NoncharacterCharacterReference}},
		{"&#;", "&#;", []ParsingError{AbsenceOfDigitsInNumericCharacterReference}},
		{"&#x;", "&#x;", []ParsingError{AbsenceOfDigitsInNumericCharacterReference}},
		{"&foo;", "&foo;", []ParsingError{UnknownNamedCharacterReference}},
		{"&foo", "&foo", nil},
		{"& x", "& x", nil},
		{"&", "&", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			tokens, errs := tokenize(t, tt.in, dataState)
			assert.Equal(t, tt.out, charData(tokens))
			assert.Equal(t, tt.errs, errorKinds(errs))
		})
	}
}

func TestLookupNamedReference(t *testing.T) {
	tests := []struct {
		in      string
		decoded string
		n       int
	}{
		{"amp;", "&", 4},
		{"amp", "&", 3},
		{"ampere", "&", 3},
		{"notin;x", "∉", 6},
		{"notit;", "¬", 3},
		{"xyz;", "", 0},
		{"", "", 0},
		{"CounterClockwiseContourIntegral;", "\u2233", 32},
		{"ampaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa;", "&", 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			decoded, n := lookupNamedReference(tt.in)
			assert.Equal(t, tt.decoded, decoded)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestLongNamedReferenceRun(t *testing.T) {
	run := strings.Repeat("a", 100_000)
	in := "<!DOCTYPE html><html><head></head><body>&" + run + "</body></html>"

	start := time.Now()
	res, err := ParseString(in, DefaultConfig())
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Less(t, elapsed, 5*time.Second, "lookahead must stay bounded")

	body := res.Document.GetElementsByTagName("body")
	require.Len(t, body, 1)
	text := res.Document.Children(body[0])
	require.Len(t, text, 1)
	assert.Equal(t, "&"+run, res.Document.Node(text[0]).Data())
	assert.Empty(t, res.Errors)

	decoded, n := lookupNamedReference("amp" + run)
	assert.Equal(t, "&", decoded)
	assert.Equal(t, 3, n)
}

func TestErrorOffsets(t *testing.T) {
	_, errs := tokenize(t, "ab\u0000", dataState)
	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Offset)
	assert.Equal(t, "unexpected-null-character", errs[0].Kind.Code())
}

func TestUnimplementedStateIsFatal(t *testing.T) {
	for _, state := range []tokenizerState{scriptDataState, cdataSectionState, scriptDataEscapedState} {
		state := state
		t.Run(state.String(), func(t *testing.T) {
			t.Parallel()
			p := NewHTMLTokenizer("x", DefaultConfig())
			p.SetState(state)
			_, err := p.Tokenize()
			require.Error(t, err)

			var perr *ParserError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, UnimplementedTokenizationState, perr.Kind)
			assert.Equal(t, state, perr.State)
		})
	}
}

type stateMachineTestCase struct {
	startingState     tokenizerState // the state to start from
	inRunes           string         // each rune is fed to the startingState on its own
	shouldReconsume   bool           // the expectation if the next state should reconsume
	nextExpectedState tokenizerState // the next state
}

// TestStateParsers checks each state handler in isolation returns the next
// expected state. Flows that need earlier context are covered by the
// tokenization tests above.
func TestStateParsers(t *testing.T) {
	stateParserTests := []stateMachineTestCase{
		{dataState, "&", false, characterReferenceState},
		{dataState, "<", false, tagOpenState},
		{dataState, "\u0000aAz1", false, dataState},

		{rcDataState, "&", false, characterReferenceState},
		{rcDataState, "<", false, rcDataLessThanSignState},
		{rcDataState, "\u0000a#", false, rcDataState},

		{rawTextState, "<", false, rawTextLessThanSignState},
		{rawTextState, "\u0000a#&", false, rawTextState},

		{plaintextState, "\u0000!2a<", false, plaintextState},

		{tagOpenState, "!", false, markupDeclarationOpenState},
		{tagOpenState, "/", false, endTagOpenState},
		{tagOpenState, "aAz", true, tagNameState},
		{tagOpenState, "?", true, bogusCommentState},
		{tagOpenState, "12", true, dataState},

		{endTagOpenState, "abAB", true, tagNameState},
		{endTagOpenState, ">", false, dataState},
		{endTagOpenState, "\"\\#$", true, bogusCommentState},

		{tagNameState, "\t\n\f ", false, beforeAttributeNameState},
		{tagNameState, "/", false, selfClosingStartTagState},
		{tagNameState, "aA\u00001", false, tagNameState},

		{rcDataLessThanSignState, "/", false, rcDataEndTagOpenState},
		{rcDataLessThanSignState, "ab", true, rcDataState},
		{rcDataEndTagOpenState, "abA", true, rcDataEndTagNameState},
		{rcDataEndTagOpenState, "1#", true, rcDataState},
		{rcDataEndTagNameState, "AZaz", false, rcDataEndTagNameState},
		{rcDataEndTagNameState, "1# >/", true, rcDataState},

		{rawTextLessThanSignState, "/", false, rawTextEndTagOpenState},
		{rawTextLessThanSignState, "a1", true, rawTextState},
		{rawTextEndTagOpenState, "aZz", true, rawTextEndTagNameState},
		{rawTextEndTagOpenState, "1@", true, rawTextState},
		{rawTextEndTagNameState, "AZaz", false, rawTextEndTagNameState},
		{rawTextEndTagNameState, "1#", true, rawTextState},

		{beforeAttributeNameState, "\t\n\f ", false, beforeAttributeNameState},
		{beforeAttributeNameState, "/>", true, afterAttributeNameState},
		{beforeAttributeNameState, "=", false, attributeNameState},
		{beforeAttributeNameState, "!@a", true, attributeNameState},

		{attributeNameState, "\t\n\f />", true, afterAttributeNameState},
		{attributeNameState, "=", false, beforeAttributeValueState},
		{attributeNameState, "AB\u0000\"'<a1@", false, attributeNameState},

		{afterAttributeNameState, "\t\n\f ", false, afterAttributeNameState},
		{afterAttributeNameState, "/", false, selfClosingStartTagState},
		{afterAttributeNameState, "=", false, beforeAttributeValueState},
		{afterAttributeNameState, "aBC1%", true, attributeNameState},

		{beforeAttributeValueState, "\t\n\f ", false, beforeAttributeValueState},
		{beforeAttributeValueState, "\"", false, attributeValueDoubleQuotedState},
		{beforeAttributeValueState, "'", false, attributeValueSingleQuotedState},
		{beforeAttributeValueState, "a1", true, attributeValueUnquotedState},

		{attributeValueDoubleQuotedState, "\"", false, afterAttributeValueQuotedState},
		{attributeValueDoubleQuotedState, "&", false, characterReferenceState},
		{attributeValueDoubleQuotedState, "\u0000a$'", false, attributeValueDoubleQuotedState},

		{attributeValueSingleQuotedState, "'", false, afterAttributeValueQuotedState},
		{attributeValueSingleQuotedState, "&", false, characterReferenceState},
		{attributeValueSingleQuotedState, "\u0000a5\"", false, attributeValueSingleQuotedState},

		{attributeValueUnquotedState, "\t\n\f ", false, beforeAttributeNameState},
		{attributeValueUnquotedState, "&", false, characterReferenceState},
		{attributeValueUnquotedState, "\u0000\"'<=`A%", false, attributeValueUnquotedState},

		{afterAttributeValueQuotedState, "\t\n\f ", false, beforeAttributeNameState},
		{afterAttributeValueQuotedState, "/", false, selfClosingStartTagState},
		{afterAttributeValueQuotedState, "A(", true, beforeAttributeNameState},

		{selfClosingStartTagState, "ab1$\"", true, beforeAttributeNameState},

		{bogusCommentState, "\u0000aA1#^", false, bogusCommentState},

		{commentStartState, "-", false, commentStartDashState},
		{commentStartState, "A(", true, commentState},
		{commentStartDashState, "-", false, commentEndState},
		{commentStartDashState, "A(", true, commentState},
		{commentState, "<", false, commentLessThanSignState},
		{commentState, "-", false, commentEndDashState},
		{commentState, "\u0000A)", false, commentState},
		{commentLessThanSignState, "!", false, commentLessThanSignBangState},
		{commentLessThanSignState, "<", false, commentLessThanSignState},
		{commentLessThanSignState, "A*", true, commentState},
		{commentLessThanSignBangState, "-", false, commentLessThanSignBangDashState},
		{commentLessThanSignBangState, "A@", true, commentState},
		{commentLessThanSignBangDashState, "-", false, commentLessThanSignBangDashDashState},
		{commentLessThanSignBangDashState, "A!", true, commentEndDashState},
		{commentLessThanSignBangDashDashState, ">A^", true, commentEndState},
		{commentEndDashState, "-", false, commentEndState},
		{commentEndDashState, "A#", true, commentState},
		{commentEndState, "!", false, commentEndBangState},
		{commentEndState, "-", false, commentEndState},
		{commentEndState, "A(", true, commentState},
		{commentEndBangState, "-", false, commentEndDashState},
		{commentEndBangState, "A*", true, commentState},

		{doctypeState, "\t\n\f ", false, beforeDoctypeNameState},
		{doctypeState, ">a&", true, beforeDoctypeNameState},
		{beforeDoctypeNameState, "\t\n\f ", false, beforeDoctypeNameState},
		{beforeDoctypeNameState, "AZ\u0000a*", false, doctypeNameState},
		{doctypeNameState, "\t\n\f ", false, afterDoctypeNameState},
		{doctypeNameState, "AZ\u0000a*", false, doctypeNameState},
		{afterDoctypeNameState, "\t\n\f ", false, afterDoctypeNameState},

		{afterDoctypePublicKeywordState, "\t\n\f ", false, beforeDoctypePublicIdentifierState},
		{afterDoctypePublicKeywordState, "\"", false, doctypePublicIdentifierDoubleQuotedState},
		{afterDoctypePublicKeywordState, "'", false, doctypePublicIdentifierSingleQuotedState},
		{afterDoctypePublicKeywordState, "a&", true, bogusDoctypeState},
		{beforeDoctypePublicIdentifierState, "\t\n\f ", false, beforeDoctypePublicIdentifierState},
		{beforeDoctypePublicIdentifierState, "\"", false, doctypePublicIdentifierDoubleQuotedState},
		{beforeDoctypePublicIdentifierState, "'", false, doctypePublicIdentifierSingleQuotedState},
		{beforeDoctypePublicIdentifierState, "a(", true, bogusDoctypeState},
		{doctypePublicIdentifierDoubleQuotedState, "\"", false, afterDoctypePublicIdentifierState},
		{doctypePublicIdentifierDoubleQuotedState, "\u0000a'", false, doctypePublicIdentifierDoubleQuotedState},
		{doctypePublicIdentifierSingleQuotedState, "'", false, afterDoctypePublicIdentifierState},
		{doctypePublicIdentifierSingleQuotedState, "\u0000a\"", false, doctypePublicIdentifierSingleQuotedState},
		{afterDoctypePublicIdentifierState, "\t\n\f ", false, betweenDoctypePublicAndSystemIdentifiersState},
		{afterDoctypePublicIdentifierState, "\"", false, doctypeSystemIdentifierDoubleQuotedState},
		{afterDoctypePublicIdentifierState, "'", false, doctypeSystemIdentifierSingleQuotedState},
		{afterDoctypePublicIdentifierState, "a!", true, bogusDoctypeState},
		{betweenDoctypePublicAndSystemIdentifiersState, "\t\n\f ", false, betweenDoctypePublicAndSystemIdentifiersState},
		{betweenDoctypePublicAndSystemIdentifiersState, "\"", false, doctypeSystemIdentifierDoubleQuotedState},
		{betweenDoctypePublicAndSystemIdentifiersState, "'", false, doctypeSystemIdentifierSingleQuotedState},
		{betweenDoctypePublicAndSystemIdentifiersState, "a!", true, bogusDoctypeState},
		{afterDoctypeSystemKeywordState, "\t\n\f ", false, beforeDoctypeSystemIdentifierState},
		{afterDoctypeSystemKeywordState, "\"", false, doctypeSystemIdentifierDoubleQuotedState},
		{afterDoctypeSystemKeywordState, "'", false, doctypeSystemIdentifierSingleQuotedState},
		{afterDoctypeSystemKeywordState, "a!", true, bogusDoctypeState},
		{beforeDoctypeSystemIdentifierState, "\t\n\f ", false, beforeDoctypeSystemIdentifierState},
		{beforeDoctypeSystemIdentifierState, "\"", false, doctypeSystemIdentifierDoubleQuotedState},
		{beforeDoctypeSystemIdentifierState, "'", false, doctypeSystemIdentifierSingleQuotedState},
		{beforeDoctypeSystemIdentifierState, "a!", true, bogusDoctypeState},
		{doctypeSystemIdentifierDoubleQuotedState, "\"", false, afterDoctypeSystemIdentifierState},
		{doctypeSystemIdentifierDoubleQuotedState, "\u0000a'", false, doctypeSystemIdentifierDoubleQuotedState},
		{doctypeSystemIdentifierSingleQuotedState, "'", false, afterDoctypeSystemIdentifierState},
		{doctypeSystemIdentifierSingleQuotedState, "\u0000a\"", false, doctypeSystemIdentifierSingleQuotedState},
		{afterDoctypeSystemIdentifierState, "\t\n\f ", false, afterDoctypeSystemIdentifierState},
		{afterDoctypeSystemIdentifierState, "a!", true, bogusDoctypeState},
		{bogusDoctypeState, "\u0000a(", false, bogusDoctypeState},

		{characterReferenceState, "ab12", true, namedCharacterReferenceState},
		{characterReferenceState, "#", false, numericCharacterReferenceState},
		{characterReferenceState, "/\"", true, dataState}, // the zero return state is data
		{ambiguousAmpersandState, "a3", false, ambiguousAmpersandState},
		{ambiguousAmpersandState, ";[@", true, dataState},

		{numericCharacterReferenceState, "xX", false, hexadecimalCharacterReferenceStartState},
		{numericCharacterReferenceState, "[a", true, decimalCharacterReferenceStartState},
		{hexadecimalCharacterReferenceStartState, "abF9", true, hexadecimalCharacterReferenceState},
		{hexadecimalCharacterReferenceStartState, "p", true, dataState},
		{decimalCharacterReferenceStartState, "01", true, decimalCharacterReferenceState},
		{decimalCharacterReferenceStartState, "A", true, dataState},
		{hexadecimalCharacterReferenceState, "019AFBabf", false, hexadecimalCharacterReferenceState},
		{hexadecimalCharacterReferenceState, ";", false, numericCharacterReferenceEndState},
		{hexadecimalCharacterReferenceState, "#]", true, numericCharacterReferenceEndState},
		{decimalCharacterReferenceState, "019", false, decimalCharacterReferenceState},
		{decimalCharacterReferenceState, ";", false, numericCharacterReferenceEndState},
		{decimalCharacterReferenceState, "g!a", true, numericCharacterReferenceEndState},
	}

	for _, tt := range stateParserTests {
		for _, r := range tt.inRunes {
			runStateParserTest(t, tt, r)
		}
	}
}

// helper function to parallelize the above test case
func runStateParserTest(t *testing.T, testcase stateMachineTestCase, r rune) {
	testName := fmt.Sprintf("%s-%#U", testcase.startingState, r)
	t.Run(testName, func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer("", DefaultConfig())
		reconsume, state := p.stateToParser(testcase.startingState)(r, false)
		assert.Equal(t, testcase.nextExpectedState, state, "next state")
		assert.Equal(t, testcase.shouldReconsume, reconsume, "reconsume")
	})
}

// runWithoutEOF feeds every rune of the input through the state machine but
// stops short of end of file, which would flush the token builder.
func runWithoutEOF(p *HTMLTokenizer) error {
	for {
		r, eof := p.input.Consume()
		if eof {
			return nil
		}
		if err := p.processRune(r, false); err != nil {
			return err
		}
	}
}

type parserStatefulnessTestCase struct {
	inHTML     string                                // the HTML to tokenize
	startState tokenizerState                        // the starting state of the tokenizer
	testFunc   func(*HTMLTokenizer) (string, string) // since we are testing internal state, we need a function that can look inside the tokenizer
	setup      func(*HTMLTokenizer)                  // any setup code will be run before tokenization
}

func builderName(p *HTMLTokenizer) string           { return p.tokenBuilder.name.String() }
func builderData(p *HTMLTokenizer) string           { return p.tokenBuilder.data.String() }
func builderAttributeName(p *HTMLTokenizer) string  { return p.tokenBuilder.attributeKey.String() }
func builderAttributeValue(p *HTMLTokenizer) string { return p.tokenBuilder.attributeValue.String() }
func builderForceQuirks(p *HTMLTokenizer) string {
	return fmt.Sprintf("%t", p.tokenBuilder.forceQuirks)
}

func expect(get func(*HTMLTokenizer) string, want string) func(*HTMLTokenizer) (string, string) {
	return func(p *HTMLTokenizer) (string, string) { return get(p), want }
}

func inAttributeValue(p *HTMLTokenizer) {
	p.returnState = attributeValueDoubleQuotedState
}

// TestParseStatefulness runs the tokenizer over short inputs from a given
// state and checks what the token builder holds before end of file.
func TestParseStatefulness(t *testing.T) {
	parserStatefulnessTestCases := []parserStatefulnessTestCase{
		{"&", dataState, func(p *HTMLTokenizer) (string, string) { return p.returnState.String(), dataState.String() }, nil},
		{"&", rcDataState, func(p *HTMLTokenizer) (string, string) { return p.returnState.String(), rcDataState.String() }, nil},
		{"bAc", tagOpenState, expect(builderName, "bac"), nil},
		{"bA\u0000c", tagOpenState, expect(builderName, "ba\uFFFDc"), nil},
		{"P", endTagOpenState, expect(builderName, "p"), nil},
		{"1", endTagOpenState, expect(builderData, "1"), nil},
		{"<", tagNameState, expect(builderName, "<"), nil},
		{"U", rcDataEndTagNameState, expect(builderName, "u"), nil},
		{"U", rawTextEndTagNameState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.TempBuffer(), "U" }, nil},
		{"U", attributeNameState, expect(builderAttributeName, "u"), nil},
		{"\u0000", attributeNameState, expect(builderAttributeName, "\uFFFD"), nil},
		{"\u0000", attributeValueDoubleQuotedState, expect(builderAttributeValue, "\uFFFD"), nil},
		{"A", attributeValueSingleQuotedState, expect(builderAttributeValue, "A"), nil},
		{"a", attributeValueUnquotedState, expect(builderAttributeValue, "a"), nil},
		{"&", attributeValueUnquotedState, func(p *HTMLTokenizer) (string, string) {
			return p.returnState.String(), attributeValueUnquotedState.String()
		}, nil},
		{"\u0000!3", bogusCommentState, expect(builderData, "\uFFFD!3"), nil},
		{"3", commentStartDashState, expect(builderData, "-3"), nil},
		{"<!", commentState, expect(builderData, "<!"), nil},
		{"a", commentEndDashState, expect(builderData, "-a"), nil},
		{"-", commentEndState, expect(builderData, "-"), nil},
		{"A", commentEndState, expect(builderData, "--A"), nil},
		{"@", commentEndBangState, expect(builderData, "--!@"), nil},
		{"A", beforeDoctypeNameState, expect(builderName, "a"), nil},
		{"\u0000", beforeDoctypeNameState, expect(builderName, "\uFFFD"), nil},
		{">", beforeDoctypeNameState, expect(builderForceQuirks, "true"), nil},
		{"A", beforeDoctypePublicIdentifierState, expect(builderForceQuirks, "true"), nil},
		{"\u0000", doctypePublicIdentifierDoubleQuotedState, func(p *HTMLTokenizer) (string, string) {
			return p.tokenBuilder.publicID.String(), "\uFFFD"
		}, func(p *HTMLTokenizer) { p.tokenBuilder.NewToken(docTypeToken); p.tokenBuilder.SetPublicIdentifierEmpty() }},
		{"a!", doctypeSystemIdentifierSingleQuotedState, func(p *HTMLTokenizer) (string, string) {
			return p.tokenBuilder.systemID.String(), "a!"
		}, func(p *HTMLTokenizer) { p.tokenBuilder.NewToken(docTypeToken); p.tokenBuilder.SetSystemIdentifierEmpty() }},
		{"a", ambiguousAmpersandState, expect(builderAttributeValue, "a"), inAttributeValue},
		{"1", ambiguousAmpersandState, expect(builderAttributeValue, "1"), inAttributeValue},
		{"X", numericCharacterReferenceState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.TempBuffer(), "X" }, nil},
		{"22", hexadecimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "34"
		}, nil},
		{"ff", hexadecimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "255"
		}, nil},
		{"134", decimalCharacterReferenceState, func(p *HTMLTokenizer) (string, string) {
			return fmt.Sprintf("%d", p.tokenBuilder.GetCharRef()), "134"
		}, nil},
	}

	for _, testcase := range parserStatefulnessTestCases {
		testcase := testcase
		t.Run(fmt.Sprintf("%s-%q", testcase.startState, testcase.inHTML), func(t *testing.T) {
			t.Parallel()
			p := NewHTMLTokenizer(testcase.inHTML, DefaultConfig())
			if testcase.setup != nil {
				testcase.setup(p)
			}
			p.SetState(testcase.startState)
			require.NoError(t, runWithoutEOF(p))
			answer, expected := testcase.testFunc(p)
			assert.Equal(t, expected, answer)
		})
	}
}
