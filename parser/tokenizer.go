package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// HTMLTokenizer holds state for the various state of the tokenizer.
type HTMLTokenizer struct {
	input                     *reader
	returnState, currentState tokenizerState
	emittedTokens             []Token
	tokenBuilder              *TokenBuilder
	lastEmittedStartTagName   string
	eofEmitted                bool
	errs                      *errorSink
	err                       error
	log                       *logrus.Entry
}

// NewHTMLTokenizer creates a tokenizer over src with its own error log.
func NewHTMLTokenizer(src string, cfg Config) *HTMLTokenizer {
	log := cfg.logger().WithField("component", "tokenizer")
	in := newReader(src)
	return newHTMLTokenizer(in, &errorSink{offset: in.Offset, log: log}, log)
}

func newHTMLTokenizer(in *reader, errs *errorSink, log *logrus.Entry) *HTMLTokenizer {
	return &HTMLTokenizer{
		input:        in,
		currentState: dataState,
		tokenBuilder: newTokenBuilder(),
		errs:         errs,
		log:          log,
	}
}

// a stateHandler is a func that takes in a rune and a bool representing the
// end of file and returns whether to reconsume the rune and the next state.
type parserStateHandler func(in rune, eof bool) (bool, tokenizerState)

func (p *HTMLTokenizer) stateToParser(state tokenizerState) parserStateHandler {
	switch state {
	case dataState:
		return p.dataStateParser
	case rcDataState:
		return p.rcDataStateParser
	case rawTextState:
		return p.rawTextStateParser
	case plaintextState:
		return p.plaintextStateParser
	case tagOpenState:
		return p.tagOpenStateParser
	case endTagOpenState:
		return p.endTagOpenStateParser
	case tagNameState:
		return p.tagNameStateParser
	case rcDataLessThanSignState:
		return p.rcDataLessThanSignStateParser
	case rcDataEndTagOpenState:
		return p.rcDataEndTagOpenStateParser
	case rcDataEndTagNameState:
		return p.rcDataEndTagNameStateParser
	case rawTextLessThanSignState:
		return p.rawTextLessThanSignStateParser
	case rawTextEndTagOpenState:
		return p.rawTextEndTagOpenStateParser
	case rawTextEndTagNameState:
		return p.rawTextEndTagNameStateParser
	case beforeAttributeNameState:
		return p.beforeAttributeNameStateParser
	case attributeNameState:
		return p.attributeNameStateParser
	case afterAttributeNameState:
		return p.afterAttributeNameStateParser
	case beforeAttributeValueState:
		return p.beforeAttributeValueStateParser
	case attributeValueDoubleQuotedState:
		return p.attributeValueDoubleQuotedStateParser
	case attributeValueSingleQuotedState:
		return p.attributeValueSingleQuotedStateParser
	case attributeValueUnquotedState:
		return p.attributeValueUnquotedStateParser
	case afterAttributeValueQuotedState:
		return p.afterAttributeValueQuotedStateParser
	case selfClosingStartTagState:
		return p.selfClosingStartTagStateParser
	case bogusCommentState:
		return p.bogusCommentStateParser
	case markupDeclarationOpenState:
		return p.markupDeclarationOpenStateParser
	case commentStartState:
		return p.commentStartStateParser
	case commentStartDashState:
		return p.commentStartDashStateParser
	case commentState:
		return p.commentStateParser
	case commentLessThanSignState:
		return p.commentLessThanSignStateParser
	case commentLessThanSignBangState:
		return p.commentLessThanSignBangStateParser
	case commentLessThanSignBangDashState:
		return p.commentLessThanSignBangDashStateParser
	case commentLessThanSignBangDashDashState:
		return p.commentLessThanSignBangDashDashStateParser
	case commentEndDashState:
		return p.commentEndDashStateParser
	case commentEndState:
		return p.commentEndStateParser
	case commentEndBangState:
		return p.commentEndBangStateParser
	case doctypeState:
		return p.doctypeStateParser
	case beforeDoctypeNameState:
		return p.beforeDoctypeNameStateParser
	case doctypeNameState:
		return p.doctypeNameStateParser
	case afterDoctypeNameState:
		return p.afterDoctypeNameStateParser
	case afterDoctypePublicKeywordState:
		return p.afterDoctypePublicKeywordStateParser
	case beforeDoctypePublicIdentifierState:
		return p.beforeDoctypePublicIdentifierStateParser
	case doctypePublicIdentifierDoubleQuotedState:
		return p.doctypePublicIdentifierDoubleQuotedStateParser
	case doctypePublicIdentifierSingleQuotedState:
		return p.doctypePublicIdentifierSingleQuotedStateParser
	case afterDoctypePublicIdentifierState:
		return p.afterDoctypePublicIdentifierStateParser
	case betweenDoctypePublicAndSystemIdentifiersState:
		return p.betweenDoctypePublicAndSystemIdentifiersStateParser
	case afterDoctypeSystemKeywordState:
		return p.afterDoctypeSystemKeywordStateParser
	case beforeDoctypeSystemIdentifierState:
		return p.beforeDoctypeSystemIdentifierStateParser
	case doctypeSystemIdentifierDoubleQuotedState:
		return p.doctypeSystemIdentifierDoubleQuotedStateParser
	case doctypeSystemIdentifierSingleQuotedState:
		return p.doctypeSystemIdentifierSingleQuotedStateParser
	case afterDoctypeSystemIdentifierState:
		return p.afterDoctypeSystemIdentifierStateParser
	case bogusDoctypeState:
		return p.bogusDoctypeStateParser
	case characterReferenceState:
		return p.characterReferenceStateParser
	case namedCharacterReferenceState:
		return p.namedCharacterReferenceStateParser
	case ambiguousAmpersandState:
		return p.ambiguousAmpersandStateParser
	case numericCharacterReferenceState:
		return p.numericCharacterReferenceStateParser
	case hexadecimalCharacterReferenceStartState:
		return p.hexadecimalCharacterReferenceStartStateParser
	case decimalCharacterReferenceStartState:
		return p.decimalCharacterReferenceStartStateParser
	case hexadecimalCharacterReferenceState:
		return p.hexadecimalCharacterReferenceStateParser
	case decimalCharacterReferenceState:
		return p.decimalCharacterReferenceStateParser
	case numericCharacterReferenceEndState:
		return p.numericCharacterReferenceEndStateParser
	}

	// script data and CDATA sections are not supported
	return nil
}

func isASCIIUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isASCIILower(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isASCIIAlpha(r rune) bool {
	return isASCIIUpper(r) || isASCIILower(r)
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIIHexDigit(r rune) bool {
	return isASCIIDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isASCIIAlphanumeric(r rune) bool {
	return isASCIIAlpha(r) || isASCIIDigit(r)
}

func toASCIILower(r rune) rune {
	if isASCIIUpper(r) {
		return r + 0x20
	}
	return r
}

func isNonCharacter(code int) bool {
	if code >= 0xFDD0 && code <= 0xFDEF {
		return true
	}
	// the last two code points of every plane
	return code <= 0x10FFFF && code&0xFFFE == 0xFFFE
}

func isC0Control(code int) bool {
	return code >= 0x00 && code <= 0x1F
}

func isControl(code int) bool {
	return isC0Control(code) || (code >= 0x7F && code <= 0x9F)
}

func isASCIIWhitespace(code int) bool {
	switch code {
	case 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	default:
		return false
	}
}

func isSurrogate(code int) bool {
	return code >= 0xD800 && code <= 0xDFFF
}

func wasConsumedByAttribute(returnState tokenizerState) bool {
	switch returnState {
	case attributeValueDoubleQuotedState, attributeValueSingleQuotedState, attributeValueUnquotedState:
		return true
	}
	return false
}

func (p *HTMLTokenizer) parseError(kind ParsingError) {
	p.errs.record(kind)
}

func (p *HTMLTokenizer) fail(kind FatalKind) {
	if p.err != nil {
		return
	}
	p.err = newParserError(&ParserError{
		Kind:   kind,
		State:  p.currentState,
		Offset: p.input.Offset(),
	})
}

func (p *HTMLTokenizer) flushCodePointsAsCharacterReference() {
	if wasConsumedByAttribute(p.returnState) {
		p.tokenBuilder.WriteAttributeValueString(p.tokenBuilder.TempBuffer())
	} else {
		p.emit(p.tokenBuilder.TempBufferCharTokens()...)
	}
}

func (p *HTMLTokenizer) isApprEndTagToken() bool {
	return p.lastEmittedStartTagName != "" && p.lastEmittedStartTagName == p.tokenBuilder.name.String()
}

func (p *HTMLTokenizer) emit(tokens ...Token) {
	for _, token := range tokens {
		switch token.TokenType {
		case endTagToken:
			if len(token.Attributes) > 0 {
				p.parseError(EndTagWithAttributes)
				token.Attributes = nil
			}
			if token.SelfClosing {
				p.parseError(EndTagWithTrailingSolidus)
				token.SelfClosing = false
			}
		case startTagToken:
			p.lastEmittedStartTagName = token.TagName
		case endOfFileToken:
			p.eofEmitted = true
		}

		p.emittedTokens = append(p.emittedTokens, token)
	}
}

func (p *HTMLTokenizer) emitChars(rs ...rune) {
	for _, r := range rs {
		p.emit(p.tokenBuilder.CharacterToken(r))
	}
}

func (p *HTMLTokenizer) emitEOF() (bool, tokenizerState) {
	p.emit(p.tokenBuilder.EndOfFileToken())
	return false, dataState
}

// emitCurrent emits the token under construction after checking it is of the
// kind the calling state expects.
func (p *HTMLTokenizer) emitCurrent(kinds ...tokenType) tokenizerState {
	ok := false
	for _, k := range kinds {
		if p.tokenBuilder.Kind() == k {
			ok = true
		}
	}
	if !ok {
		p.fail(CurrentTokenWrongType)
		return dataState
	}
	if p.tokenBuilder.IsTag() {
		p.commitAttribute()
	}
	p.emit(p.tokenBuilder.Token())
	return dataState
}

func (p *HTMLTokenizer) emitCurrentTag() tokenizerState {
	return p.emitCurrent(startTagToken, endTagToken)
}

func (p *HTMLTokenizer) emitCurrentComment() tokenizerState {
	return p.emitCurrent(commentToken)
}

func (p *HTMLTokenizer) emitCurrentDoctype() tokenizerState {
	return p.emitCurrent(docTypeToken)
}

func (p *HTMLTokenizer) commitAttribute() {
	if p.tokenBuilder.CommitAttribute() {
		p.parseError(DuplicateAttribute)
	}
}

func (p *HTMLTokenizer) startAttribute() {
	if p.tokenBuilder.StartAttribute() {
		p.parseError(DuplicateAttribute)
	}
}

func (p *HTMLTokenizer) dataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '&':
		p.returnState = dataState
		return false, characterReferenceState
	case '<':
		return false, tagOpenState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.emitChars(r)
		return false, dataState
	default:
		p.emitChars(r)
		return false, dataState
	}
}

func (p *HTMLTokenizer) rcDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '&':
		p.returnState = rcDataState
		return false, characterReferenceState
	case '<':
		return false, rcDataLessThanSignState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.emitChars('�')
		return false, rcDataState
	default:
		p.emitChars(r)
		return false, rcDataState
	}
}

func (p *HTMLTokenizer) rawTextStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '<':
		return false, rawTextLessThanSignState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.emitChars('�')
		return false, rawTextState
	default:
		p.emitChars(r)
		return false, rawTextState
	}
}

func (p *HTMLTokenizer) plaintextStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.emitChars('�')
	default:
		p.emitChars(r)
	}
	return false, plaintextState
}

func (p *HTMLTokenizer) tagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(EOFBeforeTagName)
		p.emitChars('<')
		return p.emitEOF()
	}
	switch {
	case r == '!':
		return false, markupDeclarationOpenState
	case r == '/':
		return false, endTagOpenState
	case isASCIIAlpha(r):
		p.tokenBuilder.NewToken(startTagToken)
		return true, tagNameState
	case r == '?':
		p.parseError(UnexpectedQuestionMarkInsteadOfTagName)
		p.tokenBuilder.NewToken(commentToken)
		return true, bogusCommentState
	default:
		p.parseError(InvalidFirstCharacterOfTagName)
		p.emitChars('<')
		return true, dataState
	}
}

func (p *HTMLTokenizer) endTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(EOFBeforeTagName)
		p.emitChars('<', '/')
		return p.emitEOF()
	}
	switch {
	case isASCIIAlpha(r):
		p.tokenBuilder.NewToken(endTagToken)
		return true, tagNameState
	case r == '>':
		p.parseError(MissingEndTagName)
		return false, dataState
	default:
		p.parseError(InvalidFirstCharacterOfTagName)
		p.tokenBuilder.NewToken(commentToken)
		return true, bogusCommentState
	}
}

func (p *HTMLTokenizer) eofInTag() (bool, tokenizerState) {
	p.parseError(EOFInTag)
	return p.emitEOF()
}

func (p *HTMLTokenizer) tagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInTag()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ': // tab, line feed, form feed, space
		return false, beforeAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '>':
		return false, p.emitCurrentTag()
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WriteName('�')
		return false, tagNameState
	default:
		p.tokenBuilder.WriteName(toASCIILower(r))
		return false, tagNameState
	}
}

func (p *HTMLTokenizer) rcDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '/' {
		p.tokenBuilder.ResetTempBuffer()
		return false, rcDataEndTagOpenState
	}
	p.emitChars('<')
	return true, rcDataState
}

func (p *HTMLTokenizer) rcDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIAlpha(r) {
		p.tokenBuilder.NewToken(endTagToken)
		return true, rcDataEndTagNameState
	}
	p.emitChars('<', '/')
	return true, rcDataState
}

func (p *HTMLTokenizer) rcDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagNameState(r, eof, rcDataState, rcDataEndTagNameState)
}

func (p *HTMLTokenizer) rawTextLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '/' {
		p.tokenBuilder.ResetTempBuffer()
		return false, rawTextEndTagOpenState
	}
	p.emitChars('<')
	return true, rawTextState
}

func (p *HTMLTokenizer) rawTextEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIAlpha(r) {
		p.tokenBuilder.NewToken(endTagToken)
		return true, rawTextEndTagNameState
	}
	p.emitChars('<', '/')
	return true, rawTextState
}

func (p *HTMLTokenizer) rawTextEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagNameState(r, eof, rawTextState, rawTextEndTagNameState)
}

// textEndTagNameState is shared by the RCDATA and RAWTEXT end tag name states.
// Only an end tag matching the last start tag leaves the text state; anything
// else is handed back as plain characters.
func (p *HTMLTokenizer) textEndTagNameState(r rune, eof bool, text, self tokenizerState) (bool, tokenizerState) {
	if !eof {
		switch {
		case isASCIIWhitespace(int(r)):
			if p.isApprEndTagToken() {
				return false, beforeAttributeNameState
			}
		case r == '/':
			if p.isApprEndTagToken() {
				return false, selfClosingStartTagState
			}
		case r == '>':
			if p.isApprEndTagToken() {
				return false, p.emitCurrentTag()
			}
		case isASCIIAlpha(r):
			p.tokenBuilder.WriteName(toASCIILower(r))
			p.tokenBuilder.WriteTempBuffer(r)
			return false, self
		}
	}

	p.emitChars('<', '/')
	p.emit(p.tokenBuilder.TempBufferCharTokens()...)
	return true, text
}

func (p *HTMLTokenizer) beforeAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/', '>':
		return true, afterAttributeNameState
	case '=':
		p.parseError(UnexpectedEqualsSignBeforeAttributeName)
		p.startAttribute()
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.startAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) attributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ', '/', '>':
		return true, afterAttributeNameState
	case '=':
		return false, beforeAttributeValueState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeName('�')
		return false, attributeNameState
	case '"', '\'', '<':
		p.parseError(UnexpectedCharacterInAttributeName)
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.tokenBuilder.WriteAttributeName(toASCIILower(r))
		return false, attributeNameState
	}
}

func (p *HTMLTokenizer) afterAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInTag()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '=':
		return false, beforeAttributeValueState
	case '>':
		return false, p.emitCurrentTag()
	default:
		p.startAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) beforeAttributeValueStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, attributeValueUnquotedState
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeValueState
	case '"':
		return false, attributeValueDoubleQuotedState
	case '\'':
		return false, attributeValueSingleQuotedState
	case '>':
		p.parseError(MissingAttributeValue)
		return false, p.emitCurrentTag()
	default:
		return true, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) quotedAttributeValueState(r rune, eof bool, quote rune, self tokenizerState) (bool, tokenizerState) {
	if eof {
		return p.eofInTag()
	}
	switch r {
	case quote:
		return false, afterAttributeValueQuotedState
	case '&':
		p.returnState = self
		return false, characterReferenceState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeValue('�')
	default:
		p.tokenBuilder.WriteAttributeValue(r)
	}
	return false, self
}

func (p *HTMLTokenizer) attributeValueDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.quotedAttributeValueState(r, eof, '"', attributeValueDoubleQuotedState)
}

func (p *HTMLTokenizer) attributeValueSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.quotedAttributeValueState(r, eof, '\'', attributeValueSingleQuotedState)
}

func (p *HTMLTokenizer) attributeValueUnquotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInTag()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '&':
		p.returnState = attributeValueUnquotedState
		return false, characterReferenceState
	case '>':
		return false, p.emitCurrentTag()
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeValue('�')
	case '"', '\'', '<', '=', '`':
		p.parseError(UnexpectedCharacterInUnquotedAttributeValue)
		p.tokenBuilder.WriteAttributeValue(r)
	default:
		p.tokenBuilder.WriteAttributeValue(r)
	}
	return false, attributeValueUnquotedState
}

func (p *HTMLTokenizer) afterAttributeValueQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInTag()
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeAttributeNameState
	case '/':
		return false, selfClosingStartTagState
	case '>':
		return false, p.emitCurrentTag()
	default:
		p.parseError(MissingWhitespaceBetweenAttributes)
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) selfClosingStartTagStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInTag()
	}
	switch r {
	case '>':
		p.tokenBuilder.EnableSelfClosing()
		return false, p.emitCurrentTag()
	default:
		p.parseError(UnexpectedSolidusInTag)
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) bogusCommentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitCurrentComment()
		return p.emitEOF()
	}
	switch r {
	case '>':
		return false, p.emitCurrentComment()
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WriteData('�')
	default:
		p.tokenBuilder.WriteData(r)
	}
	return false, bogusCommentState
}

// markupDeclarationOpenStateParser looks ahead instead of consuming, so the
// rune it is handed goes back to the reader first.
func (p *HTMLTokenizer) markupDeclarationOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.input.Reconsume()
	switch {
	case p.input.HasPrefix("--"):
		p.input.Skip(len("--"))
		p.tokenBuilder.NewToken(commentToken)
		return false, commentStartState
	case p.input.HasPrefixFold("DOCTYPE"):
		p.input.Skip(len("DOCTYPE"))
		return false, doctypeState
	case p.input.HasPrefix("[CDATA["):
		// there is no foreign content, so CDATA is always a bogus comment
		p.input.Skip(len("[CDATA["))
		p.parseError(CDATAInHTMLContent)
		p.tokenBuilder.NewToken(commentToken)
		p.tokenBuilder.WriteDataString("[CDATA[")
		return false, bogusCommentState
	default:
		p.parseError(IncorrectlyOpenedComment)
		p.tokenBuilder.NewToken(commentToken)
		return false, bogusCommentState
	}
}

func (p *HTMLTokenizer) eofInComment() (bool, tokenizerState) {
	p.parseError(EOFInComment)
	p.emitCurrentComment()
	return p.emitEOF()
}

func (p *HTMLTokenizer) commentStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, commentState
	}
	switch r {
	case '-':
		return false, commentStartDashState
	case '>':
		p.parseError(AbruptClosingOfEmptyComment)
		return false, p.emitCurrentComment()
	default:
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentStartDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInComment()
	}
	switch r {
	case '-':
		return false, commentEndState
	case '>':
		p.parseError(AbruptClosingOfEmptyComment)
		return false, p.emitCurrentComment()
	default:
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInComment()
	}
	switch r {
	case '<':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignState
	case '-':
		return false, commentEndDashState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WriteData('�')
	default:
		p.tokenBuilder.WriteData(r)
	}
	return false, commentState
}

func (p *HTMLTokenizer) commentLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, commentState
	}
	switch r {
	case '!':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignBangState
	case '<':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignState
	default:
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentLessThanSignBangStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		return false, commentLessThanSignBangDashState
	}
	return true, commentState
}

func (p *HTMLTokenizer) commentLessThanSignBangDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		return false, commentLessThanSignBangDashDashState
	}
	return true, commentEndDashState
}

func (p *HTMLTokenizer) commentLessThanSignBangDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r != '>' {
		p.parseError(NestedComment)
	}
	return true, commentEndState
}

func (p *HTMLTokenizer) commentEndDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInComment()
	}
	switch r {
	case '-':
		return false, commentEndState
	default:
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInComment()
	}
	switch r {
	case '>':
		return false, p.emitCurrentComment()
	case '!':
		return false, commentEndBangState
	case '-':
		p.tokenBuilder.WriteData('-')
		return false, commentEndState
	default:
		p.tokenBuilder.WriteDataString("--")
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentEndBangStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInComment()
	}
	switch r {
	case '-':
		p.tokenBuilder.WriteDataString("--!")
		return false, commentEndDashState
	case '>':
		p.parseError(IncorrectlyClosedComment)
		return false, p.emitCurrentComment()
	default:
		p.tokenBuilder.WriteDataString("--!")
		return true, commentState
	}
}

// eofInDoctype emits the doctype in progress with force-quirks set, starting
// one first when the name was never reached.
func (p *HTMLTokenizer) eofInDoctype(started bool) (bool, tokenizerState) {
	p.parseError(EOFInDoctype)
	if !started {
		p.tokenBuilder.NewToken(docTypeToken)
	}
	p.tokenBuilder.EnableForceQuirks()
	p.emitCurrentDoctype()
	return p.emitEOF()
}

// bogusDoctype is the shared recovery for broken doctype identifiers.
func (p *HTMLTokenizer) bogusDoctype(kind ParsingError) (bool, tokenizerState) {
	p.parseError(kind)
	p.tokenBuilder.EnableForceQuirks()
	return true, bogusDoctypeState
}

func (p *HTMLTokenizer) doctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(false)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypeNameState
	case '>':
		return true, beforeDoctypeNameState
	default:
		p.parseError(MissingWhitespaceBeforeDoctypeName)
		return true, beforeDoctypeNameState
	}
}

func (p *HTMLTokenizer) beforeDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(false)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypeNameState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.NewToken(docTypeToken)
		p.tokenBuilder.WriteName('�')
		return false, doctypeNameState
	case '>':
		p.parseError(MissingDoctypeName)
		p.tokenBuilder.NewToken(docTypeToken)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitCurrentDoctype()
	default:
		p.tokenBuilder.NewToken(docTypeToken)
		p.tokenBuilder.WriteName(toASCIILower(r))
		return false, doctypeNameState
	}
}

func (p *HTMLTokenizer) doctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterDoctypeNameState
	case '>':
		return false, p.emitCurrentDoctype()
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WriteName('�')
	default:
		p.tokenBuilder.WriteName(toASCIILower(r))
	}
	return false, doctypeNameState
}

func (p *HTMLTokenizer) afterDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterDoctypeNameState
	case '>':
		return false, p.emitCurrentDoctype()
	}

	p.input.Reconsume()
	switch {
	case p.input.HasPrefixFold("PUBLIC"):
		p.input.Skip(len("PUBLIC"))
		return false, afterDoctypePublicKeywordState
	case p.input.HasPrefixFold("SYSTEM"):
		p.input.Skip(len("SYSTEM"))
		return false, afterDoctypeSystemKeywordState
	}
	// the rune is back in the reader, so moving on without reconsuming
	// hands it to the bogus doctype state
	p.parseError(InvalidCharacterSequenceAfterDoctypeName)
	p.tokenBuilder.EnableForceQuirks()
	return false, bogusDoctypeState
}

func (p *HTMLTokenizer) afterDoctypePublicKeywordStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypePublicIdentifierState
	case '"':
		p.parseError(MissingWhitespaceAfterDoctypePublicKeyword)
		p.tokenBuilder.SetPublicIdentifierEmpty()
		return false, doctypePublicIdentifierDoubleQuotedState
	case '\'':
		p.parseError(MissingWhitespaceAfterDoctypePublicKeyword)
		p.tokenBuilder.SetPublicIdentifierEmpty()
		return false, doctypePublicIdentifierSingleQuotedState
	case '>':
		p.parseError(MissingDoctypePublicIdentifier)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitCurrentDoctype()
	default:
		return p.bogusDoctype(MissingQuoteBeforeDoctypePublicIdentifier)
	}
}

func (p *HTMLTokenizer) beforeDoctypePublicIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypePublicIdentifierState
	case '"':
		p.tokenBuilder.SetPublicIdentifierEmpty()
		return false, doctypePublicIdentifierDoubleQuotedState
	case '\'':
		p.tokenBuilder.SetPublicIdentifierEmpty()
		return false, doctypePublicIdentifierSingleQuotedState
	case '>':
		p.parseError(MissingDoctypePublicIdentifier)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitCurrentDoctype()
	default:
		return p.bogusDoctype(MissingQuoteBeforeDoctypePublicIdentifier)
	}
}

func (p *HTMLTokenizer) doctypePublicIdentifierQuotedState(r rune, eof bool, quote rune, self tokenizerState) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case quote:
		return false, afterDoctypePublicIdentifierState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WritePublicIdentifier('�')
	case '>':
		p.parseError(AbruptDoctypePublicIdentifier)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitCurrentDoctype()
	default:
		p.tokenBuilder.WritePublicIdentifier(r)
	}
	return false, self
}

func (p *HTMLTokenizer) doctypePublicIdentifierDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypePublicIdentifierQuotedState(r, eof, '"', doctypePublicIdentifierDoubleQuotedState)
}

func (p *HTMLTokenizer) doctypePublicIdentifierSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypePublicIdentifierQuotedState(r, eof, '\'', doctypePublicIdentifierSingleQuotedState)
}

func (p *HTMLTokenizer) afterDoctypePublicIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, betweenDoctypePublicAndSystemIdentifiersState
	case '>':
		return false, p.emitCurrentDoctype()
	case '"':
		p.parseError(MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers)
		p.tokenBuilder.SetSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierDoubleQuotedState
	case '\'':
		p.parseError(MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers)
		p.tokenBuilder.SetSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierSingleQuotedState
	default:
		return p.bogusDoctype(MissingQuoteBeforeDoctypeSystemIdentifier)
	}
}

func (p *HTMLTokenizer) betweenDoctypePublicAndSystemIdentifiersStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, betweenDoctypePublicAndSystemIdentifiersState
	case '>':
		return false, p.emitCurrentDoctype()
	case '"':
		p.tokenBuilder.SetSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierDoubleQuotedState
	case '\'':
		p.tokenBuilder.SetSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierSingleQuotedState
	default:
		return p.bogusDoctype(MissingQuoteBeforeDoctypeSystemIdentifier)
	}
}

func (p *HTMLTokenizer) afterDoctypeSystemKeywordStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypeSystemIdentifierState
	case '"':
		p.parseError(MissingWhitespaceAfterDoctypeSystemKeyword)
		p.tokenBuilder.SetSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierDoubleQuotedState
	case '\'':
		p.parseError(MissingWhitespaceAfterDoctypeSystemKeyword)
		p.tokenBuilder.SetSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierSingleQuotedState
	case '>':
		p.parseError(MissingDoctypeSystemIdentifier)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitCurrentDoctype()
	default:
		return p.bogusDoctype(MissingQuoteBeforeDoctypeSystemIdentifier)
	}
}

func (p *HTMLTokenizer) beforeDoctypeSystemIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, beforeDoctypeSystemIdentifierState
	case '"':
		p.tokenBuilder.SetSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierDoubleQuotedState
	case '\'':
		p.tokenBuilder.SetSystemIdentifierEmpty()
		return false, doctypeSystemIdentifierSingleQuotedState
	case '>':
		p.parseError(MissingDoctypeSystemIdentifier)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitCurrentDoctype()
	default:
		return p.bogusDoctype(MissingQuoteBeforeDoctypeSystemIdentifier)
	}
}

func (p *HTMLTokenizer) doctypeSystemIdentifierQuotedState(r rune, eof bool, quote rune, self tokenizerState) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case quote:
		return false, afterDoctypeSystemIdentifierState
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
		p.tokenBuilder.WriteSystemIdentifier('�')
	case '>':
		p.parseError(AbruptDoctypeSystemIdentifier)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitCurrentDoctype()
	default:
		p.tokenBuilder.WriteSystemIdentifier(r)
	}
	return false, self
}

func (p *HTMLTokenizer) doctypeSystemIdentifierDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeSystemIdentifierQuotedState(r, eof, '"', doctypeSystemIdentifierDoubleQuotedState)
}

func (p *HTMLTokenizer) doctypeSystemIdentifierSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeSystemIdentifierQuotedState(r, eof, '\'', doctypeSystemIdentifierSingleQuotedState)
}

func (p *HTMLTokenizer) afterDoctypeSystemIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype(true)
	}
	switch r {
	case '\u0009', '\u000A', '\u000C', ' ':
		return false, afterDoctypeSystemIdentifierState
	case '>':
		return false, p.emitCurrentDoctype()
	default:
		// unlike the other doctype errors this one leaves quirks alone
		p.parseError(UnexpectedCharacterAfterDoctypeSystemIdentifier)
		return true, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) bogusDoctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitCurrentDoctype()
		return p.emitEOF()
	}
	switch r {
	case '>':
		return false, p.emitCurrentDoctype()
	case '\u0000':
		p.parseError(UnexpectedNullCharacter)
	}
	return false, bogusDoctypeState
}

func (p *HTMLTokenizer) characterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.tokenBuilder.ResetTempBuffer()
	p.tokenBuilder.WriteTempBuffer('&')

	switch {
	case !eof && isASCIIAlphanumeric(r):
		return true, namedCharacterReferenceState
	case !eof && r == '#':
		p.tokenBuilder.WriteTempBuffer(r)
		return false, numericCharacterReferenceState
	default:
		p.flushCodePointsAsCharacterReference()
		return true, p.returnState
	}
}

// decodeEntity resolves one named character reference, with or without its
// trailing semicolon, through the x/net/html entity table.
func decodeEntity(name string) (string, bool) {
	ref := "&" + name
	out := html.UnescapeString(ref)
	if out == ref {
		return "", false
	}
	// UnescapeString falls back to the longest legacy prefix and leaves the
	// rest of the name in place; only whole-name matches count here. Names
	// ending in ';' may decode to two code points, legacy names to one.
	n := utf8.RuneCountInString(out)
	if name[len(name)-1] == ';' {
		return out, n <= 2
	}
	return out, n == 1
}

// longestEntityName bounds the lookahead of a named character reference.
// The longest name, "CounterClockwiseContourIntegral", has 31 characters.
const longestEntityName = 32

// lookupNamedReference finds the longest named character reference at the
// start of s and returns its expansion and byte length.
func lookupNamedReference(s string) (string, int) {
	n := 0
	for n < len(s) && n < longestEntityName && isASCIIAlphanumeric(rune(s[n])) {
		n++
	}
	if n < len(s) && s[n] == ';' {
		if decoded, ok := decodeEntity(s[:n+1]); ok {
			return decoded, n + 1
		}
	}
	for i := n; i > 1; i-- {
		if decoded, ok := decodeEntity(s[:i]); ok {
			return decoded, i
		}
	}
	return "", 0
}

func (p *HTMLTokenizer) namedCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.input.Reconsume()
	rest := p.input.Remaining()
	decoded, n := lookupNamedReference(rest)
	if n == 0 {
		p.flushCodePointsAsCharacterReference()
		return false, ambiguousAmpersandState
	}

	matched := rest[:n]
	p.input.Skip(n)
	if matched[n-1] != ';' {
		if wasConsumedByAttribute(p.returnState) {
			next := p.input.Remaining()
			if len(next) > 0 && (next[0] == '=' || isASCIIAlphanumeric(rune(next[0]))) {
				p.tokenBuilder.WriteAttributeValueString("&" + matched)
				return false, p.returnState
			}
		}
		p.parseError(MissingSemicolonAfterCharacterReference)
	}

	p.tokenBuilder.ResetTempBuffer()
	for _, c := range decoded {
		p.tokenBuilder.WriteTempBuffer(c)
	}
	p.flushCodePointsAsCharacterReference()
	return false, p.returnState
}

func (p *HTMLTokenizer) ambiguousAmpersandStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && isASCIIAlphanumeric(r):
		if wasConsumedByAttribute(p.returnState) {
			p.tokenBuilder.WriteAttributeValue(r)
		} else {
			p.emitChars(r)
		}
		return false, ambiguousAmpersandState
	case !eof && r == ';':
		p.parseError(UnknownNamedCharacterReference)
		return true, p.returnState
	default:
		return true, p.returnState
	}
}

func (p *HTMLTokenizer) numericCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	p.tokenBuilder.SetCharRef(0)
	if !eof && (r == 'x' || r == 'X') {
		p.tokenBuilder.WriteTempBuffer(r)
		return false, hexadecimalCharacterReferenceStartState
	}
	return true, decimalCharacterReferenceStartState
}

func (p *HTMLTokenizer) hexadecimalCharacterReferenceStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIHexDigit(r) {
		return true, hexadecimalCharacterReferenceState
	}
	p.parseError(AbsenceOfDigitsInNumericCharacterReference)
	p.flushCodePointsAsCharacterReference()
	return true, p.returnState
}

func (p *HTMLTokenizer) decimalCharacterReferenceStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && isASCIIDigit(r) {
		return true, decimalCharacterReferenceState
	}
	p.parseError(AbsenceOfDigitsInNumericCharacterReference)
	p.flushCodePointsAsCharacterReference()
	return true, p.returnState
}

func (p *HTMLTokenizer) hexadecimalCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof:
	case isASCIIDigit(r):
		p.tokenBuilder.AccumulateCharRef(16, int(r-0x30))
		return false, hexadecimalCharacterReferenceState
	case r >= 'A' && r <= 'F':
		p.tokenBuilder.AccumulateCharRef(16, int(r-0x37))
		return false, hexadecimalCharacterReferenceState
	case r >= 'a' && r <= 'f':
		p.tokenBuilder.AccumulateCharRef(16, int(r-0x57))
		return false, hexadecimalCharacterReferenceState
	case r == ';':
		return false, numericCharacterReferenceEndState
	}
	p.parseError(MissingSemicolonAfterCharacterReference)
	return true, numericCharacterReferenceEndState
}

func (p *HTMLTokenizer) decimalCharacterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof:
	case isASCIIDigit(r):
		p.tokenBuilder.AccumulateCharRef(10, int(r-0x30))
		return false, decimalCharacterReferenceState
	case r == ';':
		return false, numericCharacterReferenceEndState
	}
	p.parseError(MissingSemicolonAfterCharacterReference)
	return true, numericCharacterReferenceEndState
}

var numericCharacterReferenceEndStateTable = map[int]rune{
	0x80: 0x20AC,
	0x82: 0x201A,
	0x83: 0x0192,
	0x84: 0x201E,
	0x85: 0x2026,
	0x86: 0x2020,
	0x87: 0x2021,
	0x88: 0x02C6,
	0x89: 0x2030,
	0x8A: 0x0160,
	0x8B: 0x2039,
	0x8C: 0x0152,
	0x8E: 0x017D,
	0x91: 0x2018,
	0x92: 0x2019,
	0x93: 0x201C,
	0x94: 0x201D,
	0x95: 0x2022,
	0x96: 0x2013,
	0x97: 0x2014,
	0x98: 0x02DC,
	0x99: 0x2122,
	0x9A: 0x0161,
	0x9B: 0x203A,
	0x9C: 0x0153,
	0x9E: 0x017E,
	0x9F: 0x0178,
}

func (p *HTMLTokenizer) numericCharacterReferenceEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	// this is the only state that isn't supposed to consume anything
	p.input.Reconsume()
	code := p.tokenBuilder.GetCharRef()
	switch {
	case code == 0:
		p.parseError(NullCharacterReference)
		code = 0xFFFD
	case code > 0x10FFFF:
		p.parseError(CharacterReferenceOutsideUnicodeRange)
		code = 0xFFFD
	case isSurrogate(code):
		p.parseError(SurrogateCharacterReference)
		code = 0xFFFD
	case isNonCharacter(code):
		p.parseError(NoncharacterCharacterReference)
	case code == 0x0D || (isControl(code) && !isASCIIWhitespace(code)):
		p.parseError(ControlCharacterReference)
		if replacement, ok := numericCharacterReferenceEndStateTable[code]; ok {
			code = int(replacement)
		}
	}

	p.tokenBuilder.ResetTempBuffer()
	p.tokenBuilder.WriteTempBuffer(rune(code))
	p.flushCodePointsAsCharacterReference()
	return false, p.returnState
}

// SetState redirects the tokenizer. The tree constructor uses it to switch
// into RAWTEXT, RCDATA or PLAINTEXT after the start tag that asked for it.
func (p *HTMLTokenizer) SetState(state tokenizerState) {
	p.currentState = state
}

func (p *HTMLTokenizer) State() tokenizerState {
	return p.currentState
}

// Run steps the state machine until at least one token is queued or the end
// of file token has been emitted.
func (p *HTMLTokenizer) Run() error {
	for len(p.emittedTokens) == 0 && !p.eofEmitted {
		r, eof := p.input.Consume()
		if err := p.processRune(r, eof); err != nil {
			return err
		}
	}
	return nil
}

// Drain hands over every queued token in emission order.
func (p *HTMLTokenizer) Drain() []Token {
	tokens := p.emittedTokens
	p.emittedTokens = nil
	return tokens
}

// Tokenize runs the tokenizer on its own until end of file. Without a tree
// constructor nothing switches into the text states.
func (p *HTMLTokenizer) Tokenize() ([]Token, error) {
	var tokens []Token
	for !p.eofEmitted {
		if err := p.Run(); err != nil {
			return tokens, err
		}
		tokens = append(tokens, p.Drain()...)
	}
	return tokens, nil
}

func (p *HTMLTokenizer) Errors() []ErrorRecord {
	return p.errs.records
}

func (p *HTMLTokenizer) processRune(r rune, eof bool) error {
	reconsume := true
	for reconsume {
		handler := p.stateToParser(p.currentState)
		if handler == nil {
			p.fail(UnimplementedTokenizationState)
			return p.err
		}
		reconsume, p.currentState = handler(r, eof)
		if p.err != nil {
			return p.err
		}
		if p.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
			p.log.WithFields(logrus.Fields{
				"rune":  string(r),
				"eof":   eof,
				"state": p.currentState.String(),
			}).Trace("[TOKEN]")
		}
	}
	return nil
}

type tokenizerState uint

const (
	dataState tokenizerState = iota
	rcDataState
	rawTextState
	scriptDataState
	plaintextState
	tagOpenState
	endTagOpenState
	tagNameState
	rcDataLessThanSignState
	rcDataEndTagOpenState
	rcDataEndTagNameState
	rawTextLessThanSignState
	rawTextEndTagOpenState
	rawTextEndTagNameState
	scriptDataLessThanSignState
	scriptDataEndTagOpenState
	scriptDataEndTagNameState
	scriptDataEscapeStartState
	scriptDataEscapeStartDashState
	scriptDataEscapedState
	scriptDataEscapedDashState
	scriptDataEscapedDashDashState
	scriptDataEscapedLessThanSignState
	scriptDataEscapedEndTagOpenState
	scriptDataEscapedEndTagNameState
	scriptDataDoubleEscapeStartState
	scriptDataDoubleEscapedState
	scriptDataDoubleEscapedDashState
	scriptDataDoubleEscapedDashDashState
	scriptDataDoubleEscapedLessThanSignState
	scriptDataDoubleEscapeEndState
	beforeAttributeNameState
	attributeNameState
	afterAttributeNameState
	beforeAttributeValueState
	attributeValueDoubleQuotedState
	attributeValueSingleQuotedState
	attributeValueUnquotedState
	afterAttributeValueQuotedState
	selfClosingStartTagState
	bogusCommentState
	markupDeclarationOpenState
	commentStartState
	commentStartDashState
	commentState
	commentLessThanSignState
	commentLessThanSignBangState
	commentLessThanSignBangDashState
	commentLessThanSignBangDashDashState
	commentEndDashState
	commentEndState
	commentEndBangState
	doctypeState
	beforeDoctypeNameState
	doctypeNameState
	afterDoctypeNameState
	afterDoctypePublicKeywordState
	beforeDoctypePublicIdentifierState
	doctypePublicIdentifierDoubleQuotedState
	doctypePublicIdentifierSingleQuotedState
	afterDoctypePublicIdentifierState
	betweenDoctypePublicAndSystemIdentifiersState
	afterDoctypeSystemKeywordState
	beforeDoctypeSystemIdentifierState
	doctypeSystemIdentifierDoubleQuotedState
	doctypeSystemIdentifierSingleQuotedState
	afterDoctypeSystemIdentifierState
	bogusDoctypeState
	cdataSectionState
	cdataSectionBracketState
	cdataSectionEndState
	characterReferenceState
	namedCharacterReferenceState
	ambiguousAmpersandState
	numericCharacterReferenceState
	hexadecimalCharacterReferenceStartState
	decimalCharacterReferenceStartState
	hexadecimalCharacterReferenceState
	decimalCharacterReferenceState
	numericCharacterReferenceEndState
)

var tokenizerStateNames = [...]string{
	dataState:                                     "data",
	rcDataState:                                   "rcData",
	rawTextState:                                  "rawText",
	scriptDataState:                               "scriptData",
	plaintextState:                                "plaintext",
	tagOpenState:                                  "tagOpen",
	endTagOpenState:                               "endTagOpen",
	tagNameState:                                  "tagName",
	rcDataLessThanSignState:                       "rcDataLessThanSign",
	rcDataEndTagOpenState:                         "rcDataEndTagOpen",
	rcDataEndTagNameState:                         "rcDataEndTagName",
	rawTextLessThanSignState:                      "rawTextLessThanSign",
	rawTextEndTagOpenState:                        "rawTextEndTagOpen",
	rawTextEndTagNameState:                        "rawTextEndTagName",
	scriptDataLessThanSignState:                   "scriptDataLessThanSign",
	scriptDataEndTagOpenState:                     "scriptDataEndTagOpen",
	scriptDataEndTagNameState:                     "scriptDataEndTagName",
	scriptDataEscapeStartState:                    "scriptDataEscapeStart",
	scriptDataEscapeStartDashState:                "scriptDataEscapeStartDash",
	scriptDataEscapedState:                        "scriptDataEscaped",
	scriptDataEscapedDashState:                    "scriptDataEscapedDash",
	scriptDataEscapedDashDashState:                "scriptDataEscapedDashDash",
	scriptDataEscapedLessThanSignState:            "scriptDataEscapedLessThanSign",
	scriptDataEscapedEndTagOpenState:              "scriptDataEscapedEndTagOpen",
	scriptDataEscapedEndTagNameState:              "scriptDataEscapedEndTagName",
	scriptDataDoubleEscapeStartState:              "scriptDataDoubleEscapeStart",
	scriptDataDoubleEscapedState:                  "scriptDataDoubleEscaped",
	scriptDataDoubleEscapedDashState:              "scriptDataDoubleEscapedDash",
	scriptDataDoubleEscapedDashDashState:          "scriptDataDoubleEscapedDashDash",
	scriptDataDoubleEscapedLessThanSignState:      "scriptDataDoubleEscapedLessThanSign",
	scriptDataDoubleEscapeEndState:                "scriptDataDoubleEscapeEnd",
	beforeAttributeNameState:                      "beforeAttributeName",
	attributeNameState:                            "attributeName",
	afterAttributeNameState:                       "afterAttributeName",
	beforeAttributeValueState:                     "beforeAttributeValue",
	attributeValueDoubleQuotedState:               "attributeValueDoubleQuoted",
	attributeValueSingleQuotedState:               "attributeValueSingleQuoted",
	attributeValueUnquotedState:                   "attributeValueUnquoted",
	afterAttributeValueQuotedState:                "afterAttributeValueQuoted",
	selfClosingStartTagState:                      "selfClosingStartTag",
	bogusCommentState:                             "bogusComment",
	markupDeclarationOpenState:                    "markupDeclarationOpen",
	commentStartState:                             "commentStart",
	commentStartDashState:                         "commentStartDash",
	commentState:                                  "comment",
	commentLessThanSignState:                      "commentLessThanSign",
	commentLessThanSignBangState:                  "commentLessThanSignBang",
	commentLessThanSignBangDashState:              "commentLessThanSignBangDash",
	commentLessThanSignBangDashDashState:          "commentLessThanSignBangDashDash",
	commentEndDashState:                           "commentEndDash",
	commentEndState:                               "commentEnd",
	commentEndBangState:                           "commentEndBang",
	doctypeState:                                  "doctype",
	beforeDoctypeNameState:                        "beforeDoctypeName",
	doctypeNameState:                              "doctypeName",
	afterDoctypeNameState:                         "afterDoctypeName",
	afterDoctypePublicKeywordState:                "afterDoctypePublicKeyword",
	beforeDoctypePublicIdentifierState:            "beforeDoctypePublicIdentifier",
	doctypePublicIdentifierDoubleQuotedState:      "doctypePublicIdentifierDoubleQuoted",
	doctypePublicIdentifierSingleQuotedState:      "doctypePublicIdentifierSingleQuoted",
	afterDoctypePublicIdentifierState:             "afterDoctypePublicIdentifier",
	betweenDoctypePublicAndSystemIdentifiersState: "betweenDoctypePublicAndSystemIdentifiers",
	afterDoctypeSystemKeywordState:                "afterDoctypeSystemKeyword",
	beforeDoctypeSystemIdentifierState:            "beforeDoctypeSystemIdentifier",
	doctypeSystemIdentifierDoubleQuotedState:      "doctypeSystemIdentifierDoubleQuoted",
	doctypeSystemIdentifierSingleQuotedState:      "doctypeSystemIdentifierSingleQuoted",
	afterDoctypeSystemIdentifierState:             "afterDoctypeSystemIdentifier",
	bogusDoctypeState:                             "bogusDoctype",
	cdataSectionState:                             "cdataSection",
	cdataSectionBracketState:                      "cdataSectionBracket",
	cdataSectionEndState:                          "cdataSectionEnd",
	characterReferenceState:                       "characterReference",
	namedCharacterReferenceState:                  "namedCharacterReference",
	ambiguousAmpersandState:                       "ambiguousAmpersand",
	numericCharacterReferenceState:                "numericCharacterReference",
	hexadecimalCharacterReferenceStartState:       "hexadecimalCharacterReferenceStart",
	decimalCharacterReferenceStartState:           "decimalCharacterReferenceStart",
	hexadecimalCharacterReferenceState:            "hexadecimalCharacterReference",
	decimalCharacterReferenceState:                "decimalCharacterReference",
	numericCharacterReferenceEndState:             "numericCharacterReferenceEnd",
}

func (s tokenizerState) String() string {
	if int(s) < len(tokenizerStateNames) {
		return tokenizerStateNames[s]
	}
	return fmt.Sprintf("tokenizerState(%d)", s)
}
