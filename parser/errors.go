package parser

import (
	"fmt"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ParsingError is a recoverable, spec-anticipated problem with the input.
// They are logged and parsing carries on.
// https://html.spec.whatwg.org/multipage/parsing.html#parse-errors
type ParsingError uint8

const (
	AbruptClosingOfEmptyComment ParsingError = iota
	AbruptDoctypePublicIdentifier
	AbruptDoctypeSystemIdentifier
	AbsenceOfDigitsInNumericCharacterReference
	CDATAInHTMLContent
	CharacterReferenceOutsideUnicodeRange
	ControlCharacterReference
	DuplicateAttribute
	EndTagWithAttributes
	EndTagWithTrailingSolidus
	EOFBeforeTagName
	EOFInComment
	EOFInDoctype
	EOFInTag
	IncorrectlyClosedComment
	IncorrectlyOpenedComment
	InvalidCharacterSequenceAfterDoctypeName
	InvalidFirstCharacterOfTagName
	MissingAttributeValue
	MissingDoctypeName
	MissingDoctypePublicIdentifier
	MissingDoctypeSystemIdentifier
	MissingEndTagName
	MissingQuoteBeforeDoctypePublicIdentifier
	MissingQuoteBeforeDoctypeSystemIdentifier
	MissingSemicolonAfterCharacterReference
	MissingWhitespaceAfterDoctypePublicKeyword
	MissingWhitespaceAfterDoctypeSystemKeyword
	MissingWhitespaceBeforeDoctypeName
	MissingWhitespaceBetweenAttributes
	MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers
	NestedComment
	NoncharacterCharacterReference
	NonVoidHTMLElementStartTagWithTrailingSolidus
	NullCharacterReference
	SurrogateCharacterReference
	UnexpectedCharacterAfterDoctypeSystemIdentifier
	UnexpectedCharacterInAttributeName
	UnexpectedCharacterInUnquotedAttributeValue
	UnexpectedEqualsSignBeforeAttributeName
	UnexpectedNullCharacter
	UnexpectedQuestionMarkInsteadOfTagName
	UnexpectedSolidusInTag
	UnknownNamedCharacterReference

	// tree construction
	MissingDoctype
	NonConformingDoctype
	UnexpectedDoctype
	EndTagWithoutMatchingOpenElement
)

var parsingErrorNames = [...]string{
	AbruptClosingOfEmptyComment:                              "AbruptClosingOfEmptyComment",
	AbruptDoctypePublicIdentifier:                            "AbruptDoctypePublicIdentifier",
	AbruptDoctypeSystemIdentifier:                            "AbruptDoctypeSystemIdentifier",
	AbsenceOfDigitsInNumericCharacterReference:               "AbsenceOfDigitsInNumericCharacterReference",
	CDATAInHTMLContent:                                       "CDATAInHTMLContent",
	CharacterReferenceOutsideUnicodeRange:                    "CharacterReferenceOutsideUnicodeRange",
	ControlCharacterReference:                                "ControlCharacterReference",
	DuplicateAttribute:                                       "DuplicateAttribute",
	EndTagWithAttributes:                                     "EndTagWithAttributes",
	EndTagWithTrailingSolidus:                                "EndTagWithTrailingSolidus",
	EOFBeforeTagName:                                         "EOFBeforeTagName",
	EOFInComment:                                             "EOFInComment",
	EOFInDoctype:                                             "EOFInDoctype",
	EOFInTag:                                                 "EOFInTag",
	IncorrectlyClosedComment:                                 "IncorrectlyClosedComment",
	IncorrectlyOpenedComment:                                 "IncorrectlyOpenedComment",
	InvalidCharacterSequenceAfterDoctypeName:                 "InvalidCharacterSequenceAfterDoctypeName",
	InvalidFirstCharacterOfTagName:                           "InvalidFirstCharacterOfTagName",
	MissingAttributeValue:                                    "MissingAttributeValue",
	MissingDoctypeName:                                       "MissingDoctypeName",
	MissingDoctypePublicIdentifier:                           "MissingDoctypePublicIdentifier",
	MissingDoctypeSystemIdentifier:                           "MissingDoctypeSystemIdentifier",
	MissingEndTagName:                                        "MissingEndTagName",
	MissingQuoteBeforeDoctypePublicIdentifier:                "MissingQuoteBeforeDoctypePublicIdentifier",
	MissingQuoteBeforeDoctypeSystemIdentifier:                "MissingQuoteBeforeDoctypeSystemIdentifier",
	MissingSemicolonAfterCharacterReference:                  "MissingSemicolonAfterCharacterReference",
	MissingWhitespaceAfterDoctypePublicKeyword:               "MissingWhitespaceAfterDoctypePublicKeyword",
	MissingWhitespaceAfterDoctypeSystemKeyword:               "MissingWhitespaceAfterDoctypeSystemKeyword",
	MissingWhitespaceBeforeDoctypeName:                       "MissingWhitespaceBeforeDoctypeName",
	MissingWhitespaceBetweenAttributes:                       "MissingWhitespaceBetweenAttributes",
	MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers: "MissingWhitespaceBetweenDoctypePublicAndSystemIdentifiers",
	NestedComment:                                            "NestedComment",
	NoncharacterCharacterReference:                           "NoncharacterCharacterReference",
	NonVoidHTMLElementStartTagWithTrailingSolidus:            "NonVoidHTMLElementStartTagWithTrailingSolidus",
	NullCharacterReference:                                   "NullCharacterReference",
	SurrogateCharacterReference:                              "SurrogateCharacterReference",
	UnexpectedCharacterAfterDoctypeSystemIdentifier:          "UnexpectedCharacterAfterDoctypeSystemIdentifier",
	UnexpectedCharacterInAttributeName:                       "UnexpectedCharacterInAttributeName",
	UnexpectedCharacterInUnquotedAttributeValue:              "UnexpectedCharacterInUnquotedAttributeValue",
	UnexpectedEqualsSignBeforeAttributeName:                  "UnexpectedEqualsSignBeforeAttributeName",
	UnexpectedNullCharacter:                                  "UnexpectedNullCharacter",
	UnexpectedQuestionMarkInsteadOfTagName:                   "UnexpectedQuestionMarkInsteadOfTagName",
	UnexpectedSolidusInTag:                                   "UnexpectedSolidusInTag",
	UnknownNamedCharacterReference:                           "UnknownNamedCharacterReference",
	MissingDoctype:                                           "MissingDoctype",
	NonConformingDoctype:                                     "NonConformingDoctype",
	UnexpectedDoctype:                                        "UnexpectedDoctype",
	EndTagWithoutMatchingOpenElement:                         "EndTagWithoutMatchingOpenElement",
}

func (e ParsingError) String() string {
	if int(e) < len(parsingErrorNames) {
		return parsingErrorNames[e]
	}
	return fmt.Sprintf("ParsingError(%d)", e)
}

// Code is the kebab-case identifier the HTML standard uses for the error,
// e.g. "eof-in-tag".
func (e ParsingError) Code() string {
	return strcase.ToKebab(e.String())
}

// ErrorRecord is one entry of the parse error log.
type ErrorRecord struct {
	Offset int
	Kind   ParsingError
}

func (r ErrorRecord) String() string {
	return fmt.Sprintf("%d: %s", r.Offset, r.Kind.Code())
}

// errorSink is the append-only log shared by the tokenizer and the tree
// constructor. Offsets come from the character reader at detection time.
type errorSink struct {
	records []ErrorRecord
	offset  func() int
	log     *logrus.Entry
}

func (s *errorSink) record(kind ParsingError) {
	r := ErrorRecord{Offset: s.offset(), Kind: kind}
	s.records = append(s.records, r)
	s.log.WithFields(logrus.Fields{"offset": r.Offset, "code": kind.Code()}).Debug("parse error")
}

// FatalKind enumerates the conditions the parser does not model.
type FatalKind uint8

const (
	UnimplementedTokenizationState FatalKind = iota
	UnimplementedInsertionMode
	UnhandledTokenForInsertionMode
	CurrentTokenWrongType
)

var fatalKindNames = [...]string{
	UnimplementedTokenizationState: "unimplemented tokenization state",
	UnimplementedInsertionMode:     "unimplemented insertion mode",
	UnhandledTokenForInsertionMode: "unhandled token for insertion mode",
	CurrentTokenWrongType:          "current token has the wrong type",
}

func (k FatalKind) String() string {
	if int(k) < len(fatalKindNames) {
		return fatalKindNames[k]
	}
	return fmt.Sprintf("FatalKind(%d)", k)
}

// ParserError aborts the parse. It marks a limitation of this parser, not a
// problem with the document.
type ParserError struct {
	Kind   FatalKind
	State  tokenizerState
	Mode   insertionMode
	Token  *Token
	Offset int
}

func (e *ParserError) Error() string {
	switch e.Kind {
	case UnimplementedTokenizationState:
		return fmt.Sprintf("%s: %s at offset %d", e.Kind, e.State, e.Offset)
	case CurrentTokenWrongType:
		return fmt.Sprintf("%s: in %s at offset %d", e.Kind, e.State, e.Offset)
	default:
		return fmt.Sprintf("%s: %s in %s at offset %d", e.Kind, e.Token, e.Mode, e.Offset)
	}
}

func newParserError(e *ParserError) error {
	return errors.WithStack(e)
}
