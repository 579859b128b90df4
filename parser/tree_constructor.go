package parser

import (
	"fmt"

	"github.com/heathj/based/parser/dom"
	"github.com/sirupsen/logrus"
)

// HTMLTreeConstructor holds the state for various state of the tree construction phase.
type HTMLTreeConstructor struct {
	Document              *dom.Document
	insertionMode         insertionMode
	originalInsertionMode insertionMode
	stackOfOpenElements   []dom.Coordinate
	headElementPointer    dom.Coordinate
	framesetOK            bool
	done                  bool
	// set while a token is processed and returned to the driver once the
	// token has been fully handled
	progress              *Progress
	acknowledgedSelfClose bool
	errs                  *errorSink
	log                   *logrus.Entry
	mappings              map[insertionMode]treeConstructionModeHandler
}

type treeConstructionModeHandler func(t *Token) (bool, insertionMode, error)

// NewHTMLTreeConstructor creates an HTMLTreeConstructor that reports parse
// errors to errs.
func NewHTMLTreeConstructor(errs *errorSink, log *logrus.Entry) *HTMLTreeConstructor {
	tr := HTMLTreeConstructor{
		Document:           dom.NewDocument(),
		insertionMode:      initial,
		headElementPointer: dom.Root,
		framesetOK:         true,
		errs:               errs,
		log:                log,
	}

	tr.createMappings()
	return &tr
}

// Modes without an entry fail with UnimplementedInsertionMode.
func (c *HTMLTreeConstructor) createMappings() {
	c.mappings = map[insertionMode]treeConstructionModeHandler{
		initial:        c.initialModeHandler,
		beforeHTML:     c.beforeHTMLModeHandler,
		beforeHead:     c.beforeHeadModeHandler,
		inHead:         c.inHeadModeHandler,
		afterHead:      c.afterHeadModeHandler,
		inBody:         c.inBodyModeHandler,
		text:           c.textModeHandler,
		afterBody:      c.afterBodyModeHandler,
		afterAfterBody: c.afterAfterBodyModeHandler,
	}
}

// Done reports whether the end of file token has been accepted.
func (c *HTMLTreeConstructor) Done() bool {
	return c.done
}

func (c *HTMLTreeConstructor) parseError(kind ParsingError) {
	c.errs.record(kind)
}

func (c *HTMLTreeConstructor) unhandled(t *Token) (bool, insertionMode, error) {
	tok := *t
	return false, c.insertionMode, newParserError(&ParserError{
		Kind:   UnhandledTokenForInsertionMode,
		Mode:   c.insertionMode,
		Token:  &tok,
		Offset: c.errs.offset(),
	})
}

func (c *HTMLTreeConstructor) getCurrentNode() dom.Coordinate {
	if len(c.stackOfOpenElements) == 0 {
		return dom.Root
	}
	return c.stackOfOpenElements[len(c.stackOfOpenElements)-1]
}

func (c *HTMLTreeConstructor) pushOpenElement(e dom.Coordinate) {
	c.stackOfOpenElements = append(c.stackOfOpenElements, e)
}

func (c *HTMLTreeConstructor) popOpenElement() dom.Coordinate {
	e := c.getCurrentNode()
	c.stackOfOpenElements = c.stackOfOpenElements[:len(c.stackOfOpenElements)-1]
	return e
}

// Depth is the size of the stack of open elements.
func (c *HTMLTreeConstructor) Depth() int {
	return len(c.stackOfOpenElements)
}

// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-comment
func (c *HTMLTreeConstructor) insertCommentAt(t *Token, parent dom.Coordinate) {
	c.Document.InsertComment(parent, t.Data)
}

func (c *HTMLTreeConstructor) insertComment(t *Token) {
	c.insertCommentAt(t, c.getCurrentNode())
}

// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-character
func (c *HTMLTreeConstructor) insertCharacter(t *Token) {
	for _, r := range t.Data {
		c.Document.InsertCharacter(c.getCurrentNode(), r)
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#insert-an-html-element
func (c *HTMLTreeConstructor) insertHTMLElementForToken(t *Token) dom.Coordinate {
	elem := c.Document.InsertElement(c.getCurrentNode(), t.TagName, t.Attributes)
	c.pushOpenElement(elem)
	return elem
}

func (c *HTMLTreeConstructor) acknowledgeSelfClosingFlag(t *Token) {
	if t.SelfClosing {
		c.acknowledgedSelfClose = true
	}
}

var scopeList = []string{
	"applet",
	"caption",
	"html",
	"table",
	"td",
	"th",
	"marquee",
	"object",
	"template",
}

var buttonScopeList = append([]string{"button"}, scopeList...)

// https://html.spec.whatwg.org/multipage/parsing.html#has-an-element-in-the-specific-scope
func (c *HTMLTreeConstructor) elementInSpecificScope(names, list []string) bool {
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		entry := c.Document.ElementFor(c.stackOfOpenElements[i])
		for _, name := range names {
			if entry.Name == name {
				return true
			}
		}

		for _, name := range list {
			if entry.Name == name {
				return false
			}
		}
	}

	return false
}

func (c *HTMLTreeConstructor) elementInScope(names ...string) bool {
	return c.elementInSpecificScope(names, scopeList)
}

func (c *HTMLTreeConstructor) elementInButtonScope(names ...string) bool {
	return c.elementInSpecificScope(names, buttonScopeList)
}

// popUntil pops the stack of open elements until an element with one of names
// has been popped.
func (c *HTMLTreeConstructor) popUntil(names ...string) {
	for len(c.stackOfOpenElements) > 0 {
		popped := c.Document.ElementFor(c.popOpenElement())
		for _, name := range names {
			if popped.Name == name {
				return
			}
		}
	}
}

func (c *HTMLTreeConstructor) useRulesFor(t *Token, returnState, expectedState insertionMode) (bool, insertionMode, error) {
	reprocess, nextstate, err := c.mappings[expectedState](t)

	// if the next state is the same as the expected state, this means that mode handler didn't
	// change the state. We should use the current return state.
	if nextstate == expectedState {
		return reprocess, returnState, err
	}
	return reprocess, nextstate, err
}

func isWhitespaceToken(t *Token) bool {
	if t.TokenType != characterToken {
		return false
	}
	switch t.Data {
	case "\u0009", "\u000A", "\u000C", "\u000D", " ":
		return true
	}
	return false
}

// presentIdentifier maps the missing marker to the empty string the document
// stores.
func presentIdentifier(id string) string {
	if id == missing {
		return ""
	}
	return id
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-initial-insertion-mode
func (c *HTMLTreeConstructor) initialModeHandler(t *Token) (bool, insertionMode, error) {
	switch {
	case isWhitespaceToken(t):
		return false, initial, nil
	case t.TokenType == commentToken:
		c.insertCommentAt(t, dom.Root)
		return false, initial, nil
	case t.TokenType == docTypeToken:
		if t.TagName != "html" ||
			t.PublicIdentifier != missing ||
			(t.SystemIdentifier != missing &&
				t.SystemIdentifier != "about:legacy-compat") {
			c.parseError(NonConformingDoctype)
		}

		c.Document.InsertDocumentType(t.TagName, presentIdentifier(t.PublicIdentifier), presentIdentifier(t.SystemIdentifier))
		c.Document.QuirksMode = quirksModeFor(t)
		return false, beforeHTML, nil
	}

	c.parseError(MissingDoctype)
	c.Document.QuirksMode = dom.Quirks
	return true, beforeHTML, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-html-insertion-mode
func (c *HTMLTreeConstructor) beforeHTMLModeHandler(t *Token) (bool, insertionMode, error) {
	switch {
	case t.TokenType == docTypeToken:
		c.parseError(UnexpectedDoctype)
		return false, beforeHTML, nil
	case t.TokenType == commentToken:
		c.insertCommentAt(t, dom.Root)
		return false, beforeHTML, nil
	case isWhitespaceToken(t):
		return false, beforeHTML, nil
	case t.TokenType == startTagToken && t.TagName == "html":
		elem := c.Document.InsertElement(dom.Root, t.TagName, t.Attributes)
		c.pushOpenElement(elem)
		return false, beforeHead, nil
	}

	// no implied <html>
	return c.unhandled(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-head-insertion-mode
func (c *HTMLTreeConstructor) beforeHeadModeHandler(t *Token) (bool, insertionMode, error) {
	switch {
	case isWhitespaceToken(t):
		return false, beforeHead, nil
	case t.TokenType == commentToken:
		c.insertComment(t)
		return false, beforeHead, nil
	case t.TokenType == docTypeToken:
		c.parseError(UnexpectedDoctype)
		return false, beforeHead, nil
	case t.TokenType == startTagToken && t.TagName == "head":
		c.headElementPointer = c.insertHTMLElementForToken(t)
		return false, inHead, nil
	}

	return c.unhandled(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#generic-rcdata-element-parsing-algorithm
func (c *HTMLTreeConstructor) genericRawTextParsing(t *Token, state tokenizerState) (bool, insertionMode, error) {
	c.insertHTMLElementForToken(t)
	c.progress = MakeProgress(state)
	c.originalInsertionMode = c.insertionMode
	return false, text, nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inhead
func (c *HTMLTreeConstructor) inHeadModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		if isWhitespaceToken(t) {
			return false, inHead, nil
		}
	case commentToken:
		c.insertComment(t)
		return false, inHead, nil
	case docTypeToken:
		c.parseError(UnexpectedDoctype)
		return false, inHead, nil
	case startTagToken:
		switch t.TagName {
		case "base", "basefont", "bgsound", "link", "meta":
			c.insertHTMLElementForToken(t)
			c.popOpenElement()
			c.acknowledgeSelfClosingFlag(t)
			return false, inHead, nil
		case "title":
			return c.genericRawTextParsing(t, rcDataState)
		case "noframes", "style":
			return c.genericRawTextParsing(t, rawTextState)
		}
	case endTagToken:
		if t.TagName == "head" {
			c.popOpenElement()
			return false, afterHead, nil
		}
	}

	return c.unhandled(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incdata
func (c *HTMLTreeConstructor) textModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		cur := c.getCurrentNode()
		for _, r := range t.Data {
			c.Document.AppendData(cur, r)
		}
		return false, text, nil
	case endTagToken:
		c.popOpenElement()
		return false, c.originalInsertionMode, nil
	}

	return c.unhandled(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-head-insertion-mode
func (c *HTMLTreeConstructor) afterHeadModeHandler(t *Token) (bool, insertionMode, error) {
	switch {
	case isWhitespaceToken(t):
		c.insertCharacter(t)
		return false, afterHead, nil
	case t.TokenType == commentToken:
		c.insertComment(t)
		return false, afterHead, nil
	case t.TokenType == docTypeToken:
		c.parseError(UnexpectedDoctype)
		return false, afterHead, nil
	case t.TokenType == startTagToken && t.TagName == "body":
		c.insertHTMLElementForToken(t)
		c.framesetOK = false
		return false, inBody, nil
	}

	return c.unhandled(t)
}

var headings = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inbody
func (c *HTMLTreeConstructor) inBodyModeHandler(t *Token) (bool, insertionMode, error) {
	switch t.TokenType {
	case characterToken:
		if t.Data == "\u0000" {
			c.parseError(UnexpectedNullCharacter)
			return false, inBody, nil
		}
		c.insertCharacter(t)
		if !isWhitespaceToken(t) {
			c.framesetOK = false
		}
		return false, inBody, nil
	case commentToken:
		c.insertComment(t)
		return false, inBody, nil
	case docTypeToken:
		c.parseError(UnexpectedDoctype)
		return false, inBody, nil
	case startTagToken:
		switch t.TagName {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			c.insertHTMLElementForToken(t)
			return false, inBody, nil
		}
	case endTagToken:
		switch t.TagName {
		case "body":
			return false, afterBody, nil
		case "html":
			return true, afterBody, nil
		case "p":
			if !c.elementInButtonScope("p") {
				c.parseError(EndTagWithoutMatchingOpenElement)
				return false, inBody, nil
			}
			c.popUntil("p")
			return false, inBody, nil
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if !c.elementInScope(headings...) {
				c.parseError(EndTagWithoutMatchingOpenElement)
				return false, inBody, nil
			}
			c.popUntil(headings...)
			return false, inBody, nil
		}
	case endOfFileToken:
		c.done = true
		return false, inBody, nil
	}

	return c.unhandled(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterbody
func (c *HTMLTreeConstructor) afterBodyModeHandler(t *Token) (bool, insertionMode, error) {
	switch {
	case isWhitespaceToken(t):
		return c.useRulesFor(t, afterBody, inBody)
	case t.TokenType == commentToken:
		c.insertCommentAt(t, c.stackOfOpenElements[0])
		return false, afterBody, nil
	case t.TokenType == docTypeToken:
		c.parseError(UnexpectedDoctype)
		return false, afterBody, nil
	case t.TokenType == endTagToken && t.TagName == "html":
		return false, afterAfterBody, nil
	case t.TokenType == endOfFileToken:
		c.done = true
		return false, afterBody, nil
	}

	return c.unhandled(t)
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-body-insertion-mode
func (c *HTMLTreeConstructor) afterAfterBodyModeHandler(t *Token) (bool, insertionMode, error) {
	switch {
	case t.TokenType == commentToken:
		c.insertCommentAt(t, dom.Root)
		return false, afterAfterBody, nil
	case isWhitespaceToken(t), t.TokenType == docTypeToken:
		return c.useRulesFor(t, afterAfterBody, inBody)
	case t.TokenType == endOfFileToken:
		c.done = true
		return false, afterAfterBody, nil
	}

	return c.unhandled(t)
}

// ProcessToken runs t through the insertion modes until it is consumed. The
// returned Progress, when not nil, tells the driver how to redirect the
// tokenizer before it reads on.
func (c *HTMLTreeConstructor) ProcessToken(t *Token) (*Progress, error) {
	c.progress = nil
	c.acknowledgedSelfClose = false

	reprocess := true
	for reprocess {
		handler, ok := c.mappings[c.insertionMode]
		if !ok {
			tok := *t
			return nil, newParserError(&ParserError{
				Kind:   UnimplementedInsertionMode,
				Mode:   c.insertionMode,
				Token:  &tok,
				Offset: c.errs.offset(),
			})
		}

		var (
			next insertionMode
			err  error
		)
		reprocess, next, err = handler(t)
		if err != nil {
			return nil, err
		}
		if c.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
			c.log.WithFields(logrus.Fields{
				"token":     t.String(),
				"mode":      c.insertionMode.String(),
				"next":      next.String(),
				"reprocess": reprocess,
				"depth":     len(c.stackOfOpenElements),
			}).Debug("[TREE]")
		}
		c.insertionMode = next
	}

	if t.TokenType == startTagToken && t.SelfClosing && !c.acknowledgedSelfClose {
		c.parseError(NonVoidHTMLElementStartTagWithTrailingSolidus)
	}
	return c.progress, nil
}

type insertionMode uint

const (
	initial insertionMode = iota
	beforeHTML
	beforeHead
	inHead
	inHeadNoScript
	afterHead
	inBody
	text
	inTable
	inTableText
	inCaption
	inColumnGroup
	inTableBody
	inRow
	inCell
	inSelect
	inSelectInTable
	inTemplate
	afterBody
	inFrameset
	afterFrameset
	afterAfterBody
	afterAfterFrameset
)

var insertionModeNames = [...]string{
	initial:            "initial",
	beforeHTML:         "before html",
	beforeHead:         "before head",
	inHead:             "in head",
	inHeadNoScript:     "in head noscript",
	afterHead:          "after head",
	inBody:             "in body",
	text:               "text",
	inTable:            "in table",
	inTableText:        "in table text",
	inCaption:          "in caption",
	inColumnGroup:      "in column group",
	inTableBody:        "in table body",
	inRow:              "in row",
	inCell:             "in cell",
	inSelect:           "in select",
	inSelectInTable:    "in select in table",
	inTemplate:         "in template",
	afterBody:          "after body",
	inFrameset:         "in frameset",
	afterFrameset:      "after frameset",
	afterAfterBody:     "after after body",
	afterAfterFrameset: "after after frameset",
}

func (m insertionMode) String() string {
	if int(m) < len(insertionModeNames) {
		return insertionModeNames[m]
	}
	return fmt.Sprintf("insertionMode(%d)", m)
}
