package css

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/tdewolff/parse/v2"
	csslex "github.com/tdewolff/parse/v2/css"
)

type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule is a qualified rule: a selector list and its declaration block.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

type Stylesheet struct {
	Source Source
	Rules  []Rule
	// SkippedAtRules names every at-rule that was passed over, nested
	// rules included.
	SkippedAtRules []string
}

// text joins token data and collapses whitespace runs into one space.
// Leading and trailing whitespace is dropped.
type text struct {
	sb    strings.Builder
	space bool
}

func (t *text) add(tt csslex.TokenType, data []byte) {
	if tt == csslex.WhitespaceToken {
		t.space = t.sb.Len() > 0
		return
	}
	if t.space {
		t.sb.WriteByte(' ')
		t.space = false
	}
	t.sb.Write(data)
}

func (t *text) String() string {
	return t.sb.String()
}

type sheetParser struct {
	l     *csslex.Lexer
	sheet *Stylesheet
}

// Parse reads the rulesets of one style sheet. Cascade and selector matching
// are left to later stages.
func Parse(src Source) (*Stylesheet, error) {
	p := &sheetParser{
		l:     csslex.NewLexer(parse.NewInputBytes([]byte(src.Text))),
		sheet: &Stylesheet{Source: src},
	}
	for {
		tt, data := p.next()
		switch tt {
		case csslex.ErrorToken:
			return p.finish()
		case csslex.WhitespaceToken, csslex.CDOToken, csslex.CDCToken:
			continue
		case csslex.AtKeywordToken:
			p.sheet.SkippedAtRules = append(p.sheet.SkippedAtRules, strings.ToLower(string(data)))
			if !p.skipAtRule() {
				return p.finish()
			}
		default:
			if !p.ruleset(tt, data) {
				return p.finish()
			}
		}
	}
}

func (p *sheetParser) finish() (*Stylesheet, error) {
	if err := p.l.Err(); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "lexing style sheet of element %d", p.sheet.Source.Element)
	}
	return p.sheet, nil
}

func (p *sheetParser) next() (csslex.TokenType, []byte) {
	for {
		tt, data := p.l.Next()
		if tt != csslex.CommentToken {
			return tt, data
		}
	}
}

// skipAtRule consumes up to the end of an at-rule statement or block. It
// returns false at end of input.
func (p *sheetParser) skipAtRule() bool {
	depth := 0
	for {
		tt, data := p.next()
		switch tt {
		case csslex.ErrorToken:
			return false
		case csslex.SemicolonToken:
			if depth == 0 {
				return true
			}
		case csslex.AtKeywordToken:
			if depth > 0 {
				p.sheet.SkippedAtRules = append(p.sheet.SkippedAtRules, strings.ToLower(string(data)))
			}
		case csslex.LeftBraceToken:
			depth++
		case csslex.RightBraceToken:
			depth--
			if depth <= 0 {
				return true
			}
		}
	}
}

func (p *sheetParser) ruleset(tt csslex.TokenType, data []byte) bool {
	var (
		rule     Rule
		selector text
	)
	for tt != csslex.LeftBraceToken {
		switch tt {
		case csslex.ErrorToken:
			return false
		case csslex.CommaToken:
			if s := selector.String(); s != "" {
				rule.Selectors = append(rule.Selectors, s)
			}
			selector = text{}
		default:
			selector.add(tt, data)
		}
		tt, data = p.next()
	}
	if s := selector.String(); s != "" {
		rule.Selectors = append(rule.Selectors, s)
	}

	for {
		decl, end, ok := p.declaration()
		if decl != nil {
			rule.Declarations = append(rule.Declarations, *decl)
		}
		if !ok || end {
			p.sheet.Rules = append(p.sheet.Rules, rule)
			return ok
		}
	}
}

type token struct {
	tt   csslex.TokenType
	data []byte
}

// declaration reads one "property: value" pair. end is set once the block's
// closing brace is read and ok is false at end of input.
func (p *sheetParser) declaration() (decl *Declaration, end, ok bool) {
	var (
		name    text
		value   []token
		inValue bool
	)
	for {
		tt, data := p.next()
		switch tt {
		case csslex.ErrorToken:
			return newDeclaration(&name, value, inValue), true, false
		case csslex.RightBraceToken:
			return newDeclaration(&name, value, inValue), true, true
		case csslex.SemicolonToken:
			return newDeclaration(&name, value, inValue), false, true
		case csslex.ColonToken:
			if !inValue {
				inValue = true
				continue
			}
		}
		if inValue {
			value = append(value, token{tt, data})
		} else {
			name.add(tt, data)
		}
	}
}

// important strips a trailing "!" "important" token pair from a value.
// Whitespace may sit on either side of the "!".
func important(value []token) ([]token, bool) {
	i := len(value) - 1
	skipSpace := func() {
		for i >= 0 && value[i].tt == csslex.WhitespaceToken {
			i--
		}
	}
	skipSpace()
	if i < 0 || value[i].tt != csslex.IdentToken || !strings.EqualFold(string(value[i].data), "important") {
		return value, false
	}
	i--
	skipSpace()
	if i < 0 || value[i].tt != csslex.DelimToken || string(value[i].data) != "!" {
		return value, false
	}
	return value[:i], true
}

func newDeclaration(name *text, value []token, hasValue bool) *Declaration {
	property := strings.ToLower(name.String())
	if !hasValue || property == "" {
		return nil
	}
	value, imp := important(value)
	var v text
	for _, t := range value {
		v.add(t.tt, t.data)
	}
	return &Declaration{Property: property, Value: v.String(), Important: imp}
}

// ParseAll parses each source in order and stops at the first error.
func ParseAll(sources []Source) ([]*Stylesheet, error) {
	sheets := make([]*Stylesheet, 0, len(sources))
	for _, src := range sources {
		sheet, err := Parse(src)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}
