package parser

import (
	"os"

	"github.com/heathj/based/parser/dom"
	"github.com/pkg/errors"
)

// Parser alternates between the tokenizer and the tree constructor. The
// tokenizer runs until it has queued at least one token, then the tree
// constructor drains the queue. Tree construction may redirect the tokenizer
// before it resumes, which is why the two never run concurrently.
type Parser struct {
	Tokenizer       *HTMLTokenizer
	TreeConstructor *HTMLTreeConstructor
	errs            *errorSink
}

// NewParser sets up a parse of src. Carriage returns are normalized up front.
func NewParser(src string, cfg Config) *Parser {
	logger := cfg.logger()
	in := newReader(src)
	errs := &errorSink{offset: in.Offset, log: logger.WithField("component", "errors")}
	return &Parser{
		Tokenizer:       newHTMLTokenizer(in, errs, logger.WithField("component", "tokenizer")),
		TreeConstructor: NewHTMLTreeConstructor(errs, logger.WithField("component", "tree")),
		errs:            errs,
	}
}

// Progress carries what the tree constructor needs the tokenizer to do next.
type Progress struct {
	TokenizerState *tokenizerState
}

func MakeProgress(tokenizerState tokenizerState) *Progress {
	return &Progress{
		TokenizerState: &tokenizerState,
	}
}

// Result is the outcome of a successful parse.
type Result struct {
	Document *dom.Document
	// Errors lists recoverable parse errors in the order they were found.
	Errors []ErrorRecord
}

// Parse runs to end of file or to the first fatal error. A fatal error is a
// *ParserError and leaves no document.
func (p *Parser) Parse() (*Result, error) {
	for !p.TreeConstructor.Done() {
		if err := p.Tokenizer.Run(); err != nil {
			return nil, err
		}

		tokens := p.Tokenizer.Drain()
		if len(tokens) == 0 {
			break
		}
		for i := range tokens {
			progress, err := p.TreeConstructor.ProcessToken(&tokens[i])
			if err != nil {
				return nil, err
			}
			if progress != nil && progress.TokenizerState != nil {
				p.Tokenizer.SetState(*progress.TokenizerState)
			}
			if p.TreeConstructor.Done() {
				break
			}
		}
	}

	return &Result{
		Document: p.TreeConstructor.Document,
		Errors:   p.errs.records,
	}, nil
}

// ParseString is a shorthand for NewParser(src, cfg).Parse().
func ParseString(src string, cfg Config) (*Result, error) {
	return NewParser(src, cfg).Parse()
}

// ParseFile reads and parses the HTML document at path.
func ParseFile(path string, cfg Config) (*Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	res, err := ParseString(string(b), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return res, nil
}
