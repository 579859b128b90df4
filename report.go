package main

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/heathj/based/parser"
	"github.com/heathj/based/parser/css"
	"github.com/pkg/errors"
)

type errorReport struct {
	Offset int    `json:"offset"`
	Code   string `json:"code"`
}

// report is the -format json output.
type report struct {
	QuirksMode  string            `json:"quirksMode"`
	Nodes       int               `json:"nodes"`
	Errors      []errorReport     `json:"errors"`
	Stylesheets []*css.Stylesheet `json:"stylesheets,omitempty"`
}

func newReport(res *parser.Result, sheets []*css.Stylesheet) report {
	r := report{
		QuirksMode:  string(res.Document.QuirksMode),
		Nodes:       res.Document.Len(),
		Errors:      make([]errorReport, 0, len(res.Errors)),
		Stylesheets: sheets,
	}
	for _, e := range res.Errors {
		r.Errors = append(r.Errors, errorReport{Offset: e.Offset, Code: e.Kind.Code()})
	}
	return r
}

func writeReport(w io.Writer, res *parser.Result, sheets []*css.Stylesheet) error {
	if err := json.MarshalWrite(w, newReport(res, sheets), jsontext.WithIndent("  ")); err != nil {
		return errors.Wrap(err, "writing json report")
	}
	return nil
}
