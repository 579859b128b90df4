package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heathj/based/parser"
	"github.com/heathj/based/parser/css"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		debug  = flag.Bool("debug", false, "trace every tokenizer and tree construction step")
		format = flag.String("format", "tree", "output format: tree, html, xml or json")
		styles = flag.Bool("css", false, "also parse the document's <style> elements")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.html\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	opts := options{path: flag.Arg(0), format: *format, debug: *debug, styles: *styles}
	if err := run(os.Stdout, log, opts); err != nil {
		log.WithError(err).Fatal("based")
	}
}

type options struct {
	path   string
	format string
	debug  bool
	styles bool
}

func run(w io.Writer, log *logrus.Logger, opts options) error {
	switch opts.format {
	case "tree", "html", "xml", "json":
	default:
		return errors.Errorf("unknown format %q", opts.format)
	}

	res, err := parser.ParseFile(opts.path, parser.Config{Debug: opts.debug, Logger: log})
	if err != nil {
		return err
	}

	var sheets []*css.Stylesheet
	if opts.styles {
		sheets, err = css.ParseAll(css.Collect(res.Document))
		if err != nil {
			return errors.Wrap(err, "parsing style sheets")
		}
	}

	switch opts.format {
	case "html":
		_, err := io.WriteString(w, res.Document.HTML()+"\n")
		return errors.Wrap(err, "writing html")
	case "xml":
		return res.Document.WriteXML(w)
	case "json":
		return writeReport(w, res, sheets)
	}

	fmt.Fprintln(w, res.Document.String())
	for _, e := range res.Errors {
		log.WithField("offset", e.Offset).Warn(e.Kind.Code())
	}
	for _, sheet := range sheets {
		writeSheet(w, sheet)
	}
	return nil
}

func writeSheet(w io.Writer, sheet *css.Stylesheet) {
	fmt.Fprintf(w, "\n/* <style> at node %d */\n", sheet.Source.Element)
	for _, rule := range sheet.Rules {
		fmt.Fprintf(w, "%s {\n", strings.Join(rule.Selectors, ", "))
		for _, d := range rule.Declarations {
			important := ""
			if d.Important {
				important = " !important"
			}
			fmt.Fprintf(w, "  %s: %s%s;\n", d.Property, d.Value, important)
		}
		fmt.Fprintln(w, "}")
	}
}
