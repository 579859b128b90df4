// Package css pulls the style sheets out of a parsed document.
package css

import "github.com/heathj/based/parser/dom"

// Source is the text of one <style> element.
type Source struct {
	Element dom.Coordinate
	Media   string
	Text    string
}

// Collect returns the text of every <style> element in document order.
func Collect(doc *dom.Document) []Source {
	var sources []Source
	for _, c := range doc.GetElementsByTagName("style") {
		e := doc.ElementFor(c)
		media, _ := e.Attribute("media")
		sources = append(sources, Source{
			Element: c,
			Media:   media,
			Text:    e.Data(),
		})
	}
	return sources
}
