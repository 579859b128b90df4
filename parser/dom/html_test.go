package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in      string
		attrVal bool
		want    string
	}{
		{"a & b", false, "a &amp; b"},
		{"<p>\u00A0</p>", false, "&lt;p&gt;&nbsp;&lt;/p&gt;"},
		{`say "hi" <b>`, true, "say &quot;hi&quot; <b>"},
		{"", true, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, escapeString(tt.in, tt.attrVal))
		})
	}
}

func TestHTML(t *testing.T) {
	d := NewDocument()
	d.InsertDocumentType("html", "", "")
	html := d.InsertElement(Root, "html", nil)
	head := d.InsertElement(html, "head", nil)
	style := d.InsertElement(head, "style", nil)
	for _, r := range "a>b{}" {
		d.AppendData(style, r)
	}
	title := d.InsertElement(head, "title", nil)
	for _, r := range "x & y" {
		d.AppendData(title, r)
	}
	d.InsertElement(head, "meta", []Attribute{{"charset", "utf-8"}, {"content", `a"b`}})
	body := d.InsertElement(html, "body", nil)
	p := d.InsertElement(body, "p", []Attribute{{"class", "x"}})
	for _, r := range "1 < 2" {
		d.InsertCharacter(p, r)
	}
	d.InsertComment(body, "c")

	assert.Equal(t,
		`<!DOCTYPE html><html><head><style>a>b{}</style><title>x &amp; y</title>`+
			`<meta charset="utf-8" content="a&quot;b"></head><body><p class="x">1 &lt; 2</p><!--c--></body></html>`,
		d.HTML())
	assert.Equal(t, `<p class="x">1 &lt; 2</p><!--c-->`, d.InnerHTML(body))
	assert.Equal(t, "a>b{}", d.InnerHTML(style))
}
