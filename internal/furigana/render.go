package furigana

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kotoba-reader/kotoba/internal/japanese"
)

// Separator joins rendered tokens.
const Separator = "　"

// Render writes units as markup joined by Separator. Each convertible token
// becomes <span class="word" data-word="TOKEN"> holding its text and
// <ruby>base<rp>(</rp><rt>reading</rt><rp>)</rp></ruby> elements.
// Units without a lexical key are written as plain text; literal units keep
// the span but carry no ruby.
func Render(units []Unit) (string, error) {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteString(Separator)
		}
		var node *html.Node
		if u.Key == "" {
			node = textNode(u.Token)
		} else {
			node = wordNode(u)
		}
		if err := html.Render(&b, node); err != nil {
			return "", fmt.Errorf("html.Render > %w", err)
		}
	}
	return b.String(), nil
}

func wordNode(u Unit) *html.Node {
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: "word"},
			{Key: "data-word", Val: u.Key},
		},
	}
	for _, seg := range u.Segments {
		if seg.Reading == "" {
			span.AppendChild(textNode(seg.Base))
			continue
		}
		span.AppendChild(rubyNode(seg))
	}
	return span
}

func rubyNode(seg japanese.Segment) *html.Node {
	ruby := element(atom.Ruby)
	ruby.AppendChild(textNode(seg.Base))

	open := element(atom.Rp)
	open.AppendChild(textNode("("))
	ruby.AppendChild(open)

	rt := element(atom.Rt)
	rt.AppendChild(textNode(seg.Reading))
	ruby.AppendChild(rt)

	closing := element(atom.Rp)
	closing.AppendChild(textNode(")"))
	ruby.AppendChild(closing)
	return ruby
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
