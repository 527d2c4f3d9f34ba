// Package segment turns plain or ruby-annotated markup into independently
// clickable word spans.
package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrSegmentation is returned when markup could not be segmented.
var ErrSegmentation = errors.New("segmentation failed")

// WordClass marks an element as an already segmented word.
const WordClass = "word"

// Unit is one clickable word in document order.
type Unit struct {
	Key  string `json:"key" yaml:"key"`
	Text string `json:"text" yaml:"text"`
}

// Result is segmented markup plus the clickable units it contains.
type Result struct {
	HTML  string `json:"html" yaml:"html"`
	Units []Unit `json:"units" yaml:"units"`
}

// Handler receives the lexical key of an activated unit.
type Handler func(ctx context.Context, key string) error

// Activate forwards the key of the unit at index to h.
func (r Result) Activate(ctx context.Context, index int, h Handler) error {
	if index < 0 || index >= len(r.Units) {
		return fmt.Errorf("unit %d out of range [0,%d)", index, len(r.Units))
	}
	return h(ctx, r.Units[index].Key)
}

// Segment wraps every word of markup in <span class="word" data-word="KEY">.
// Blank input, and markup that already contains word spans, is returned
// unchanged. Any failure also returns markup unchanged, with no units.
func Segment(markup, originalText string) Result {
	if strings.TrimSpace(originalText) == "" || strings.TrimSpace(markup) == "" {
		return Result{HTML: markup, Units: []Unit{}}
	}
	result, err := Mark(markup)
	if err != nil {
		slog.Warn("segmentation failed, using original markup", "error", err)
		return Result{HTML: markup, Units: []Unit{}}
	}
	return result
}

// Mark segments markup, reporting failures instead of falling back.
func Mark(markup string) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = fmt.Errorf("panic: %v: %w", r, ErrSegmentation)
		}
	}()

	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return Result{}, fmt.Errorf("html.ParseFragment > %v: %w", err, ErrSegmentation)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	if hasWordElement(container) {
		return Result{HTML: markup, Units: existingUnits(container)}, nil
	}

	units := []Unit{}
	walk(container, &units)

	var b strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return Result{}, fmt.Errorf("html.Render > %v: %w", err, ErrSegmentation)
		}
	}
	return Result{HTML: b.String(), Units: units}, nil
}

// skipped elements keep their text as is.
func skipped(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Rt, atom.Rp, atom.Script, atom.Style:
		return true
	}
	return false
}

func walk(n *html.Node, units *[]Unit) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				replaceText(c, units)
			}
		case html.ElementNode:
			if key, ok := attr(c, "data-word"); ok {
				// already clickable
				if key != "" {
					*units = append(*units, Unit{Key: key, Text: textContent(c)})
				}
			} else if !skipped(c) {
				walk(c, units)
			}
		}
		c = next
	}
}

// replaceText swaps a text node for its tokens: plain text for punctuation
// and boundaries, a word span for each word.
func replaceText(n *html.Node, units *[]Unit) {
	parent := n.Parent
	for _, tok := range Tokens(n.Data) {
		if tok.Kind != KindWord {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: tok.Text}, n)
			continue
		}
		span := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
			Attr: []html.Attribute{
				{Key: "class", Val: WordClass},
				{Key: "data-word", Val: tok.Key},
			},
		}
		span.AppendChild(&html.Node{Type: html.TextNode, Data: tok.Text})
		parent.InsertBefore(span, n)
		*units = append(*units, Unit{Key: tok.Key, Text: tok.Text})
	}
	parent.RemoveChild(n)
}

func hasWordElement(n *html.Node) bool {
	if n.Type == html.ElementNode && hasClass(n, WordClass) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasWordElement(c) {
			return true
		}
	}
	return false
}

// existingUnits lists the data-word elements of already segmented markup.
func existingUnits(n *html.Node) []Unit {
	units := []Unit{}
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if key, ok := attr(n, "data-word"); ok && key != "" {
				units = append(units, Unit{Key: key, Text: textContent(n)})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return units
}

// textContent joins the text below n, leaving out ruby readings.
func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.DataAtom == atom.Rt || n.DataAtom == atom.Rp {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
