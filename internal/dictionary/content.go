package dictionary

import (
	"bytes"
	"encoding/json"
	"strings"
)

type contentKind int

const (
	contentEmpty contentKind = iota
	contentText
	contentList
	contentElement
)

// contentNode is one node of a glossary item: a plain string, a list of
// nodes, or an element such as {"tag":"li","content":...} or
// {"type":"structured-content","content":...}.
type contentNode struct {
	kind     contentKind
	text     string
	hasText  bool
	tag      string
	children []contentNode
	content  *contentNode
}

func (n *contentNode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		n.kind = contentText
		return json.Unmarshal(data, &n.text)
	case '[':
		n.kind = contentList
		return json.Unmarshal(data, &n.children)
	case '{':
		var element struct {
			Tag     string          `json:"tag"`
			Text    json.RawMessage `json:"text"`
			Content *contentNode    `json:"content"`
		}
		if err := json.Unmarshal(data, &element); err != nil {
			return err
		}
		n.kind = contentElement
		n.tag = element.Tag
		n.content = element.Content
		if len(element.Text) > 0 {
			if text, ok := scalarText(element.Text); ok {
				n.text = text
				n.hasText = true
			}
		}
		return nil
	default:
		// numbers, booleans and null carry no text
		n.kind = contentEmpty
		return nil
	}
}

// texts walks the node depth first. Element content comes before the
// element's own text, and an li element additionally yields the space-joined
// text of everything below it. The result is trimmed and deduplicated.
func (n contentNode) texts() []string {
	var out []string
	switch n.kind {
	case contentText:
		out = append(out, strings.TrimSpace(n.text))
	case contentList:
		for _, child := range n.children {
			out = append(out, child.texts()...)
		}
	case contentElement:
		var inner []string
		if n.content != nil {
			inner = n.content.texts()
		}
		out = append(out, inner...)
		if n.hasText {
			out = append(out, strings.TrimSpace(n.text))
		}
		if n.tag == "li" && len(inner) > 0 {
			out = append(out, strings.TrimSpace(strings.Join(inner, " ")))
		}
	}
	return dedupe(out)
}

func dedupe(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
