package xmldom

import (
	"strings"
)

// Render serializes the element tree as indented XML text, four spaces per
// nesting level, with a trailing newline after the root element.
func Render(root *Element) string {
	var sb strings.Builder
	renderElement(&sb, root, 0)
	return sb.String()
}

func renderElement(sb *strings.Builder, e *Element, depth int) {
	indent := strings.Repeat("    ", depth)
	sb.WriteString(indent)
	sb.WriteByte('<')
	sb.WriteString(e.Name)
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(a.Value))
		sb.WriteByte('"')
	}
	if len(e.Children) == 0 {
		sb.WriteString("/>\n")
		return
	}
	sb.WriteString(">\n")
	for _, c := range e.Children {
		renderElement(sb, c, depth+1)
	}
	sb.WriteString(indent)
	sb.WriteString("</")
	sb.WriteString(e.Name)
	sb.WriteString(">\n")
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
