package export

import (
	"bytes"
	"fmt"
)

// Field is a single labelled value inside a document item. Code fields are
// rendered inside fenced blocks.
type Field struct {
	Label string
	Value string
	Code  bool
}

// Item is one bulleted entry of a section.
type Item struct {
	Fields []Field
}

// Section groups items under a heading. Empty is printed when the section
// has no items.
type Section struct {
	Heading string
	Items   []Item
	Empty   string
}

// Document is a nested report ready for markdown rendering.
type Document struct {
	Title    string
	Sections []Section
}

// MarkdownExporter renders Documents into markdown bytes.
type MarkdownExporter struct{}

// NewMarkdownExporter builds a markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Render produces a markdown report for the document.
func (e *MarkdownExporter) Render(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("markdown requires a title")
	}
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "# %s\n\n", doc.Title)

	for _, section := range doc.Sections {
		fmt.Fprintf(buf, "## %s\n\n", section.Heading)
		if len(section.Items) == 0 {
			if section.Empty != "" {
				fmt.Fprintf(buf, "%s\n\n", section.Empty)
			}
			continue
		}
		for _, item := range section.Items {
			for i, field := range item.Fields {
				prefix := "  - "
				if i == 0 {
					prefix = "- "
				}
				if field.Code {
					fmt.Fprintf(buf, "%s**%s**:\n```\n%s\n```\n", prefix, field.Label, field.Value)
					continue
				}
				fmt.Fprintf(buf, "%s**%s**: %s\n", prefix, field.Label, field.Value)
			}
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}
