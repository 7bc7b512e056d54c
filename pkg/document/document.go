package document

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Document is an XML document parsed into an element tree, along with the namespace
// declarations found anywhere in the document (prefix to URI, where the empty prefix holds
// the default namespace).
type Document struct {
	Root       *Element
	Namespaces map[string]string
}

// Element is a single XML element: local name, the namespace prefix it was written with,
// attributes in document order, child elements in document order, and any character data.
type Element struct {
	Name     string
	Prefix   string
	Attrs    []Attr
	Children []*Element
	Text     string
}

type Attr struct {
	Name  string
	Value string
}

// Attr returns the value of the named attribute, reporting whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// FirstChild returns the first child element with the given name, or nil. Multiple children
// of the same name beyond the first are intentionally not reachable through this accessor.
func (e *Element) FirstChild(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ExtractAttributes returns the element's attributes as a map, with each key prepended with
// the given prefix.
func ExtractAttributes(e *Element, prefix string) map[string]string {
	out := make(map[string]string, len(e.Attrs))
	for _, a := range e.Attrs {
		out[prefix+a.Name] = a.Value
	}
	return out
}

// Load parses the XML document at the given path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open document %q: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse document %q: %w", path, err)
	}
	return doc, nil
}

// Parse reads an XML document from the reader into an element tree.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{
		Namespaces: make(map[string]string),
	}

	// tracks URI -> prefix so element prefixes can be recovered after the decoder resolves
	// names to namespace URIs
	prefixByURI := make(map[string]string)

	decoder := xml.NewDecoder(r)

	var stack []*Element
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			elt := &Element{
				Name: t.Name.Local,
			}
			for _, a := range t.Attr {
				switch {
				case a.Name.Space == "xmlns":
					doc.Namespaces[a.Name.Local] = a.Value
					prefixByURI[a.Value] = a.Name.Local
				case a.Name.Space == "" && a.Name.Local == "xmlns":
					doc.Namespaces[""] = a.Value
					prefixByURI[a.Value] = ""
				default:
					elt.Attrs = append(elt.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
				}
			}
			if t.Name.Space != "" {
				elt.Prefix = prefixByURI[t.Name.Space]
			}

			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, fmt.Errorf("malformed XML: multiple root elements")
				}
				doc.Root = elt
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, elt)
			}
			stack = append(stack, elt)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("malformed XML: unbalanced end element %q", t.Name.Local)
			}
			elt := stack[len(stack)-1]
			elt.Text = strings.TrimSpace(elt.Text)
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if doc.Root == nil {
		return nil, fmt.Errorf("malformed XML: no root element")
	}

	return doc, nil
}
