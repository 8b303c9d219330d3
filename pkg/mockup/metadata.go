package mockup

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/getmockd/fishem/pkg/fish"
)

// Keys used for XML content inside a metadata document.
const (
	attrPrefix = "@"
	textKey    = "#text"
)

// elementOrder places the CSDL elements whose relative order the schema
// fixes. Everything else follows in name order.
var elementOrder = map[string]int{
	"Reference":          0,
	"Include":            1,
	"IncludeAnnotations": 2,
	"DataServices":       3,
}

// DecodeMetadata converts a $metadata XML document into a Document with a
// single key: the root element's qualified name.
//
// Attributes become "@name" keys, text becomes "#text" when the element also
// has attributes or children (otherwise the element's value is the text
// itself), an empty element becomes nil, and repeated children become a
// list.
func DecodeMetadata(data []byte) (fish.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing metadata XML: %w", err)
	}
	var root *etree.Element
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if root != nil {
				return nil, fmt.Errorf("metadata XML has more than one root element: %q after %q", t.FullTag(), root.FullTag())
			}
			root = t
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return nil, errors.New("metadata XML has text outside the root element")
			}
		}
	}
	if root == nil {
		return nil, errors.New("metadata XML has no root element")
	}
	return fish.Document{root.FullTag(): elementValue(root)}, nil
}

// elementText joins every text run directly inside elem, including the
// ones that follow child elements.
func elementText(elem *etree.Element) string {
	var b strings.Builder
	for _, tok := range elem.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func elementValue(elem *etree.Element) any {
	text := elementText(elem)
	children := elem.ChildElements()

	if len(elem.Attr) == 0 && len(children) == 0 {
		if text == "" {
			return nil
		}
		return text
	}

	out := make(map[string]any, len(elem.Attr)+len(children)+1)
	for _, attr := range elem.Attr {
		out[attrPrefix+attr.FullKey()] = attr.Value
	}

	for _, child := range children {
		name := child.FullTag()
		value := elementValue(child)
		existing, seen := out[name]
		switch {
		case !seen:
			out[name] = value
		default:
			if list, ok := existing.([]any); ok {
				out[name] = append(list, value)
			} else {
				out[name] = []any{existing, value}
			}
		}
	}

	if text != "" {
		out[textKey] = text
	}
	return out
}

// EncodeMetadata renders a metadata Document back to XML with an XML
// declaration and tab indentation.
func EncodeMetadata(d fish.Document) ([]byte, error) {
	if len(d) != 1 {
		return nil, fmt.Errorf("metadata document must have exactly one root element, found %d", len(d))
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	for name, value := range d {
		if _, isList := value.([]any); isList {
			return nil, fmt.Errorf("metadata root element %q cannot be a list", name)
		}
		if err := writeElement(&doc.Element, name, value); err != nil {
			return nil, err
		}
	}

	doc.IndentTabs()
	return doc.WriteToBytes()
}

func writeElement(parent *etree.Element, name string, value any) error {
	if list, ok := value.([]any); ok {
		for _, item := range list {
			if err := writeElement(parent, name, item); err != nil {
				return err
			}
		}
		return nil
	}

	elem := parent.CreateElement(name)

	switch v := value.(type) {
	case nil:
	case map[string]any:
		return writeContent(elem, v)
	case fish.Document:
		return writeContent(elem, v)
	default:
		text, err := scalarText(v)
		if err != nil {
			return fmt.Errorf("element %q: %w", name, err)
		}
		elem.SetText(text)
	}
	return nil
}

func writeContent(elem *etree.Element, content map[string]any) error {
	var attrs, children []string
	for key := range content {
		switch {
		case key == textKey:
		case strings.HasPrefix(key, attrPrefix):
			attrs = append(attrs, key)
		default:
			children = append(children, key)
		}
	}
	sortAttrs(attrs)
	sortElements(children)

	for _, key := range attrs {
		text, err := scalarText(content[key])
		if err != nil {
			return fmt.Errorf("attribute %q: %w", key, err)
		}
		elem.CreateAttr(strings.TrimPrefix(key, attrPrefix), text)
	}

	if raw, ok := content[textKey]; ok && raw != nil {
		text, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("text of %q: %w", elem.FullTag(), err)
		}
		elem.SetText(text)
	}

	for _, key := range children {
		if err := writeElement(elem, key, content[key]); err != nil {
			return err
		}
	}
	return nil
}

func scalarText(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

// sortAttrs puts namespace declarations first, then the rest by name.
func sortAttrs(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		ni := strings.HasPrefix(keys[i], attrPrefix+"xmlns")
		nj := strings.HasPrefix(keys[j], attrPrefix+"xmlns")
		if ni != nj {
			return ni
		}
		return keys[i] < keys[j]
	})
}

func sortElements(names []string) {
	rank := func(name string) int {
		local := name
		if i := strings.LastIndex(name, ":"); i >= 0 {
			local = name[i+1:]
		}
		if r, ok := elementOrder[local]; ok {
			return r
		}
		return len(elementOrder)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}
