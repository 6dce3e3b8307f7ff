package response

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/kailas-cloud/solrmap/internal/domain"
)

// child returns the first child element with the tag and, if name is set,
// a matching name attribute.
func child(parent *etree.Element, tag, name string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, c := range parent.ChildElements() {
		if c.Tag != tag {
			continue
		}
		if name == "" || c.SelectAttrValue("name", "") == name {
			return c
		}
	}
	return nil
}

// children returns all child elements with the tag.
func children(parent *etree.Element, tag string) []*etree.Element {
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// value converts a typed response element into a Go value.
func value(el *etree.Element) (any, error) {
	text := el.Text()
	switch el.Tag {
	case "str", "date":
		return text, nil
	case "int", "long":
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, parseErr("<%s name=%q>: %v", el.Tag, el.SelectAttrValue("name", ""), err)
		}
		return n, nil
	case "float", "double":
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, parseErr("<%s name=%q>: %v", el.Tag, el.SelectAttrValue("name", ""), err)
		}
		return f, nil
	case "bool":
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, parseErr("<bool name=%q>: %v", el.SelectAttrValue("name", ""), err)
		}
		return b, nil
	case "null":
		return nil, nil
	case "arr":
		return list(el)
	case "lst", "doc":
		return dict(el)
	default:
		return text, nil
	}
}

func list(el *etree.Element) ([]any, error) {
	kids := el.ChildElements()
	out := make([]any, 0, len(kids))
	for _, c := range kids {
		v, err := value(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// dict converts a named-children element (lst, doc) into a map keyed by name.
func dict(el *etree.Element) (map[string]any, error) {
	kids := el.ChildElements()
	out := make(map[string]any, len(kids))
	for _, c := range kids {
		v, err := value(c)
		if err != nil {
			return nil, err
		}
		out[c.SelectAttrValue("name", "")] = v
	}
	return out, nil
}

func parseErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrParse, fmt.Sprintf(format, args...))
}
