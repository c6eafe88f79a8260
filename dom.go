// Copyright 2024 The svgmesh Authors. All rights reserved.

package svgmesh

import (
	"encoding/xml"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// element is one node of the decoded document tree: tag name, attributes,
// ordered children and accumulated character data.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
	text     string
}

func (e *element) attr(name string) string {
	return e.attrs[name]
}

// childText returns the trimmed character data of the first child with the
// given tag, or the empty string.
func (e *element) childText(name string) string {
	for _, c := range e.children {
		if c.name == name {
			return strings.TrimSpace(c.text)
		}
	}
	return ""
}

// buildDOM decodes an XML token stream into an element tree. Character
// sets other than UTF-8 are handled by the html charset reader.
func buildDOM(r io.Reader) (*element, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var root *element
	var stack []*element
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch se := t.(type) {
		case xml.StartElement:
			el := &element{name: se.Name.Local, attrs: make(map[string]string)}
			for _, attr := range se.Attr {
				el.attrs[attr.Name.Local] = attr.Value
			}
			if len(stack) == 0 {
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.text += string(se)
			}
		}
	}
	if root == nil {
		return nil, missingRootError
	}
	return root, nil
}
