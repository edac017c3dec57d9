package loader

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/fieldscan/internal/schema"
)

type xmlLoader struct{}

func (xmlLoader) Name() string             { return "xml" }
func (xmlLoader) Extensions() []string     { return []string{".xml"} }
func (xmlLoader) CanLoad(path string) bool { return hasExt(path, ".xml") }

// Load maps the document to a node tree:
//   - the root element becomes the single member of the top-level object
//   - attributes become "@name" members, non-blank text "#text"
//   - an element with neither attributes nor children becomes its text, or null when empty
//   - repeated child elements collapse into an array at the first child's position
//
// Names keep their namespace prefix ("ns:item"). Values stay strings.
func (xmlLoader) Load(path string, opt Options) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml: %w", err)
	}
	defer f.Close()
	root, err := decodeXML(bufio.NewReader(f), opt.depthLimit())
	if err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	return nested(root), nil
}

type xmlElem struct {
	name    string
	attrs   []schema.Member
	members []schema.Member
	index   map[string]int
	// names whose member was built by collapsing repeats
	lists map[string]bool
	text  strings.Builder
}

func (e *xmlElem) addChild(name string, v *schema.Node) {
	if e.index == nil {
		e.index = map[string]int{}
	}
	i, seen := e.index[name]
	if !seen {
		e.index[name] = len(e.members)
		e.members = append(e.members, schema.Field(name, v))
		return
	}
	cur := e.members[i].Value
	if e.lists[name] {
		cur.Items = append(cur.Items, v)
		return
	}
	e.members[i].Value = schema.Array(cur, v)
	if e.lists == nil {
		e.lists = map[string]bool{}
	}
	e.lists[name] = true
}

func (e *xmlElem) node() *schema.Node {
	text := strings.TrimSpace(e.text.String())
	if len(e.attrs) == 0 && len(e.members) == 0 {
		if text == "" {
			return schema.Scalar(nil)
		}
		return schema.Scalar(text)
	}
	members := append(append([]schema.Member(nil), e.attrs...), e.members...)
	if text != "" {
		members = append(members, schema.Field("#text", schema.Scalar(text)))
	}
	return schema.Object(members...)
}

func elemPath(stack []*xmlElem) string {
	var path string
	for _, e := range stack {
		path = childPath(path, e.name)
	}
	return path
}

func xmlName(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

// decodeXML builds the tree with an explicit element stack. An element nested so
// deep that its parent's object would sit below limit containers is a DepthError.
func decodeXML(r io.Reader, limit int) (*schema.Node, error) {
	dec := xml.NewDecoder(r)
	var stack []*xmlElem
	var root *schema.Node
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schema.ErrMalformedInput, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, fmt.Errorf("%w: multiple root elements", schema.ErrMalformedInput)
			}
			e := &xmlElem{name: xmlName(t.Name)}
			for _, a := range t.Attr {
				e.attrs = append(e.attrs, schema.Field("@"+xmlName(a.Name), schema.Scalar(a.Value)))
			}
			stack = append(stack, e)
			if len(stack) > limit {
				return nil, &schema.DepthError{Path: elemPath(stack[:len(stack)-1]), Limit: limit}
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected </%s>", schema.ErrMalformedInput, xmlName(t.Name))
			}
			e := stack[len(stack)-1]
			if e.name != xmlName(t.Name) {
				return nil, fmt.Errorf("%w: element <%s> closed by </%s>", schema.ErrMalformedInput, e.name, xmlName(t.Name))
			}
			stack = stack[:len(stack)-1]
			v := e.node()
			if len(stack) == 0 {
				root = schema.Object(schema.Field(e.name, v))
				continue
			}
			stack[len(stack)-1].addChild(e.name, v)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: unclosed element <%s>", schema.ErrMalformedInput, stack[len(stack)-1].name)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", schema.ErrMalformedInput)
	}
	return root, nil
}
