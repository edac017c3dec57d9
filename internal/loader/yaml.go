package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/fieldscan/internal/schema"
)

type yamlLoader struct{}

func (yamlLoader) Name() string             { return "yaml" }
func (yamlLoader) Extensions() []string     { return []string{".yaml", ".yml"} }
func (yamlLoader) CanLoad(path string) bool { return hasExt(path, ".yaml", ".yml") }

// Load reads the first document of the stream. Mapping order is kept; scalars are
// typed by their resolved tag (timestamps and binaries stay strings).
func (yamlLoader) Load(path string, opt Options) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open yaml: %w", err)
	}
	defer f.Close()
	var doc yaml.Node
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty yaml document", schema.ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: %v", schema.ErrMalformedInput, err)
	}
	b := yamlBuilder{active: map[*yaml.Node]bool{}, limit: opt.depthLimit()}
	root, err := b.node(&doc, "", 0)
	if err != nil {
		return nil, err
	}
	return nested(root), nil
}

// yamlBuilder converts a yaml.Node tree. active holds the anchors being expanded so
// a self-referencing alias fails instead of recursing forever.
type yamlBuilder struct {
	active map[*yaml.Node]bool
	limit  int
}

func (b yamlBuilder) node(n *yaml.Node, path string, depth int) (*schema.Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return schema.Scalar(nil), nil
		}
		return b.node(n.Content[0], path, depth)
	case yaml.AliasNode:
		if b.active[n.Alias] {
			return nil, fmt.Errorf("%w: recursive alias *%s at line %d", schema.ErrMalformedInput, n.Value, n.Line)
		}
		b.active[n.Alias] = true
		defer delete(b.active, n.Alias)
		return b.node(n.Alias, path, depth)
	case yaml.ScalarNode:
		return schema.Scalar(yamlScalar(n)), nil
	case yaml.SequenceNode, yaml.MappingNode:
	default:
		return nil, fmt.Errorf("%w: unexpected yaml node kind %d", schema.ErrMalformedInput, n.Kind)
	}
	if depth+1 > b.limit {
		return nil, &schema.DepthError{Path: path, Limit: b.limit}
	}
	if n.Kind == yaml.SequenceNode {
		out := schema.Array()
		for _, c := range n.Content {
			item, err := b.node(c, itemPath(path, len(out.Items)), depth+1)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, item)
		}
		return out, nil
	}
	out := schema.Object()
	pos := map[string]int{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		v, err := b.node(n.Content[i+1], childPath(path, key), depth+1)
		if err != nil {
			return nil, err
		}
		if j, dup := pos[key]; dup {
			out.Members[j].Value = v
			continue
		}
		pos[key] = len(out.Members)
		out.Members = append(out.Members, schema.Field(key, v))
	}
	return out, nil
}

func yamlScalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return f
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}
