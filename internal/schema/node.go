package schema

import "sort"

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	ScalarNode NodeKind = iota + 1
	ArrayNode
	ObjectNode
)

// Node is a parsed semi-structured value: a scalar, an array, or an object whose
// members keep their source order.
type Node struct {
	Kind    NodeKind
	Value   any
	Items   []*Node
	Members []Member
}

// Member is one key/value pair of an object node.
type Member struct {
	Key   string
	Value *Node
}

// Scalar wraps a leaf value; nil is a null leaf.
func Scalar(v any) *Node { return &Node{Kind: ScalarNode, Value: v} }

// Array builds an array node.
func Array(items ...*Node) *Node { return &Node{Kind: ArrayNode, Items: items} }

// Object builds an object node with members in the given order.
func Object(members ...Member) *Node { return &Node{Kind: ObjectNode, Members: members} }

// Field is shorthand for a Member.
func Field(key string, value *Node) Member { return Member{Key: key, Value: value} }

// FromValue converts a generic decoded value (as produced by encoding/json into any)
// into a Node. Go maps carry no order, so map keys are sorted.
func FromValue(v any) (*Node, error) {
	switch x := v.(type) {
	case *Node:
		if x == nil {
			return nil, malformed("nil node")
		}
		return x, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := &Node{Kind: ObjectNode, Members: make([]Member, 0, len(keys))}
		for _, k := range keys {
			child, err := FromValue(x[k])
			if err != nil {
				return nil, err
			}
			n.Members = append(n.Members, Member{Key: k, Value: child})
		}
		return n, nil
	case []any:
		n := &Node{Kind: ArrayNode, Items: make([]*Node, 0, len(x))}
		for _, item := range x {
			child, err := FromValue(item)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, child)
		}
		return n, nil
	case []map[string]any:
		items := make([]any, len(x))
		for i := range x {
			items[i] = x[i]
		}
		return FromValue(items)
	}
	if kindOf(v) == kindInvalid {
		return nil, malformed("unsupported value type %T", v)
	}
	return Scalar(v), nil
}
