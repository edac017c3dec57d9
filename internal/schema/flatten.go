package schema

import "strconv"

type flattener struct {
	g     Granularity
	limit int
	out   []FieldRecord
}

// Flatten walks root depth-first, pre-order, and returns one record per scalar leaf.
// Object members extend the path with ".key" (or "key" under an empty prefix) and
// array elements with "[i]". Empty objects and arrays produce no records.
func Flatten(root *Node, prefix string, opt Options) ([]FieldRecord, error) {
	return flattenFrom(root, prefix, 0, opt)
}

// flattenFrom flattens a subtree that already sits below depth containers.
func flattenFrom(root *Node, prefix string, depth int, opt Options) ([]FieldRecord, error) {
	f := &flattener{g: opt.Granularity, limit: opt.maxDepth()}
	if err := f.walk(root, prefix, depth); err != nil {
		return nil, err
	}
	return f.out, nil
}

func (f *flattener) walk(n *Node, path string, depth int) error {
	if n == nil {
		return malformed("nil node at %q", path)
	}
	switch n.Kind {
	case ScalarNode:
		f.emit(path, n.Value)
		return nil
	case ObjectNode, ArrayNode:
	default:
		return malformed("unknown node kind %d at %q", n.Kind, path)
	}
	if depth+1 > f.limit {
		return &DepthError{Path: path, Limit: f.limit}
	}
	if n.Kind == ObjectNode {
		for _, m := range n.Members {
			if err := f.walk(m.Value, memberPath(path, m.Key), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for i, item := range n.Items {
		if err := f.walk(item, indexPath(path, i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) emit(path string, v any) {
	rec := FieldRecord{Path: path, Type: InferScalar(v, f.g), Example: v}
	if isNull(v) {
		rec.Example = NotAvailable
	}
	f.out = append(f.out, rec)
}

func memberPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// FlattenRecords flattens a document. When the root is an array it is treated as a
// batch of homogeneous records: each element is flattened on its own and the results
// are merged by path, keeping the first occurrence of every path. Otherwise every
// path must be unique.
func FlattenRecords(root *Node, opt Options) ([]FieldRecord, error) {
	if root == nil {
		return nil, malformed("nil document")
	}
	if root.Kind != ArrayNode {
		recs, err := Flatten(root, "", opt)
		if err != nil {
			return nil, err
		}
		if dup, ok := firstDuplicate(recs); ok {
			return nil, malformed("ambiguous field path %q", dup)
		}
		return recs, nil
	}
	batches := make([][]FieldRecord, 0, len(root.Items))
	for _, item := range root.Items {
		recs, err := flattenFrom(item, "", 1, opt)
		if err != nil {
			return nil, err
		}
		batches = append(batches, recs)
	}
	return mergeFirstWins(batches), nil
}

// mergeFirstWins keeps the first record seen for each path, in first-seen order.
func mergeFirstWins(batches [][]FieldRecord) []FieldRecord {
	seen := make(map[string]struct{})
	var out []FieldRecord
	for _, recs := range batches {
		for _, r := range recs {
			if _, ok := seen[r.Path]; ok {
				continue
			}
			seen[r.Path] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

func firstDuplicate(recs []FieldRecord) (string, bool) {
	seen := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		if _, ok := seen[r.Path]; ok {
			return r.Path, true
		}
		seen[r.Path] = struct{}{}
	}
	return "", false
}
