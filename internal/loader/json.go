package loader

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/KaramelBytes/fieldscan/internal/schema"
)

type jsonLoader struct{}

func (jsonLoader) Name() string             { return "json" }
func (jsonLoader) Extensions() []string     { return []string{".json"} }
func (jsonLoader) CanLoad(path string) bool { return hasExt(path, ".json") }

func (jsonLoader) Load(path string, opt Options) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}
	defer f.Close()
	dec := newJSONDecoder(bufio.NewReader(f), opt.depthLimit())
	root, err := dec.node("", 0)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: %w: trailing data after top-level value", schema.ErrMalformedInput)
	}
	return nested(root), nil
}

type ndjsonLoader struct{}

func (ndjsonLoader) Name() string             { return "ndjson" }
func (ndjsonLoader) Extensions() []string     { return []string{".ndjson", ".jsonl"} }
func (ndjsonLoader) CanLoad(path string) bool { return hasExt(path, ".ndjson", ".jsonl") }

// Load reads one JSON value per line into a top-level array; blank lines are skipped.
func (ndjsonLoader) Load(path string, opt Options) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ndjson: %w", err)
	}
	defer f.Close()
	dec := newJSONDecoder(bufio.NewReader(f), opt.depthLimit())
	root := schema.Array()
	for opt.MaxRows <= 0 || len(root.Items) < opt.MaxRows {
		item, err := dec.node(itemPath("", len(root.Items)), 1)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(root.Items)+1, err)
		}
		root.Items = append(root.Items, item)
	}
	return nested(root), nil
}

type jsonDecoder struct {
	*json.Decoder
	limit int
}

func newJSONDecoder(r io.Reader, limit int) jsonDecoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return jsonDecoder{Decoder: dec, limit: limit}
}

// node reads one value from the token stream keeping object member order. A
// repeated key keeps its first position and takes the last value. depth counts the
// containers above the value; opening one more than limit fails with a DepthError.
func (d jsonDecoder) node(path string, depth int) (*schema.Node, error) {
	tok, err := d.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t != '{' && t != '[' {
			return nil, fmt.Errorf("%w: unexpected delimiter %v", schema.ErrMalformedInput, t)
		}
		if depth+1 > d.limit {
			return nil, &schema.DepthError{Path: path, Limit: d.limit}
		}
		if t == '{' {
			return d.object(path, depth+1)
		}
		n := schema.Array()
		for d.More() {
			child, err := d.node(itemPath(path, len(n.Items)), depth+1)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			n.Items = append(n.Items, child)
		}
		if _, err := d.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return n, nil
	case json.Number:
		return schema.Scalar(numberValue(t)), nil
	default:
		// string, bool or nil
		return schema.Scalar(t), nil
	}
}

func (d jsonDecoder) object(path string, depth int) (*schema.Node, error) {
	n := schema.Object()
	pos := map[string]int{}
	for d.More() {
		kt, err := d.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", schema.ErrMalformedInput, kt)
		}
		child, err := d.node(childPath(path, key), depth)
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if i, dup := pos[key]; dup {
			n.Members[i].Value = child
			continue
		}
		pos[key] = len(n.Members)
		n.Members = append(n.Members, schema.Field(key, child))
	}
	if _, err := d.Token(); err != nil {
		return nil, unexpectedEOF(err)
	}
	return n, nil
}

// numberValue returns int64 for integral literals that fit, float64 otherwise.
func numberValue(n json.Number) any {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return string(n)
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
