package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CleanPath trims slashes and collapses empty segments: "/a//b/" -> "a/b".
func CleanPath(path string) string {
	return strings.Join(SplitPath(path), "/")
}

// SplitPath returns the non-empty segments of a slash-separated path.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinPath joins segments into a clean path.
func JoinPath(parts ...string) string {
	return CleanPath(strings.Join(parts, "/"))
}

// Normalize converts an arbitrary Go value into its JSON tree form and strips
// nulls and empty objects, matching what a realtime database stores.
func Normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return decodeNode(data)
}

// Decode parses raw JSON into tree form with nulls pruned. Numbers decode as
// json.Number so integer prices survive unchanged.
func Decode(raw json.RawMessage) (any, error) {
	return decodeNode(raw)
}

func decodeNode(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var node any
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return prune(node), nil
}

func prune(node any) any {
	m, ok := node.(map[string]any)
	if !ok {
		return node
	}
	for key, child := range m {
		child = prune(child)
		if child == nil {
			delete(m, key)
			continue
		}
		m[key] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Tree is a JSON document addressed by slash-separated paths. It is not safe
// for concurrent use.
type Tree struct {
	root any
}

// NewTree decodes raw JSON into a tree. Empty input yields an empty tree.
func NewTree(raw json.RawMessage) (*Tree, error) {
	root, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

// Get returns the node at path, or nil.
func (t *Tree) Get(path string) any {
	node := t.root
	for _, seg := range SplitPath(path) {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[seg]
	}
	return node
}

// GetJSON returns the encoded node at path; "null" when absent.
func (t *Tree) GetJSON(path string) json.RawMessage {
	data, err := json.Marshal(t.Get(path))
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}

// Set replaces the node at path with a normalized value. A nil value deletes
// the node, and parents left empty disappear with it.
func (t *Tree) Set(path string, value any) {
	t.root = setAt(t.root, SplitPath(path), value)
}

// Update sets each child of path independently, leaving siblings untouched.
func (t *Tree) Update(path string, children map[string]any) {
	base := SplitPath(path)
	for key, value := range children {
		segs := append(append([]string(nil), base...), SplitPath(key)...)
		t.root = setAt(t.root, segs, value)
	}
}

// MarshalJSON encodes the whole tree.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.root)
}

func setAt(node any, segs []string, value any) any {
	if len(segs) == 0 {
		return prune(value)
	}
	m, ok := node.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	child := setAt(m[segs[0]], segs[1:], value)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
