package brackets

import (
	"encoding/json"
	"fmt"
)

// Mapping is the persisted shape of a bracket:
//
//	{"value": CompetitorId | null, "left": Mapping | null, "right": Mapping | null}
//
// Parent links are derived on Deserialize and never stored.
type Mapping struct {
	Value *string  `json:"value"`
	Left  *Mapping `json:"left"`
	Right *Mapping `json:"right"`
}

func Serialize(tree *Tree) Mapping {
	if tree == nil || tree.root == nil {
		return Mapping{}
	}
	return *toMapping(tree.root)
}

func toMapping(n *Node) *Mapping {
	if n == nil {
		return nil
	}
	m := &Mapping{
		Left:  toMapping(n.Left),
		Right: toMapping(n.Right),
	}
	if n.Value != nil {
		v := *n.Value
		m.Value = &v
	}
	return m
}

// Deserialize rebuilds a tree from its mapping. A node with exactly one child
// is rejected with ErrMalformedBracket.
func Deserialize(m Mapping) (*Tree, error) {
	root, err := fromMapping(&m, nil, "root")
	if err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

func fromMapping(m *Mapping, parent *Node, path string) (*Node, error) {
	if (m.Left == nil) != (m.Right == nil) {
		return nil, fmt.Errorf("%w: node %s has exactly one child", ErrMalformedBracket, path)
	}
	node := &Node{parent: parent}
	if m.Value != nil {
		node.setValue(*m.Value)
	}
	if m.Left == nil {
		return node, nil
	}

	var err error
	if node.Left, err = fromMapping(m.Left, node, path+".left"); err != nil {
		return nil, err
	}
	if node.Right, err = fromMapping(m.Right, node, path+".right"); err != nil {
		return nil, err
	}
	return node, nil
}

// Clone returns a deep copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := Mapping{}
	if m.Value != nil {
		v := *m.Value
		out.Value = &v
	}
	if m.Left != nil {
		l := m.Left.Clone()
		out.Left = &l
	}
	if m.Right != nil {
		r := m.Right.Clone()
		out.Right = &r
	}
	return out
}

// DecodeMapping converts a plain nested map, such as the result of decoding
// JSON into an any, into a Mapping. Every node must carry a "value" key
// holding a string or null; children must be objects or null.
func DecodeMapping(raw map[string]any) (Mapping, error) {
	m, err := decodeNode(raw, "root")
	if err != nil {
		return Mapping{}, err
	}
	return *m, nil
}

func decodeNode(raw map[string]any, path string) (*Mapping, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: node %s is null", ErrMalformedBracket, path)
	}
	value, ok := raw["value"]
	if !ok {
		return nil, fmt.Errorf("%w: node %s has no value key", ErrMalformedBracket, path)
	}

	m := &Mapping{}
	switch v := value.(type) {
	case nil:
	case string:
		m.Value = &v
	default:
		return nil, fmt.Errorf("%w: node %s value must be a string or null, got %T", ErrMalformedBracket, path, value)
	}

	var err error
	if m.Left, err = decodeChild(raw, "left", path); err != nil {
		return nil, err
	}
	if m.Right, err = decodeChild(raw, "right", path); err != nil {
		return nil, err
	}
	if (m.Left == nil) != (m.Right == nil) {
		return nil, fmt.Errorf("%w: node %s has exactly one child", ErrMalformedBracket, path)
	}
	return m, nil
}

func decodeChild(raw map[string]any, key, path string) (*Mapping, error) {
	child, ok := raw[key]
	if !ok || child == nil {
		return nil, nil
	}
	obj, ok := child.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: node %s.%s must be an object or null, got %T", ErrMalformedBracket, path, key, child)
	}
	return decodeNode(obj, path+"."+key)
}

// UnmarshalBracket decodes the JSON form of a bracket and rebuilds the tree.
func UnmarshalBracket(data []byte) (*Tree, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBracket, err)
	}
	m, err := DecodeMapping(raw)
	if err != nil {
		return nil, err
	}
	return Deserialize(m)
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(Serialize(t))
}
