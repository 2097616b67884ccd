package toon

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ============================================================
// YAML Bridge
// ============================================================
//
// Conversion goes through yaml.Node so mapping order survives in both
// directions.

// FromYAML converts the first document of a YAML stream. An empty stream
// yields null. Aliases are expanded, up to a node budget that grows with
// the input size.
func FromYAML(data []byte) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("toon: yaml: %w", err)
	}
	if doc.Kind == 0 {
		return Null(), nil
	}
	r := &yamlReader{budget: yamlNodeBudget(len(data))}
	v, err := r.node(&doc, 0)
	if err != nil {
		return nil, fmt.Errorf("toon: yaml: %w", err)
	}
	return v, nil
}

// ErrYAMLExpansion reports a document whose aliases expand past the node
// budget.
var ErrYAMLExpansion = errors.New("alias expansion exceeds node budget")

func yamlNodeBudget(size int) int {
	return 1<<16 + 64*size
}

type yamlReader struct {
	budget int
}

func (r *yamlReader) node(n *yaml.Node, nest int) (*Value, error) {
	r.budget--
	if r.budget < 0 {
		return nil, ErrYAMLExpansion
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return r.node(n.Content[0], nest)
	case yaml.AliasNode:
		return r.node(n.Alias, nest)
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	}

	if nest >= DefaultMaxDepth {
		return nil, &DepthExceededError{Limit: DefaultMaxDepth}
	}
	switch n.Kind {
	case yaml.SequenceNode:
		items := make([]*Value, len(n.Content))
		for i, c := range n.Content {
			v, err := r.node(c, nest+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = v
		}
		return &Value{kind: KindSequence, seqVal: items}, nil
	case yaml.MappingNode:
		b := newMapBuilder(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == yaml.AliasNode {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			v, err := r.node(n.Content[i+1], nest+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.Value, err)
			}
			b.set(k.Value, v)
		}
		return b.m, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

func fromYAMLScalar(n *yaml.Node) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		if num, err := ParseNumber(n.Value); err == nil {
			return Num(num), nil
		}
		// 0x, 0o and underscore forms
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, err
		}
		return Uint(u), nil
	case "!!float":
		if num, err := ParseNumber(n.Value); err == nil {
			return Num(num), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return Float(f), nil
	}
	return Str(n.Value), nil
}

// ToYAML renders v as a YAML document, keeping mapping order.
func ToYAML(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAMLNode(v)); err != nil {
		return nil, fmt.Errorf("toon: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("toon: yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func toYAMLNode(v *Value) *yaml.Node {
	switch v.Kind() {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.boolVal)}
	case KindNumber:
		tag := "!!float"
		if v.numVal.IsInteger() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(v.numVal)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.strVal}
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range v.seqVal {
			n.Content = append(n.Content, toYAMLNode(it))
		}
		return n
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v.mapVal {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				toYAMLNode(e.Value))
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
