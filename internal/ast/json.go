package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Walk converts a tree into plain values for encoding: tuples become
// []interface{}, strings stay strings and integers become int64.
func Walk(node Node) (interface{}, error) {
	switch n := node.(type) {
	case Str:
		return string(n), nil
	case Int:
		return int64(n), nil
	case Tuple:
		out := make([]interface{}, len(n))
		for i, child := range n {
			v, err := Walk(child)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("cannot encode nil node")
	default:
		return nil, fmt.Errorf("cannot encode %s node %s", node.Kind(), node.String())
	}
}

// MarshalJSON encodes a tree as nested JSON arrays.
func MarshalJSON(node Node) ([]byte, error) {
	v, err := Walk(node)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// MarshalIndentJSON is MarshalJSON with indentation, for debug output.
func MarshalIndentJSON(node Node) ([]byte, error) {
	v, err := Walk(node)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

// UnmarshalJSON decodes a tree produced by MarshalJSON or by any external
// builder following the same layout. Non-integral numbers, booleans, null
// and objects are rejected.
func UnmarshalJSON(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid ast json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid ast json: trailing data")
	}
	return fromValue(v)
}

func fromValue(v interface{}) (Node, error) {
	switch x := v.(type) {
	case string:
		return Str(x), nil
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("ast leaves must be integers, got %s", x.String())
		}
		return Int(i), nil
	case []interface{}:
		t := make(Tuple, len(x))
		for i, elem := range x {
			n, err := fromValue(elem)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported ast json value %v (%T)", v, v)
	}
}
