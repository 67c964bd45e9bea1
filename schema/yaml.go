// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/astgen/reporter"
)

// decodeYAML decodes a YAML schema document into positioned document values.
// yaml.Node trees keep mapping entries in document order and carry
// line/column positions, which are converted to byte offsets through the
// source's line index.
func decodeYAML(src *Source) (docValue, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src.Text(), &root); err != nil {
		return docValue{}, &reporter.SyntaxError{
			Position:   reporter.Position{Path: src.Name(), Line: 1, Column: 1},
			Underlying: err,
		}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		// An empty document decodes to a zero node.
		return docValue{kind: valNull}, nil
	}
	return yamlValue(src, root.Content[0], nil)
}

// yamlValue converts one yaml.Node. expanding tracks anchors currently being
// expanded: yaml.v3 happily parses an alias that refers back into its own
// anchor, and following such an edge would recurse forever.
func yamlValue(src *Source, n *yaml.Node, expanding map[*yaml.Node]bool) (docValue, error) {
	pos := src.OffsetAt(n.Line, n.Column)

	switch n.Kind {
	case yaml.AliasNode:
		if expanding[n.Alias] {
			return docValue{}, yamlErr(src, n, "alias %q expands through its own anchor", n.Value)
		}
		if expanding == nil {
			expanding = make(map[*yaml.Node]bool)
		}
		expanding[n.Alias] = true
		v, err := yamlValue(src, n.Alias, expanding)
		delete(expanding, n.Alias)
		if err != nil {
			return docValue{}, err
		}
		v.pos, v.end = pos, pos
		return v, nil

	case yaml.MappingNode:
		v := docValue{kind: valObject, pos: pos, end: pos}
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return docValue{}, yamlErr(src, keyNode, "mapping key must be a scalar")
			}
			val, err := yamlValue(src, valNode, expanding)
			if err != nil {
				return docValue{}, err
			}
			v.obj = append(v.obj, docEntry{
				key:    keyNode.Value,
				keyPos: src.OffsetAt(keyNode.Line, keyNode.Column),
				val:    val,
			})
			v.end = max(v.end, val.end)
		}
		return v, nil

	case yaml.SequenceNode:
		v := docValue{kind: valArray, pos: pos, end: pos}
		for _, elem := range n.Content {
			ev, err := yamlValue(src, elem, expanding)
			if err != nil {
				return docValue{}, err
			}
			v.arr = append(v.arr, ev)
			v.end = max(v.end, ev.end)
		}
		return v, nil

	case yaml.ScalarNode:
		end := pos + len(n.Value)
		switch n.Tag {
		case "!!null":
			return docValue{kind: valNull, pos: pos, end: end}, nil
		case "!!bool":
			b, err := strconv.ParseBool(n.Value)
			if err != nil {
				return docValue{}, yamlErr(src, n, "bad boolean %q", n.Value)
			}
			return docValue{kind: valBool, pos: pos, end: end, b: b}, nil
		case "!!int", "!!float":
			return docValue{kind: valNumber, pos: pos, end: end, str: n.Value}, nil
		default:
			return docValue{kind: valString, pos: pos, end: end, str: n.Value}, nil
		}

	default:
		return docValue{}, yamlErr(src, n, "unsupported YAML node")
	}
}

func yamlErr(src *Source, n *yaml.Node, format string, args ...any) error {
	return &reporter.SyntaxError{
		Position:   src.Location(src.OffsetAt(n.Line, n.Column)),
		Underlying: fmt.Errorf(format, args...),
	}
}
