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

// The JSON and YAML front-ends both decode into these positioned document
// values, so the build/validate pass is format-agnostic. Object entries keep
// document order, and every value remembers the byte range it came from.

type valueKind byte

const (
	valNull valueKind = iota
	valBool
	valNumber
	valString
	valObject
	valArray
)

func (k valueKind) String() string {
	switch k {
	case valNull:
		return "null"
	case valBool:
		return "bool"
	case valNumber:
		return "number"
	case valString:
		return "string"
	case valObject:
		return "object"
	case valArray:
		return "array"
	default:
		return "invalid"
	}
}

type docValue struct {
	kind valueKind
	pos  int // byte offset of the value's first token
	end  int // byte offset just past the value

	str  string // valString, and the raw text of valNumber
	b    bool   // valBool
	obj  []docEntry
	arr  []docValue
}

type docEntry struct {
	key    string
	keyPos int
	val    docValue
}

// lookup finds the first entry with the given key, for objects.
func (v *docValue) lookup(key string) (*docValue, bool) {
	for i := range v.obj {
		if v.obj[i].key == key {
			return &v.obj[i].val, true
		}
	}
	return nil, false
}
