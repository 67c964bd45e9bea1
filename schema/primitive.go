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

import "fmt"

// Primitive is one of the built-in scalar types a field may have.
type Primitive byte

const (
	PrimInvalid Primitive = iota

	PrimInt
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimFloat32
	PrimFloat64
	PrimBool
	PrimString
	PrimBytes
	PrimRune
)

var primNames = map[Primitive]string{
	PrimInt:     "int",
	PrimInt8:    "int8",
	PrimInt16:   "int16",
	PrimInt32:   "int32",
	PrimInt64:   "int64",
	PrimUint:    "uint",
	PrimUint8:   "uint8",
	PrimUint16:  "uint16",
	PrimUint32:  "uint32",
	PrimUint64:  "uint64",
	PrimFloat32: "float32",
	PrimFloat64: "float64",
	PrimBool:    "bool",
	PrimString:  "string",
	PrimBytes:   "bytes",
	PrimRune:    "rune",
}

var primsByName = func() map[string]Primitive {
	m := make(map[string]Primitive, len(primNames))
	for p, name := range primNames {
		m[name] = p
	}
	return m
}()

// PrimitiveByName returns the primitive with the given schema-level name,
// or PrimInvalid if name does not denote a primitive.
func PrimitiveByName(name string) Primitive {
	return primsByName[name]
}

// String implements [fmt.Stringer], returning the schema-level name.
func (p Primitive) String() string {
	if name, ok := primNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Primitive(%d)", byte(p))
}
