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
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/bufbuild/astgen/reporter"
)

// decodeJSON decodes a JSON schema document into positioned document values.
// The decoder walks tokens rather than unmarshalling so that object entries
// keep their document order and every value gets a byte offset.
func decodeJSON(src *Source) (docValue, error) {
	dec := json.NewDecoder(bytes.NewReader(src.Text()))
	dec.UseNumber()
	d := &jsonDec{src: src, dec: dec}

	v, err := d.value()
	if err != nil {
		return docValue{}, err
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return docValue{}, d.syntaxErr(err)
		}
		return docValue{}, d.errAt(int(dec.InputOffset()), "unexpected %v after top-level value", tok)
	}
	return v, nil
}

type jsonDec struct {
	src *Source
	dec *json.Decoder
}

func (d *jsonDec) value() (docValue, error) {
	pos := d.tokenStart()
	tok, err := d.dec.Token()
	if err != nil {
		return docValue{}, d.syntaxErr(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return d.object(pos)
		case '[':
			return d.array(pos)
		default:
			// The decoder balances delimiters itself; a stray closing
			// delimiter surfaces as an error from Token.
			return docValue{}, d.errAt(pos, "unexpected %q", t.String())
		}
	case string:
		return docValue{kind: valString, pos: pos, end: int(d.dec.InputOffset()), str: t}, nil
	case json.Number:
		return docValue{kind: valNumber, pos: pos, end: int(d.dec.InputOffset()), str: t.String()}, nil
	case bool:
		return docValue{kind: valBool, pos: pos, end: int(d.dec.InputOffset()), b: t}, nil
	case nil:
		return docValue{kind: valNull, pos: pos, end: int(d.dec.InputOffset())}, nil
	default:
		return docValue{}, d.errAt(pos, "unexpected token %v", tok)
	}
}

// object decodes entries up to and including the closing brace. The opening
// brace has already been consumed.
func (d *jsonDec) object(pos int) (docValue, error) {
	v := docValue{kind: valObject, pos: pos}
	for d.dec.More() {
		keyPos := d.tokenStart()
		tok, err := d.dec.Token()
		if err != nil {
			return docValue{}, d.syntaxErr(err)
		}
		key, ok := tok.(string)
		if !ok {
			return docValue{}, d.errAt(keyPos, "object key must be a string, got %v", tok)
		}
		val, err := d.value()
		if err != nil {
			return docValue{}, err
		}
		v.obj = append(v.obj, docEntry{key: key, keyPos: keyPos, val: val})
	}
	if _, err := d.dec.Token(); err != nil { // closing '}'
		return docValue{}, d.syntaxErr(err)
	}
	v.end = int(d.dec.InputOffset())
	return v, nil
}

// array decodes elements up to and including the closing bracket. The
// opening bracket has already been consumed.
func (d *jsonDec) array(pos int) (docValue, error) {
	v := docValue{kind: valArray, pos: pos}
	for d.dec.More() {
		elem, err := d.value()
		if err != nil {
			return docValue{}, err
		}
		v.arr = append(v.arr, elem)
	}
	if _, err := d.dec.Token(); err != nil { // closing ']'
		return docValue{}, d.syntaxErr(err)
	}
	v.end = int(d.dec.InputOffset())
	return v, nil
}

// tokenStart returns the byte offset of the next token, skipping the
// whitespace and punctuation between the decoder's current position and it.
func (d *jsonDec) tokenStart() int {
	text := d.src.Text()
	i := int(d.dec.InputOffset())
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\r', '\n', ',', ':':
			i++
		default:
			return i
		}
	}
	return i
}

func (d *jsonDec) syntaxErr(err error) error {
	offset := int(d.dec.InputOffset())
	var serr *json.SyntaxError
	if errors.As(err, &serr) {
		offset = int(serr.Offset)
	}
	return &reporter.SyntaxError{Position: d.src.Location(offset), Underlying: err}
}

func (d *jsonDec) errAt(offset int, format string, args ...any) error {
	return &reporter.SyntaxError{Position: d.src.Location(offset), Underlying: fmt.Errorf(format, args...)}
}
