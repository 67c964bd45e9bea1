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
	"errors"
	"fmt"

	"github.com/bufbuild/astgen/internal/idents"
	"github.com/bufbuild/astgen/reporter"
	"github.com/bufbuild/astgen/tree"
)

// Format selects the schema document format.
type Format byte

const (
	// FormatAuto selects the format from the source name's extension:
	// .yaml/.yml means YAML, anything else means JSON.
	FormatAuto Format = iota
	// FormatJSON forces the JSON front-end.
	FormatJSON
	// FormatYAML forces the YAML front-end.
	FormatYAML
)

// LoadOptions customizes [LoadWithOptions].
type LoadOptions struct {
	// The document format to assume. Defaults to [FormatAuto].
	Format Format
}

// Load parses and validates a schema document.
//
// Structural errors are reported through the handler; when the handler's
// reporter lets the run continue, the loader keeps going and batches every
// independent problem it finds before failing. On any reported error no
// Schema is returned: loading is all-or-nothing.
func Load(src *Source, handler *reporter.Handler) (*Schema, error) {
	return LoadWithOptions(src, LoadOptions{}, handler)
}

// LoadWithOptions is [Load] with explicit options.
func LoadWithOptions(src *Source, opts LoadOptions, handler *reporter.Handler) (*Schema, error) {
	var (
		doc docValue
		err error
	)
	switch {
	case opts.Format == FormatYAML, opts.Format == FormatAuto && src.IsYAML():
		doc, err = decodeYAML(src)
	default:
		doc, err = decodeJSON(src)
	}
	if err != nil {
		// Syntax errors are fatal: there is nothing to validate.
		var ewp reporter.ErrorWithPos
		if errors.As(err, &ewp) {
			_ = handler.HandleError(ewp)
		} else {
			_ = handler.HandleError(&reporter.SyntaxError{
				Position:   reporter.Position{Path: src.Name(), Line: 1, Column: 1},
				Underlying: err,
			})
		}
		return nil, handler.Error()
	}

	l := &loader{
		src:     src,
		handler: handler,
		schema:  &Schema{source: src},
		seen:    make(map[string]bool),
		exports: make(map[string]string),
	}
	if err := l.build(&doc); err != nil {
		return nil, err
	}
	if err := handler.Error(); err != nil {
		return nil, err
	}
	return l.schema, nil
}

type loader struct {
	src     *Source
	handler *reporter.Handler
	schema  *Schema

	seen    map[string]bool   // declared kind names
	exports map[string]string // exported kind name -> declared name

	rootName string
	rootPos  int
}

// errf reports one validation error. A non-nil return means the handler's
// reporter aborted the run and loading must stop; nil means keep going and
// batch more errors.
func (l *loader) errf(code, path string, pos int, format string, args ...any) error {
	return l.handler.HandleError(&reporter.ValidationError{
		Code:       code,
		Path:       path,
		Position:   l.src.Location(pos),
		Underlying: fmt.Errorf(format, args...),
	})
}

func (l *loader) build(doc *docValue) error {
	if doc.kind != valObject {
		return l.errf("bad-document", "", doc.pos, "schema document must be an object, got %s", doc.kind)
	}

	for i := range doc.obj {
		e := &doc.obj[i]
		switch e.key {
		case "root":
			if e.val.kind != valString {
				if err := l.errf("bad-root", "root", e.val.pos, "root must name a node kind, got %s", e.val.kind); err != nil {
					return err
				}
				continue
			}
			l.rootName, l.rootPos = e.val.str, e.val.pos

		case "package":
			if e.val.kind != valString || !idents.IsValid(e.val.str) {
				if err := l.errf("bad-package", "package", e.val.pos, "package must be a legal identifier"); err != nil {
					return err
				}
				continue
			}
			l.schema.pkg = e.val.str

		default:
			if err := l.kindDecl(e); err != nil {
				return err
			}
		}
	}

	// References may point forward, so they resolve only once every kind is
	// declared.
	if err := l.resolveRefs(); err != nil {
		return err
	}

	switch {
	case l.rootName == "":
		if err := l.errf("missing-root", "", doc.pos, "schema must designate a root node kind"); err != nil {
			return err
		}
	case l.schema.Kind(l.rootName) == nil:
		if err := l.errf("bad-root", "root", l.rootPos, "root names undeclared node kind %q", l.rootName); err != nil {
			return err
		}
	default:
		l.schema.root = l.schema.Kind(l.rootName)
	}
	return nil
}

func (l *loader) kindDecl(e *docEntry) error {
	name := e.key
	if !idents.IsValid(name) {
		return l.errf("bad-identifier", name, e.keyPos, "node kind name %q is not a legal identifier", name)
	}
	if l.seen[name] {
		return l.errf("duplicate-kind", name, e.keyPos, "node kind %q declared more than once", name)
	}
	if exp := idents.Export(name); l.exports[exp] != "" {
		if err := l.errf("name-collision", name, e.keyPos,
			"node kinds %q and %q have the same exported name %q", l.exports[exp], name, exp); err != nil {
			return err
		}
	} else {
		l.exports[exp] = name
	}
	l.seen[name] = true

	if e.val.kind != valObject {
		return l.errf("bad-kind", name, e.val.pos, "node kind definition must be an object, got %s", e.val.kind)
	}

	k := &NodeKind{
		schema: l.schema,
		name:   name,
		index:  len(l.schema.kinds),
		span:   tree.NewSpan(e.keyPos, e.val.end),
	}

	kindVal, ok := e.val.lookup("kind")
	switch {
	case !ok:
		if err := l.errf("bad-kind", name, e.val.pos, `node kind must declare "kind": "record" or "choice"`); err != nil {
			return err
		}
		return nil
	case kindVal.kind == valString && kindVal.str == "record":
		k.kind = KindRecord
	case kindVal.kind == valString && kindVal.str == "choice":
		k.kind = KindChoice
	default:
		return l.errf("bad-kind", name, kindVal.pos, `"kind" must be "record" or "choice"`)
	}

	for i := range e.val.obj {
		def := &e.val.obj[i]
		switch {
		case def.key == "kind":
		case def.key == "doc" && def.val.kind == valString:
			k.doc = def.val.str
		case def.key == "fields" && k.kind == KindRecord:
			fields, err := l.fields(name, &def.val)
			if err != nil {
				return err
			}
			k.fields = fields
		case def.key == "variants" && k.kind == KindChoice:
			variants, err := l.variants(name, &def.val)
			if err != nil {
				return err
			}
			k.variants = variants
		default:
			if err := l.errf("unknown-key", name, def.keyPos, "unknown key %q in %s %q", def.key, k.kind, name); err != nil {
				return err
			}
		}
	}

	if k.kind == KindChoice && len(k.variants) == 0 {
		if _, ok := e.val.lookup("variants"); !ok {
			if err := l.errf("empty-choice", name, e.val.pos, "choice %q must declare at least one variant", name); err != nil {
				return err
			}
		}
	}

	l.schema.kinds = append(l.schema.kinds, k)
	l.schema.byName.Set(name, k)
	return nil
}

// fields parses an ordered field list, for records and for variants' inline
// record payloads. path is the owner's dotted path.
func (l *loader) fields(path string, v *docValue) ([]Field, error) {
	if v.kind != valArray {
		return nil, l.errf("bad-fields", path, v.pos, "fields must be an array, got %s", v.kind)
	}

	var (
		fields  []Field
		names   = make(map[string]bool, len(v.arr))
		exports = make(map[string]string, len(v.arr))
	)
	for i := range v.arr {
		fv := &v.arr[i]
		if fv.kind != valObject {
			if err := l.errf("bad-field", path, fv.pos, "field must be an object, got %s", fv.kind); err != nil {
				return nil, err
			}
			continue
		}

		f := Field{span: tree.NewSpan(fv.pos, fv.end)}
		var (
			typeVal  *docValue
			optional bool
			optPos   int
		)
		skip := false
		for j := range fv.obj {
			e := &fv.obj[j]
			switch e.key {
			case "name":
				if e.val.kind != valString || !idents.IsValid(e.val.str) {
					if err := l.errf("bad-identifier", path, e.val.pos, "field name must be a legal identifier"); err != nil {
						return nil, err
					}
					skip = true
					continue
				}
				f.name = e.val.str
			case "type":
				typeVal = &e.val
			case "optional":
				if e.val.kind != valBool {
					if err := l.errf("bad-field", path, e.val.pos, "optional must be a boolean"); err != nil {
						return nil, err
					}
					continue
				}
				optional, optPos = e.val.b, e.val.pos
			case "span":
				if e.val.kind != valBool {
					// The field's name may not have been seen yet, so the
					// error points at the owner like the other keys do.
					if err := l.errf("bad-field", path, e.val.pos, "span must be a boolean"); err != nil {
						return nil, err
					}
					continue
				}
				f.spanful = e.val.b
			case "doc":
				if e.val.kind == valString {
					f.doc = e.val.str
				}
			default:
				if err := l.errf("unknown-key", path, e.keyPos, "unknown key %q in field", e.key); err != nil {
					return nil, err
				}
			}
		}
		if skip {
			continue
		}

		fpath := path + ".fields." + f.name
		if f.name == "" {
			if err := l.errf("bad-field", path, fv.pos, "field must declare a name"); err != nil {
				return nil, err
			}
			continue
		}
		if names[f.name] {
			if err := l.errf("duplicate-field", fpath, fv.pos, "field %q declared more than once", f.name); err != nil {
				return nil, err
			}
			continue
		}
		names[f.name] = true

		exp := idents.Export(f.name)
		switch {
		case exp == "Span" || exp == "SetSpan":
			if err := l.errf("reserved-name", fpath, fv.pos, "field name %q collides with the generated %s method", f.name, exp); err != nil {
				return nil, err
			}
			continue
		case exports[exp] != "":
			if err := l.errf("duplicate-field", fpath, fv.pos,
				"fields %q and %q have the same exported name %q", exports[exp], f.name, exp); err != nil {
				return nil, err
			}
			continue
		}
		exports[exp] = f.name

		if typeVal == nil {
			if err := l.errf("bad-field", fpath, fv.pos, "field must declare a type"); err != nil {
				return nil, err
			}
			continue
		}
		ty, err := l.typeExpr(fpath, typeVal)
		if err != nil {
			return nil, err
		}
		if ty == nil {
			continue
		}

		if optional {
			// "optional": true is sugar for an OptionalOf wrapper.
			if ty.kind == TypeOpt {
				if err := l.errf("nested-optional", fpath, optPos, "optional flag on a field whose type is already optional"); err != nil {
					return nil, err
				}
				continue
			}
			ty = l.schema.types.New(TypeExpr{kind: TypeOpt, elem: ty, span: ty.span})
		}
		f.ty = ty

		if f.spanful {
			core, _ := ty.Innermost()
			switch {
			case containsOpt(ty):
				if err := l.errf("bad-span-field", fpath, fv.pos,
					"optional field %q cannot be span-significant: spans are computed at construction, when optional elements are absent", f.name); err != nil {
					return nil, err
				}
				continue
			case core.kind != TypeRef:
				if err := l.errf("bad-span-field", fpath, fv.pos,
					"span-significant field %q must reference a node kind, not %s", f.name, core); err != nil {
					return nil, err
				}
				continue
			}
		}

		fields = append(fields, f)
	}
	return fields, nil
}

// containsOpt reports whether an optional layer appears anywhere in the type
// expression. Span union skips absent values, so such a type cannot be
// span-significant.
func containsOpt(t *TypeExpr) bool {
	for t != nil {
		if t.kind == TypeOpt {
			return true
		}
		t = t.elem
	}
	return false
}

func (l *loader) variants(kindName string, v *docValue) ([]Variant, error) {
	if v.kind != valArray {
		return nil, l.errf("bad-variants", kindName, v.pos, "variants must be an array, got %s", v.kind)
	}
	if len(v.arr) == 0 {
		return nil, l.errf("empty-choice", kindName, v.pos, "choice %q must declare at least one variant", kindName)
	}

	var (
		variants []Variant
		names    = make(map[string]bool, len(v.arr))
		exports  = make(map[string]string, len(v.arr))
	)
	for i := range v.arr {
		vv := &v.arr[i]
		if vv.kind != valObject {
			if err := l.errf("bad-variant", kindName, vv.pos, "variant must be an object, got %s", vv.kind); err != nil {
				return nil, err
			}
			continue
		}

		va := Variant{span: tree.NewSpan(vv.pos, vv.end)}
		var payload *docValue
		skip := false
		for j := range vv.obj {
			e := &vv.obj[j]
			switch e.key {
			case "name":
				if e.val.kind != valString || !idents.IsValid(e.val.str) {
					if err := l.errf("bad-identifier", kindName, e.val.pos, "variant name must be a legal identifier"); err != nil {
						return nil, err
					}
					skip = true
					continue
				}
				va.name = e.val.str
			case "payload":
				payload = &e.val
			case "doc":
				if e.val.kind == valString {
					va.doc = e.val.str
				}
			default:
				if err := l.errf("unknown-key", kindName, e.keyPos, "unknown key %q in variant", e.key); err != nil {
					return nil, err
				}
			}
		}
		if skip {
			continue
		}

		vpath := kindName + ".variants." + va.name
		if va.name == "" {
			if err := l.errf("bad-variant", kindName, vv.pos, "variant must declare a name"); err != nil {
				return nil, err
			}
			continue
		}
		if names[va.name] {
			if err := l.errf("duplicate-variant", vpath, vv.pos, "variant %q declared more than once", va.name); err != nil {
				return nil, err
			}
			continue
		}
		names[va.name] = true
		exp := idents.Export(va.name)
		if exports[exp] != "" {
			if err := l.errf("duplicate-variant", vpath, vv.pos,
				"variants %q and %q have the same exported name %q", exports[exp], va.name, exp); err != nil {
				return nil, err
			}
			continue
		}
		exports[exp] = va.name

		if payload != nil {
			abort, err := l.variantPayload(vpath, payload, &va)
			if abort != nil {
				return nil, abort
			}
			if err {
				continue
			}
		}
		variants = append(variants, va)
	}
	return variants, nil
}

// variantPayload fills in va from the payload value: a kind-reference string,
// a {"ref": ...} object, or an inline record. abort is non-nil if the run
// must stop; failed reports true when the variant should be dropped because
// its payload did not parse.
func (l *loader) variantPayload(vpath string, payload *docValue, va *Variant) (abort error, failed bool) {
	switch {
	case payload.kind == valString:
		if !idents.IsValid(payload.str) {
			return l.errf("bad-payload", vpath, payload.pos, "payload reference %q is not a legal identifier", payload.str), true
		}
		va.payload = PayloadRef
		va.ref = l.schema.types.New(TypeExpr{
			kind: TypeRef,
			ref:  payload.str,
			span: tree.NewSpan(payload.pos, payload.end),
		})
		return nil, false

	case payload.kind == valObject:
		if kindVal, ok := payload.lookup("kind"); ok {
			if kindVal.kind != valString || kindVal.str != "record" {
				return l.errf("bad-payload", vpath, kindVal.pos, `inline payload "kind" must be "record"`), true
			}
			for i := range payload.obj {
				e := &payload.obj[i]
				switch e.key {
				case "kind":
				case "fields":
					fields, err := l.fields(vpath, &e.val)
					if err != nil {
						return err, true
					}
					va.fields = fields
				default:
					if err := l.errf("unknown-key", vpath, e.keyPos, "unknown key %q in inline payload", e.key); err != nil {
						return err, true
					}
				}
			}
			va.payload = PayloadInline
			if va.fields == nil {
				va.fields = []Field{}
			}
			return nil, false
		}
		if _, ok := payload.lookup("ref"); ok {
			ty, err := l.typeExpr(vpath, payload)
			if err != nil {
				return err, true
			}
			if ty == nil || ty.kind != TypeRef {
				return l.errf("bad-payload", vpath, payload.pos, "variant payload must be a node reference or an inline record"), true
			}
			va.payload = PayloadRef
			va.ref = ty
			return nil, false
		}
		return l.errf("bad-payload", vpath, payload.pos, "variant payload must be a node reference or an inline record"), true

	case payload.kind == valNull:
		return nil, false // explicit unit variant

	default:
		return l.errf("bad-payload", vpath, payload.pos, "variant payload must be a node reference or an inline record, got %s", payload.kind), true
	}
}

// typeExpr parses a type expression. It returns (nil, nil) if the expression
// was invalid but the run may continue.
func (l *loader) typeExpr(path string, v *docValue) (*TypeExpr, error) {
	span := tree.NewSpan(v.pos, v.end)

	switch v.kind {
	case valString:
		if p := PrimitiveByName(v.str); p != PrimInvalid {
			return l.schema.types.New(TypeExpr{kind: TypePrimitive, prim: p, span: span}), nil
		}
		if !idents.IsValid(v.str) {
			return nil, l.errf("bad-type", path, v.pos, "%q is neither a primitive nor a legal kind name", v.str)
		}
		return l.schema.types.New(TypeExpr{kind: TypeRef, ref: v.str, span: span}), nil

	case valObject:
		if refVal, ok := v.lookup("ref"); ok {
			ty := TypeExpr{kind: TypeRef, span: span}
			if refVal.kind != valString || !idents.IsValid(refVal.str) {
				return nil, l.errf("bad-type", path, refVal.pos, `"ref" must name a node kind`)
			}
			ty.ref = refVal.str
			for i := range v.obj {
				e := &v.obj[i]
				switch e.key {
				case "ref":
				case "indirect":
					if e.val.kind != valBool {
						return nil, l.errf("bad-type", path, e.val.pos, `"indirect" must be a boolean`)
					}
					ty.indirect = e.val.b
				default:
					if err := l.errf("unknown-key", path, e.keyPos, "unknown key %q in reference type", e.key); err != nil {
						return nil, err
					}
				}
			}
			return l.schema.types.New(ty), nil
		}
		if seqVal, ok := v.lookup("seq"); ok {
			if len(v.obj) > 1 {
				return nil, l.errf("bad-type", path, v.pos, `a "seq" type takes no other keys`)
			}
			elem, err := l.typeExpr(path, seqVal)
			if elem == nil || err != nil {
				return nil, err
			}
			return l.schema.types.New(TypeExpr{kind: TypeSeq, elem: elem, span: span}), nil
		}
		if optVal, ok := v.lookup("opt"); ok {
			if len(v.obj) > 1 {
				return nil, l.errf("bad-type", path, v.pos, `an "opt" type takes no other keys`)
			}
			elem, err := l.typeExpr(path, optVal)
			if elem == nil || err != nil {
				return nil, err
			}
			if elem.kind == TypeOpt {
				return nil, l.errf("nested-optional", path, optVal.pos, "opt(opt(...)) has no distinct representation and is not allowed")
			}
			return l.schema.types.New(TypeExpr{kind: TypeOpt, elem: elem, span: span}), nil
		}
		return nil, l.errf("bad-type", path, v.pos, `type object must have exactly one of "ref", "seq", or "opt"`)

	default:
		return nil, l.errf("bad-type", path, v.pos, "type must be a string or an object, got %s", v.kind)
	}
}

// resolveRefs checks that every reference names a declared kind. Forward
// references are fine; this is why the check runs after all declarations.
func (l *loader) resolveRefs() error {
	check := func(path string, ty *TypeExpr) error {
		for cur := ty; cur != nil; cur = cur.elem {
			if cur.kind == TypeRef && l.schema.Kind(cur.ref) == nil {
				if err := l.errf("dangling-ref", path, cur.span.Start, "reference to undeclared node kind %q", cur.ref); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, k := range l.schema.kinds {
		for _, f := range k.fields {
			if err := check(k.name+".fields."+f.name, f.ty); err != nil {
				return err
			}
		}
		for _, va := range k.variants {
			vpath := k.name + ".variants." + va.name
			if va.ref != nil {
				if err := check(vpath, va.ref); err != nil {
					return err
				}
			}
			for _, f := range va.fields {
				if err := check(vpath+".fields."+f.name, f.ty); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
