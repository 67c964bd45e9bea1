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

// Package idents validates schema identifiers and derives the exported Go
// names the emitter uses for them.
package idents

// goKeywords is the set of Go keywords, which are not legal schema
// identifiers: kind, field, and variant names all surface as (parts of) Go
// identifiers in the generated source.
var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true,
	"continue": true, "default": true, "defer": true, "else": true,
	"fallthrough": true, "for": true, "func": true, "go": true,
	"goto": true, "if": true, "import": true, "interface": true,
	"map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true,
	"var": true,
}

// IsValid reports whether name is a legal schema identifier: a letter
// followed by letters, digits, or underscores, and not a Go keyword.
//
// Identifiers are restricted to ASCII and must start with a letter (not an
// underscore) so that capitalizing the first byte always yields an exported
// Go name.
func IsValid(name string) bool {
	if name == "" || goKeywords[name] {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c == '_' || c >= '0' && c <= '9'):
		default:
			return false
		}
	}
	return true
}

// Export returns the exported Go name for a schema identifier: the same name
// with its first letter capitalized. name must satisfy [IsValid].
func Export(name string) string {
	if name == "" {
		return name
	}
	c := name[0]
	if c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + name[1:]
	}
	return name
}

// Unexport returns an unexported Go name for a schema identifier, for use as
// a generated parameter name. If lowercasing the first letter produces a Go
// keyword, an underscore is appended.
func Unexport(name string) string {
	if name == "" {
		return name
	}
	c := name[0]
	if c >= 'A' && c <= 'Z' {
		name = string(c-'A'+'a') + name[1:]
	}
	if goKeywords[name] {
		return name + "_"
	}
	return name
}
