// Package fieldtype maps declared type expressions from the source
// manifest onto the Go types used in emitted DTOs.
package fieldtype

import "strings"

// Type is the enumerated output type of a DTO field.
type Type uint8

// List of output field types.
const (
	TypeInvalid Type = iota
	TypeString
	TypeInt
	TypeInt64
	TypeFloat64
	TypeBool
	TypeTime
	TypeUUID
	TypeBytes
	TypeJSON
	TypeEntity // named reference to another entity
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeString:  "string",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
	TypeBool:    "bool",
	TypeTime:    "time.Time",
	TypeUUID:    "uuid.UUID",
	TypeBytes:   "[]byte",
	TypeJSON:    "json.RawMessage",
	TypeEntity:  "entity",
}

// String implements fmt.Stringer.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a valid field type.
func (t Type) Valid() bool { return t > TypeInvalid && t < endTypes }

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeInt64 || t == TypeFloat64
}

// Comparable reports if the type supports ordering predicates in the
// findMany filter artifact.
func (t Type) Comparable() bool {
	return t.Numeric() || t == TypeString || t == TypeTime
}

// TypeInfo holds the output type information of a DTO field.
type TypeInfo struct {
	Type Type
	// Ident is the named entity for TypeEntity fields, or a custom
	// identifier override for scalar fields.
	Ident string
	// PkgPath is the import path of the package defining the type,
	// empty for builtins.
	PkgPath string
	// Slice indicates the declared type was an array/collection.
	Slice bool
}

// String returns the Go source representation of the type.
func (t TypeInfo) String() string {
	base := t.Type.String()
	if t.Type == TypeEntity {
		base = t.Ident
	} else if t.Ident != "" {
		base = t.Ident
	}
	if t.Slice {
		return "[]" + base
	}
	return base
}

// PkgName returns the local package name of PkgPath.
func (t TypeInfo) PkgName() string {
	if t.PkgPath == "" {
		return ""
	}
	if i := strings.LastIndexByte(t.PkgPath, '/'); i >= 0 {
		return t.PkgPath[i+1:]
	}
	return t.PkgPath
}

// scalars maps source-language type spellings to output types. The
// manifest carries type text as written in the source declarations, so
// both primitive spellings and the common wrapper classes appear here.
var scalars = map[string]TypeInfo{
	"string":  {Type: TypeString},
	"String":  {Type: TypeString},
	"text":    {Type: TypeString},
	"number":  {Type: TypeFloat64},
	"Number":  {Type: TypeFloat64},
	"int":     {Type: TypeInt},
	"integer": {Type: TypeInt},
	"float":   {Type: TypeFloat64},
	"double":  {Type: TypeFloat64},
	"bigint":  {Type: TypeInt64},
	"BigInt":  {Type: TypeInt64},
	"boolean": {Type: TypeBool},
	"Boolean": {Type: TypeBool},
	"bool":    {Type: TypeBool},
	"Date":    {Type: TypeTime, PkgPath: "time"},
	"date":    {Type: TypeTime, PkgPath: "time"},
	"uuid":    {Type: TypeUUID, PkgPath: "github.com/google/uuid"},
	"UUID":    {Type: TypeUUID, PkgPath: "github.com/google/uuid"},
	"Buffer":  {Type: TypeBytes},
	"bytes":   {Type: TypeBytes},
	"json":    {Type: TypeJSON, PkgPath: "encoding/json"},
	"JSON":    {Type: TypeJSON, PkgPath: "encoding/json"},
	"object":  {Type: TypeJSON, PkgPath: "encoding/json"},
	"any":     {Type: TypeJSON, PkgPath: "encoding/json"},
	"unknown": {Type: TypeJSON, PkgPath: "encoding/json"},
}

// Parse maps a declared type expression onto a TypeInfo. Array suffixes
// ("T[]") and qualified names ("pkg.T") are handled; anything that is not
// a known scalar is treated as a named entity reference and resolved (or
// not) by the relation resolver later.
func Parse(text string) TypeInfo {
	s := strings.TrimSpace(text)
	if s == "" {
		return TypeInfo{Type: TypeInvalid}
	}
	var slice bool
	for strings.HasSuffix(s, "[]") {
		slice = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "[]"))
	}
	if info, ok := scalars[s]; ok {
		info.Slice = slice
		return info
	}
	// Qualified references keep only the final identifier; the locator
	// prefix is an import alias from the source language, not ours.
	if i := strings.LastIndexByte(s, '.'); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
		if info, ok := scalars[s]; ok {
			info.Slice = slice
			return info
		}
	}
	if !identLike(s) {
		return TypeInfo{Type: TypeInvalid}
	}
	return TypeInfo{Type: TypeEntity, Ident: s, Slice: slice}
}

// identLike reports whether s looks like a bare type identifier.
func identLike(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}
