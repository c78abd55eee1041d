package jast

import "strings"

// LiteralKind classifies a literal by its spelling.
type LiteralKind uint8

// Literal kinds.
const (
	LitInvalid LiteralKind = iota
	LitInt
	LitLong
	LitDouble
	LitFloat
	LitBool
	LitChar
	LitString
	LitNull
)

// LiteralKind returns the kind of a NodeLiteral, or LitInvalid for other nodes.
func (n *Node) LiteralKind() LiteralKind {
	if n == nil || n.Kind != NodeLiteral || n.Text == "" {
		return LitInvalid
	}
	text := n.Text
	switch {
	case text == "true" || text == "false":
		return LitBool
	case text == "null":
		return LitNull
	case text[0] == '"':
		return LitString
	case text[0] == '\'':
		return LitChar
	}

	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "0x"):
		if strings.HasSuffix(lower, "l") {
			return LitLong
		}
		return LitInt
	case strings.HasSuffix(lower, "l"):
		return LitLong
	case strings.HasSuffix(lower, "f"):
		return LitFloat
	case strings.HasSuffix(lower, "d"), strings.ContainsAny(lower, ".e"):
		return LitDouble
	default:
		return LitInt
	}
}

// TypeName returns the declared type a literal of this kind has, or "" for
// null and invalid literals.
func (k LiteralKind) TypeName() string {
	switch k {
	case LitInt:
		return "int"
	case LitLong:
		return "long"
	case LitDouble:
		return "double"
	case LitFloat:
		return "float"
	case LitBool:
		return "boolean"
	case LitChar:
		return "char"
	case LitString:
		return "String"
	case LitInvalid, LitNull:
	}
	return ""
}

// IsPrimitiveType reports whether name is a primitive type keyword.
func IsPrimitiveType(name string) bool {
	switch name {
	case "boolean", "byte", "char", "short", "int", "long", "float", "double":
		return true
	}
	return false
}

// DefaultValue returns the source text of the zero value for a declared type.
func DefaultValue(typeName string) string {
	switch typeName {
	case "boolean":
		return "false"
	case "byte", "short", "int":
		return "0"
	case "long":
		return "0L"
	case "float":
		return "0.0f"
	case "double":
		return "0.0"
	case "char":
		return "'\\0'"
	default:
		return "null"
	}
}
