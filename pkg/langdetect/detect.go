// Package langdetect classifies candidate source files during discovery.
// It uses go-enry to recognize vendored, generated and documentation
// paths, and to name the language of a file.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// LanguageJava is the normalized name of the analyzed language.
const LanguageJava = "java"

// HeadSize is the number of leading bytes Classify needs to recognize
// generated files.
const HeadSize = 8 << 10

// Reasons a file is skipped.
const (
	ReasonVendored      = "vendored"
	ReasonGenerated     = "generated"
	ReasonDocumentation = "documentation"
)

// generatedMarkers are header fragments that code generators for the
// analyzed language leave behind.
//
//nolint:gochecknoglobals // Read-only lookup table.
var generatedMarkers = [][]byte{
	[]byte("@Generated"),
	[]byte("@javax.annotation.Generated"),
	[]byte("DO NOT EDIT"),
	[]byte("Generated by the protocol buffer compiler"),
	[]byte("This file was automatically generated"),
}

// Classification describes a candidate file.
type Classification struct {
	// Language is the normalized language name, or "" if unknown.
	Language string

	Vendored      bool
	Generated     bool
	Documentation bool
}

// Classify inspects path and the head of its content.
func Classify(path string, head []byte) Classification {
	if len(head) > HeadSize {
		head = head[:HeadSize]
	}
	return Classification{
		Language:      Language(path, head),
		Vendored:      enry.IsVendor(path),
		Generated:     enry.IsGenerated(path, head) || hasGeneratedMarker(head),
		Documentation: enry.IsDocumentation(path),
	}
}

// SkipReason returns why discovery should skip the file, or "".
func (c Classification) SkipReason() string {
	switch {
	case c.Vendored:
		return ReasonVendored
	case c.Generated:
		return ReasonGenerated
	case c.Documentation:
		return ReasonDocumentation
	default:
		return ""
	}
}

// Language returns the normalized language of a file. The extension
// decides when it is unambiguous; otherwise the content does.
func Language(path string, content []byte) string {
	if lang, safe := enry.GetLanguageByExtension(path); safe {
		return normalize(lang)
	}
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}
	return normalize(enry.GetLanguage(path, content))
}

// IsJava reports whether the file holds source of the analyzed language.
func IsJava(path string, content []byte) bool {
	return Language(path, content) == LanguageJava
}

func hasGeneratedMarker(head []byte) bool {
	// Only the leading comment block counts.
	if i := bytes.Index(head, []byte("class ")); i >= 0 {
		head = head[:i]
	}
	for _, m := range generatedMarkers {
		if bytes.Contains(head, m) {
			return true
		}
	}
	return false
}

// normalize converts enry language names to lowercase identifiers.
func normalize(lang string) string {
	switch lang {
	case "":
		return ""
	case "Shell":
		return "bash"
	case "C++":
		return "cpp"
	case "C#":
		return "csharp"
	default:
		return strings.ToLower(strings.ReplaceAll(lang, " ", "-"))
	}
}
