package parser

import (
	"path/filepath"
	"strings"
)

// Language is a source language the importer can read descriptors from.
type Language int

const (
	LanguageJavaScript Language = iota
	LanguageTypeScript
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageJavaScript:
		return "javascript"
	case LanguageTypeScript:
		return "typescript"
	default:
		return "unknown"
	}
}

// DetectLanguage detects the source language from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return LanguageJavaScript
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript
	default:
		return LanguageUnknown
	}
}

// IsSource reports whether path is a JavaScript or TypeScript source file.
func IsSource(path string) bool {
	return DetectLanguage(path) != LanguageUnknown
}
