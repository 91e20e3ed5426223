// Package codelang guesses the language of a code snippet for syntax
// highlighting. Detection is an ordered rule list; the first match wins.
package codelang

import (
	"path/filepath"
	"strings"
)

const Default = "typescript"

var extensions = map[string]string{
	"js":   "javascript",
	"ts":   "typescript",
	"jsx":  "jsx",
	"tsx":  "tsx",
	"py":   "python",
	"rb":   "ruby",
	"go":   "go",
	"rs":   "rust",
	"java": "java",
	"c":    "c",
	"cpp":  "cpp",
	"h":    "c",
	"hpp":  "cpp",
	"cs":   "csharp",
	"php":  "php",
	"css":  "css",
	"scss": "scss",
	"html": "html",
	"xml":  "xml",
	"md":   "markdown",
	"json": "json",
	"yaml": "yaml",
	"yml":  "yaml",
	"sh":   "bash",
	"sql":  "sql",
}

type rule struct {
	lang  string
	match func(code string) bool
}

func has(code string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(code, n) {
			return true
		}
	}
	return false
}

func hasAll(code string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(code, n) {
			return false
		}
	}
	return true
}

var rules = []rule{
	{"jsx", func(c string) bool {
		return has(c, "import React", "useState", "export default", "function Component")
	}},
	{"tsx", func(c string) bool { return has(c, ".tsx") || hasAll(c, "<", ">", ":") }},
	{"python", func(c string) bool { return hasAll(c, "def ", ":") && !has(c, "{") }},
	{"rust", func(c string) bool { return has(c, "let mut", "impl ") || hasAll(c, "fn ", "->") }},
	{"go", func(c string) bool { return has(c, "package main") || hasAll(c, "func ", "interface {}") }},
	{"java", func(c string) bool { return has(c, "public class", "public static void main") }},
	{"bash", func(c string) bool { return has(c, "npm ", "yarn ", "$", "bash") }},
	{"json", func(c string) bool { return hasAll(c, "{", "}", ":") && !has(c, "function") }},
	{"css", func(c string) bool { return has(c, ".css", "@media", ":hover") }},
	{"markdown", func(c string) bool { return has(c, "##", "```") }},
	{"sql", func(c string) bool { return hasAll(c, "SELECT ", "FROM ") && has(c, "WHERE ", "JOIN ") }},
}

// Detect returns the language for a snippet. A known filename extension takes
// precedence over content rules.
func Detect(filename, code string) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."); ext != "" {
		if lang, ok := extensions[ext]; ok {
			return lang
		}
	}

	if code == "" {
		return Default
	}
	for _, r := range rules {
		if r.match(code) {
			return r.lang
		}
	}
	return Default
}
