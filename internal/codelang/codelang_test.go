package codelang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		code     string
		want     string
	}{
		{name: "extension wins", filename: "main.GO", code: "import React from 'react'", want: "go"},
		{name: "yml alias", filename: "ci.yml", want: "yaml"},
		{name: "unknown extension falls through", filename: "notes.txt", code: "def run():\n    pass", want: "python"},
		{name: "react", code: "import React, { useState } from 'react'", want: "jsx"},
		{name: "rust", code: "let mut total = 0;", want: "rust"},
		{name: "go", code: "package main\n\nfunc main() {}", want: "go"},
		{name: "java", code: "public class App {}", want: "java"},
		{name: "bash", code: "npm install express", want: "bash"},
		{name: "json", code: `{"name": "app"}`, want: "json"},
		{name: "css", code: "@media print", want: "css"},
		{name: "css with braces reads as json", code: "a:hover { color: red }", want: "json"},
		{name: "sql", code: "SELECT id FROM users WHERE active", want: "sql"},
		{name: "markdown", code: "## Setup", want: "markdown"},
		{name: "empty", want: Default},
		{name: "no match", code: "hello world", want: Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.filename, tt.code))
		})
	}
}
