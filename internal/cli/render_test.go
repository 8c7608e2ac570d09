package cli

import (
	"strings"
	"testing"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		output string
		want   string
	}{
		{"default svg", "", "", "svg"},
		{"explicit dot", "dot", "", "dot"},
		{"from output extension", "", "graph.png", "png"},
		{"explicit wins over extension", "pdf", "graph.png", "pdf"},
		{"unknown extension falls back to svg", "", "graph.gif", "svg"},
		{"no extension falls back to svg", "", "graph", "svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := renderOpts{format: tt.format, output: tt.output}
			if err := resolveFormat(&opts); err != nil {
				t.Fatalf("resolveFormat() error: %v", err)
			}
			if opts.format != tt.want {
				t.Errorf("format = %q, want %q", opts.format, tt.want)
			}
		})
	}
}

func TestResolveFormatInvalid(t *testing.T) {
	opts := renderOpts{format: "gif"}
	err := resolveFormat(&opts)
	if err == nil {
		t.Fatal("resolveFormat() should reject an unknown format")
	}
	if !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("error = %q, want invalid format message", err)
	}
}

func TestConvertDOTPassthrough(t *testing.T) {
	opts := renderOpts{format: formatDOT}
	data, err := convert("digraph bndl {\n}\n", &opts)
	if err != nil {
		t.Fatalf("convert() error: %v", err)
	}
	if string(data) != "digraph bndl {\n}\n" {
		t.Errorf("convert() = %q, want the DOT text unchanged", data)
	}
}
