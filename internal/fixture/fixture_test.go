package fixture

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadSourceStripsUTF8BOM(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "bom.ts", append([]byte{0xEF, 0xBB, 0xBF}, []byte("let x = 1;\n")...))

	src, err := LoadSource(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if src.Content != "let x = 1;\n" {
		t.Fatalf("BOM not stripped: %q", src.Content)
	}
}

func TestLoadSourceDecodesUTF16LE(t *testing.T) {
	dir := t.TempDir()
	// "ok" as UTF-16LE with BOM.
	raw := []byte{0xFF, 0xFE, 'o', 0x00, 'k', 0x00}
	path := writeFixture(t, dir, "wide.ts", raw)

	src, err := LoadSource(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if src.Content != "ok" {
		t.Fatalf("expected decoded %q, got %q", "ok", src.Content)
	}
}

func TestLineCount(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one line", 1},
		{"a\nb\n", 2},
		{"a\nb\nc", 3},
	}
	for _, tc := range cases {
		src := &Source{Content: tc.content}
		if got := src.LineCount(); got != tc.want {
			t.Fatalf("LineCount(%q) = %d, want %d", tc.content, got, tc.want)
		}
	}
}

func TestIsMultiFile(t *testing.T) {
	multi := &Source{Content: "// @Filename: a.ts\nlet x = 1;\n"}
	if !multi.IsMultiFile() {
		t.Fatalf("@Filename fixture must be multi-file")
	}
	ref := &Source{Content: "/// <reference path=\"b.ts\" />\n"}
	if !ref.IsMultiFile() {
		t.Fatalf("reference-path fixture must be multi-file")
	}
	single := &Source{Content: "let filename = 1;\n"}
	if single.IsMultiFile() {
		t.Fatalf("plain fixture misclassified as multi-file")
	}
}

func TestListWalksAndSorts(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "conformance")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFixture(t, sub, "b.ts", []byte("b"))
	writeFixture(t, dir, "a.tsx", []byte("a"))
	writeFixture(t, dir, "skip.errors.json", []byte("[]"))

	files, err := List(dir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 fixtures, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a.tsx" || filepath.Base(files[1]) != "b.ts" {
		t.Fatalf("unexpected order: %v", files)
	}
}
