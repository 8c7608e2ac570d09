package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.bndl", "# BNDL Export v1.4\n")
	writeFile(t, dir, "b.bndlpack", "PK")
	writeFile(t, dir, "a.bndl", "# BNDL Export v1.4\n")
	writeFile(t, dir, "notes.txt", "ignore me")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := listDocuments(dir)
	if err != nil {
		t.Fatalf("listDocuments() error: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("listDocuments() returned %d files, want 2", len(files))
	}
	if files[0].name != "a.bndl" || files[1].name != "b.bndl" {
		t.Errorf("files not sorted by name: %q, %q", files[0].name, files[1].name)
	}
	if files[0].packed {
		t.Error("a.bndl should not be marked packed")
	}
	if !files[1].packed {
		t.Error("b.bndl should be marked packed, companion exists")
	}
	if files[0].size == 0 {
		t.Error("file size not recorded")
	}
}

func TestListDocumentsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SCENE.BNDL", "# BNDL Export v1.4\n")

	files, err := listDocuments(dir)
	if err != nil {
		t.Fatalf("listDocuments() error: %v", err)
	}
	if len(files) != 1 || files[0].name != "SCENE.BNDL" {
		t.Errorf("listDocuments() = %+v, want SCENE.BNDL", files)
	}
}

func TestResolveInputFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.bndl", "# BNDL Export v1.4\n")
	path := filepath.Join(dir, "doc.bndl")

	got, err := resolveInput(path)
	if err != nil {
		t.Fatalf("resolveInput() error: %v", err)
	}
	if got != path {
		t.Errorf("resolveInput() = %q, want %q", got, path)
	}
}

func TestResolveInputMissing(t *testing.T) {
	_, err := resolveInput(filepath.Join(t.TempDir(), "nope.bndl"))
	if err == nil {
		t.Fatal("resolveInput() should fail for a missing path")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeFileNotFound {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeFileNotFound)
	}
}

func TestResolveInputSingleDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "only.bndl", "# BNDL Export v1.4\n")

	got, err := resolveInput(dir)
	if err != nil {
		t.Fatalf("resolveInput() error: %v", err)
	}
	if got != filepath.Join(dir, "only.bndl") {
		t.Errorf("resolveInput() = %q, want the single document", got)
	}
}

func TestResolveInputEmptyDir(t *testing.T) {
	_, err := resolveInput(t.TempDir())
	if err == nil {
		t.Fatal("resolveInput() should fail for a directory without documents")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeNotFound {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeNotFound)
	}
	if !strings.Contains(err.Error(), ".bndl") {
		t.Errorf("error = %q, want mention of .bndl", err)
	}
}

func TestFilePickerNavigation(t *testing.T) {
	files := []fileEntry{
		{name: "a.bndl"},
		{name: "b.bndl"},
		{name: "c.bndl"},
	}

	var m tea.Model = newFilePickerModel(files)
	press := func(msg tea.KeyMsg) {
		m, _ = m.Update(msg)
	}

	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}) // clamped at the end
	if got := m.(filePickerModel).cursor; got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}

	press(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(filePickerModel).cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}

	press(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(filePickerModel).selected; got != "b.bndl" {
		t.Errorf("selected = %q, want %q", got, "b.bndl")
	}
}

func TestFilePickerView(t *testing.T) {
	m := newFilePickerModel([]fileEntry{
		{name: "scene.bndl", size: 2048, packed: true},
	})

	view := m.View()
	if !strings.Contains(view, "Select Document") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "scene.bndl") {
		t.Error("view missing file name")
	}
	if !strings.Contains(view, "◈") {
		t.Error("view missing pack marker")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{3 << 20, "3.0 MB"},
	}

	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
