package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Input Resolution
// =============================================================================

// resolveInput turns a command argument into a document path. A file
// path passes through; a directory is resolved to one of its .bndl
// files, interactively when there is more than one.
func resolveInput(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", errors.New(errors.ErrCodeFileNotFound, "%s does not exist", path)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	files, err := listDocuments(path)
	if err != nil {
		return "", err
	}
	switch len(files) {
	case 0:
		return "", errors.New(errors.ErrCodeNotFound, "no %s files in %s", bndl.Extension, path)
	case 1:
		printInfo("Using %s", files[0].name)
		return filepath.Join(path, files[0].name), nil
	}

	picked, err := pickDocument(files)
	if err != nil {
		return "", err
	}
	return filepath.Join(path, picked), nil
}

// listDocuments returns the .bndl files in dir, sorted by name.
func listDocuments(dir string) ([]fileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []fileEntry
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), bndl.Extension) {
			continue
		}
		entry := fileEntry{name: e.Name()}
		if info, err := e.Info(); err == nil {
			entry.size = info.Size()
		}
		if _, ok := assetsCompanion(dir, e.Name()); ok {
			entry.packed = true
		}
		files = append(files, entry)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}

// assetsCompanion reports whether a .bndlpack archive sits next to the
// document.
func assetsCompanion(dir, name string) (string, bool) {
	pack := bndl.CompanionPack(filepath.Join(dir, name))
	if _, err := os.Stat(pack); err != nil {
		return "", false
	}
	return pack, true
}

// pickDocument runs the interactive picker and returns the chosen
// filename.
func pickDocument(files []fileEntry) (string, error) {
	m, err := tea.NewProgram(newFilePickerModel(files)).Run()
	if err != nil {
		return "", err
	}
	final := m.(filePickerModel)
	if final.selected == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "no document selected")
	}
	return final.selected, nil
}

// =============================================================================
// FilePickerModel - Interactive document selection
// =============================================================================

// fileEntry is one selectable document in the picker.
type fileEntry struct {
	name   string
	size   int64
	packed bool // a .bndlpack companion exists
}

// filePickerModel is the bubbletea model for interactive document selection.
type filePickerModel struct {
	files    []fileEntry
	cursor   int
	selected string
}

func newFilePickerModel(files []fileEntry) filePickerModel {
	return filePickerModel{files: files}
}

func (m filePickerModel) Init() tea.Cmd {
	return nil
}

func (m filePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.files)-1 {
				m.cursor++
			}
		case "enter":
			m.selected = m.files[m.cursor].name
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m filePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Document"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, f := range m.files {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		pack := " "
		if f.packed {
			pack = StyleSuccess.Render("◈")
		}

		line := fmt.Sprintf("%s%s %-40s %s", cursor, pack, f.name, listDimStyle.Render(formatSize(f.size)))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s has asset pack\n", StyleSuccess.Render("◈")))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
