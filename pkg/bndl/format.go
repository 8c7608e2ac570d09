package bndl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// Version is the BNDL format version written to and accepted from headers.
const Version = "1.4"

// Extension is the canonical file extension for BNDL exports.
const Extension = ".bndl"

// DateLayout is the timestamp format of the Export_Date header line.
const DateLayout = "2006-01-02 15:04:05"

// Statement glyphs and markers. Output sockets are marked ○, input sockets
// ⦿, so a Connect line reads left to right as "out of A, into B".
const (
	glyphOut = "○"
	glyphIn  = "⦿"

	bannerGroups = "# === GROUP DEFINITIONS ==="
	bannerTop    = "# === NODE TREE ==="

	notesBegin = "; --- NOTES ---"
	notesEnd   = "; --- END NOTES ---"

	startGroupPrefix = "START GROUP NAMED "
	endGroupPrefix   = "END GROUP NAMED "
)

// enumSentinel wraps enum tokens, distinguishing them from quoted strings.
const enumSentinel = "©"

// datablockSentinels maps each datablock kind to the rune pair wrapping its
// name in the text format. One distinct rune per kind; the same rune opens
// and closes.
var datablockSentinels = map[tree.DatablockKind]string{
	tree.DatablockMaterial:   "❆",
	tree.DatablockObject:     "⊞",
	tree.DatablockCollection: "✸",
	tree.DatablockImage:      "✷",
	tree.DatablockMesh:       "⧉",
	tree.DatablockCurve:      "𝒞",
	tree.DatablockText:       "🔤",
	tree.DatablockArmature:   "🦴",
	tree.DatablockCamera:     "📷",
	tree.DatablockLight:      "💡",
}

// unknownSentinel wraps references whose kind has no dedicated rune,
// including node-group tree references.
const unknownSentinel = "❓"

// SentinelFor returns the sentinel rune (as a string) for a datablock kind.
// Kinds without a dedicated rune fall back to the ❓ sentinel.
func SentinelFor(kind tree.DatablockKind) string {
	if s, ok := datablockSentinels[kind]; ok {
		return s
	}
	return unknownSentinel
}

// KindForSentinel returns the datablock kind a sentinel rune stands for.
// The ❓ fallback maps to [tree.DatablockUnknown] with ok=true; any other
// unrecognized rune reports ok=false.
func KindForSentinel(s string) (tree.DatablockKind, bool) {
	for kind, sent := range datablockSentinels {
		if sent == s {
			return kind, true
		}
	}
	if s == unknownSentinel {
		return tree.DatablockUnknown, true
	}
	return "", false
}

// allSentinels returns every sentinel rune, fallback included, concatenated
// for ContainsAny checks against datablock names.
func allSentinels() string {
	var b strings.Builder
	for _, s := range datablockSentinels {
		b.WriteString(s)
	}
	b.WriteString(unknownSentinel)
	return b.String()
}

// Header carries the metadata lines at the top of a .bndl file. Only
// Tree_Type affects parsing; the remaining fields are provenance.
type Header struct {
	Version    string        // format version from "# BNDL Export v..."
	TreeType   tree.TreeType // empty when the Tree_Type line is absent
	SourceApp  string        // "# Blender_Version:" line, verbatim
	ExportDate time.Time     // zero when absent or unparseable
	TreeName   string        // "# Node_Tree:" line
	NodeCount  int           // "# Node_Count:" line; 0 when absent
}

// headerLines renders the header in emission order, ending with the blank
// separator line. Optional lines are omitted rather than written empty.
func (h Header) headerLines() []string {
	v := h.Version
	if v == "" {
		v = Version
	}
	lines := []string{
		"# BNDL Export v" + v,
		"Tree_Type: " + string(h.TreeType),
	}
	if h.SourceApp != "" {
		lines = append(lines, "# Blender_Version: "+h.SourceApp)
	}
	if !h.ExportDate.IsZero() {
		lines = append(lines, "# Export_Date: "+h.ExportDate.Format(DateLayout))
	}
	if h.TreeName != "" {
		lines = append(lines, "# Node_Tree: "+h.TreeName)
	}
	if h.NodeCount > 0 {
		lines = append(lines, "# Node_Count: "+strconv.Itoa(h.NodeCount))
	}
	return append(lines, "")
}

// Header scan windows. Tree_Type must appear in the first 10 lines after
// any notes block; the informational keys get a little more room.
const (
	treeTypeScanLines = 10
	headerScanLines   = 15
)

// parseHeader extracts recognized header fields from the leading lines of a
// file (notes block already stripped). Unknown or absent fields never fail;
// a missing Tree_Type line is reported as a warning so callers can apply
// their own legacy-file policy.
func parseHeader(lines []string, warns *errors.Warnings) Header {
	var h Header
	for i, raw := range lines {
		if i >= headerScanLines {
			break
		}
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "# BNDL Export v"):
			h.Version = strings.TrimPrefix(line, "# BNDL Export v")
		case strings.HasPrefix(line, "Tree_Type:") && i < treeTypeScanLines:
			typ, err := tree.ParseTreeType(strings.TrimSpace(strings.TrimPrefix(line, "Tree_Type:")))
			if err != nil {
				warns.Add(errors.ErrCodeFormat, "line %d: unrecognized tree type %q", i+1, strings.TrimSpace(strings.TrimPrefix(line, "Tree_Type:")))
				continue
			}
			h.TreeType = typ
		case strings.HasPrefix(line, "# Blender_Version:"):
			h.SourceApp = strings.TrimSpace(strings.TrimPrefix(line, "# Blender_Version:"))
		case strings.HasPrefix(line, "# Export_Date:"):
			ts := strings.TrimSpace(strings.TrimPrefix(line, "# Export_Date:"))
			if t, err := time.Parse(DateLayout, ts); err == nil {
				h.ExportDate = t
			}
		case strings.HasPrefix(line, "# Node_Tree:"):
			h.TreeName = strings.TrimSpace(strings.TrimPrefix(line, "# Node_Tree:"))
		case strings.HasPrefix(line, "# Node_Count:"):
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "# Node_Count:"))); err == nil {
				h.NodeCount = n
			}
		}
	}
	if h.TreeType == "" {
		warns.Add(errors.ErrCodeFormat, "no Tree_Type header in first %d lines", treeTypeScanLines)
	}
	return h
}

// DetectTreeType scans raw BNDL content for its Tree_Type header without a
// full parse. Returns false when no recognizable header is present, which
// callers typically treat as a legacy geometry export.
func DetectTreeType(content []byte) (tree.TreeType, bool) {
	lines := strings.Split(string(content), "\n")
	start := 0
	if end := notesEndIndex(lines); end >= 0 {
		start = end + 1
	}
	for i := start; i < len(lines) && i < start+treeTypeScanLines; i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "Tree_Type:") {
			continue
		}
		typ, err := tree.ParseTreeType(strings.TrimSpace(strings.TrimPrefix(line, "Tree_Type:")))
		if err != nil {
			return "", false
		}
		return typ, true
	}
	return "", false
}

// notesEndIndex returns the line index of the notes terminator when the
// content opens with a notes block, or -1.
func notesEndIndex(lines []string) int {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != notesBegin {
		return -1
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == notesEnd {
			return i
		}
	}
	return -1
}

// NotesBlock renders freeform note lines as the leading comment block
// prepended to an export. Empty chunks are dropped; the result is "" when
// nothing survives, otherwise it ends with a blank separator line.
func NotesBlock(chunks ...string) string {
	var lines []string
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		for _, ln := range strings.Split(chunk, "\n") {
			lines = append(lines, strings.TrimRight(ln, " \t\r"))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	out := []string{notesBegin}
	for _, ln := range lines {
		if ln == "" {
			out = append(out, ";")
		} else {
			out = append(out, "; "+ln)
		}
	}
	out = append(out, notesEnd, "")
	return strings.Join(out, "\n") + "\n"
}

// parseNotes splits a leading notes block off the line list. It returns the
// note lines with the "; " prefix stripped and the number of lines consumed
// (including the trailing blank separator when present). Content without a
// notes block returns (nil, 0).
func parseNotes(lines []string) ([]string, int) {
	end := notesEndIndex(lines)
	if end < 0 {
		return nil, 0
	}
	var notes []string
	for _, raw := range lines[1:end] {
		line := strings.TrimRight(raw, " \t\r")
		switch {
		case line == ";":
			notes = append(notes, "")
		case strings.HasPrefix(line, "; "):
			notes = append(notes, line[2:])
		default:
			notes = append(notes, strings.TrimPrefix(line, ";"))
		}
	}
	consumed := end + 1
	if consumed < len(lines) && strings.TrimSpace(lines[consumed]) == "" {
		consumed++
	}
	return notes, consumed
}

// statementKeyword reports the keyword opening a statement line, if any.
func statementKeyword(line string) (string, bool) {
	for _, kw := range []string{"Create", "Rename", "Declare", "Set", "Connect", "Parent"} {
		if strings.HasPrefix(line, kw+" ") || line == kw {
			return kw, true
		}
	}
	return "", false
}

func formatInstance(id string) string {
	return fmt.Sprintf("[ %s ]", id)
}
