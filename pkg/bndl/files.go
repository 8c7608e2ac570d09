package bndl

import (
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// Companion file extensions. A .bndl export may sit next to a scene
// snapshot (same stem, .blend) and an asset archive (same stem, .bndlpack).
const (
	BlendExtension = ".blend"
	PackExtension  = ".bndlpack"
)

// TagLength is the length of the random uniqueness tag in export filenames.
const TagLength = 6

const tagAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomTag returns an n-character uppercase/digit tag. Tags keep repeated
// exports of the same tree from overwriting each other.
func RandomTag(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tagAlphabet[rand.IntN(len(tagAlphabet))]
	}
	return string(b)
}

// FilePrefix returns the tree-type marker that starts an export filename:
// G- for geometry, S- for shader/material, C- for compositor. Unknown types
// fall back to the geometry prefix, matching legacy archives.
func FilePrefix(typ tree.TreeType) string {
	switch typ {
	case tree.TreeMaterial:
		return "S-"
	case tree.TreeCompositor:
		return "C-"
	default:
		return "G-"
	}
}

// Affixes are the user-configured name decorations around the base name.
type Affixes struct {
	Prefix1 string
	Prefix2 string
	Suffix1 string
}

// ExportFilename assembles the canonical export filename:
//
//	{type prefix}{prefix1_}{prefix2_}{base}-{TAG}{_suffix1}.bndl
//
// Blank affixes disappear along with their separators. An empty tag is
// replaced with a fresh [RandomTag].
func ExportFilename(typ tree.TreeType, base string, aff Affixes, tag string) string {
	if tag == "" {
		tag = RandomTag(TagLength)
	}
	var b strings.Builder
	b.WriteString(FilePrefix(typ))
	if p := strings.TrimSpace(aff.Prefix1); p != "" {
		b.WriteString(p + "_")
	}
	if p := strings.TrimSpace(aff.Prefix2); p != "" {
		b.WriteString(p + "_")
	}
	b.WriteString(base)
	b.WriteString("-" + tag)
	if s := strings.TrimSpace(aff.Suffix1); s != "" {
		b.WriteString("_" + s)
	}
	b.WriteString(Extension)
	return b.String()
}

// CompanionBlend returns the scene-snapshot path for a .bndl file: the same
// stem with a .blend extension.
func CompanionBlend(path string) string {
	return trimExt(path) + BlendExtension
}

// CompanionPack returns the asset-archive path for a .bndl file: the same
// stem with a .bndlpack extension.
func CompanionPack(path string) string {
	return trimExt(path) + PackExtension
}

// AssetBlend returns the packed-assets blend path for a .bndl file: the
// stem with an _assets.blend suffix.
func AssetBlend(path string) string {
	return trimExt(path) + "_assets" + BlendExtension
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
