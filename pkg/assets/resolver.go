package assets

import (
	"os"

	"github.com/KDB-USJP/BNDL-Lite/pkg/bndl"
)

// Asset is one payload resolved from an archive.
type Asset struct {
	Ref      Ref
	Filename string // archive filename, e.g. "noise.png"
	Type     string // manifest asset type, "image" or "video"
	Data     []byte
}

// Resolver looks up datablock payloads for bundle-mode replay. Resolve
// reports found=false for references the backing store has no entry for;
// the error return is reserved for storage faults.
type Resolver interface {
	Resolve(ref Ref) (*Asset, bool, error)
	Close() error
}

// MemoryResolver is a Resolver over an in-memory map, primarily for tests.
type MemoryResolver map[Ref]*Asset

func (m MemoryResolver) Resolve(ref Ref) (*Asset, bool, error) {
	a, ok := m[ref]
	return a, ok, nil
}

func (m MemoryResolver) Close() error { return nil }

// FindPack returns the companion .bndlpack path for a .bndl file when one
// exists next to it.
func FindPack(bndlPath string) (string, bool) {
	return statCompanion(bndl.CompanionPack(bndlPath))
}

// FindAssetBlend returns the companion packed-assets blend path for a .bndl
// file when one exists next to it. The blend itself is opaque to this
// package; callers use the path for reporting only.
func FindAssetBlend(bndlPath string) (string, bool) {
	return statCompanion(bndl.AssetBlend(bndlPath))
}

func statCompanion(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}
