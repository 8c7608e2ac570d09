package assets

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path"

	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
	"github.com/KDB-USJP/BNDL-Lite/pkg/tree"
)

// ManifestVersion is the .bndlpack manifest schema version this reader
// targets. Other versions are read on a best-effort basis; unknown fields
// are ignored.
const ManifestVersion = "1.0"

const manifestName = "manifest.json"

// Manifest is the archive index stored as manifest.json at the root of a
// .bndlpack file.
type Manifest struct {
	Version     string          `json:"version"`
	BNDLFile    string          `json:"bndl_file"`
	CreatedWith string          `json:"created_with"`
	Assets      []ManifestAsset `json:"assets"`
}

// ManifestAsset describes one archived payload.
type ManifestAsset struct {
	Name     string `json:"name"`     // datablock name the payload stands for
	Filename string `json:"filename"` // filename inside the type subdirectory
	Type     string `json:"type"`     // "image" or "video"
	Size     int64  `json:"size"`
}

// typeDirs maps manifest asset types to their archive subdirectory.
var typeDirs = map[string]string{
	"image": "images",
	"video": "videos",
}

// Pack is an open .bndlpack archive: a ZIP holding a manifest.json index
// and payload files under images/ and videos/. Pack implements [Resolver];
// only image references resolve, since packs carry pixel data exclusively
// (every other datablock kind lives in the companion assets blend).
type Pack struct {
	Manifest Manifest
	Path     string

	zr *zip.ReadCloser
}

// OpenPack opens a .bndlpack archive and decodes its manifest.
//
// Returns a FILE_NOT_FOUND error when the path does not exist, an
// INVALID_FORMAT error when the file is not a ZIP or carries no manifest,
// and an INVALID_PATH error when a manifest filename is absolute or
// escapes the archive layout.
func OpenPack(packPath string) (*Pack, error) {
	zr, err := zip.OpenReader(packPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open pack %s", packPath)
		}
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "open pack %s", packPath)
	}

	p := &Pack{Path: packPath, zr: zr}
	if err := p.readManifest(); err != nil {
		zr.Close()
		return nil, err
	}
	return p, nil
}

func (p *Pack) readManifest() error {
	for _, f := range p.zr.File {
		if f.Name != manifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return errors.Wrap(errors.ErrCodeFormat, err, "read %s in %s", manifestName, p.Path)
		}
		defer rc.Close()
		if err := json.NewDecoder(rc).Decode(&p.Manifest); err != nil {
			return errors.Wrap(errors.ErrCodeFormat, err, "decode %s in %s", manifestName, p.Path)
		}
		for _, a := range p.Manifest.Assets {
			if err := errors.ValidatePath(a.Filename); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "manifest entry %q in %s", a.Name, p.Path)
			}
		}
		return nil
	}
	return errors.New(errors.ErrCodeFormat, "%s has no %s", p.Path, manifestName)
}

// Resolve implements [Resolver] by manifest name lookup. Non-image
// references report not found without error, which sends bundle-mode
// replay down its proxy fallback.
func (p *Pack) Resolve(ref Ref) (*Asset, bool, error) {
	if ref.Kind != tree.DatablockImage {
		return nil, false, nil
	}
	for _, a := range p.Manifest.Assets {
		if a.Name != ref.Name {
			continue
		}
		data, err := p.read(a)
		if err != nil {
			return nil, false, err
		}
		return &Asset{Ref: ref, Filename: a.Filename, Type: a.Type, Data: data}, true, nil
	}
	return nil, false, nil
}

func (p *Pack) read(a ManifestAsset) ([]byte, error) {
	entry := a.Filename
	if dir, ok := typeDirs[a.Type]; ok {
		entry = path.Join(dir, a.Filename)
	}
	for _, f := range p.zr.File {
		if f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "read %s from %s", entry, p.Path)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "read %s from %s", entry, p.Path)
		}
		return data, nil
	}
	return nil, errors.New(errors.ErrCodeFormat, "%s listed in manifest but missing from %s", entry, p.Path)
}

// Close releases the underlying archive.
func (p *Pack) Close() error {
	return p.zr.Close()
}
