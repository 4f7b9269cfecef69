package rooms

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Loader handles loading room files from a directory tree or any fs.FS.
type Loader struct {
	Root string // shown in errors and file paths
	fsys fs.FS
	dir  string
}

// NewLoader creates a loader over a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, fsys: os.DirFS(root), dir: "."}
}

// NewFSLoader creates a loader over dir inside fsys, such as an embedded
// directory.
func NewFSLoader(fsys fs.FS, dir string) *Loader {
	return &Loader{Root: dir, fsys: fsys, dir: dir}
}

// LoadAll recursively scans and loads all room files.
// Returns rooms sorted by ID for deterministic ordering. Files that fail to
// parse or validate are reported in the returned error list and skipped.
func (l *Loader) LoadAll() ([]*Definition, []error, error) {
	var defs []*Definition
	var skipped []error

	err := fs.WalkDir(l.fsys, l.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		def, err := l.LoadFile(p)
		if err != nil {
			skipped = append(skipped, err)
			return nil
		}
		defs = append(defs, def)
		return nil
	})
	if err != nil {
		return nil, skipped, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	// Sort by ID for determinism
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].ID < defs[j].ID
	})
	return defs, skipped, nil
}

// LoadFile loads and validates a single room file. p is relative to the
// loader's file system.
func (l *Loader) LoadFile(p string) (*Definition, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", p, err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", p, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("file %s: %w", p, err)
	}
	def.FilePath = p
	if l.dir == "." {
		def.FilePath = filepath.Join(l.Root, filepath.FromSlash(p))
	}
	return def, nil
}

// LoadByID loads a specific room by ID.
func (l *Loader) LoadByID(id string) (*Definition, error) {
	defs, _, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	for _, def := range defs {
		if def.ID == id {
			return def, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
