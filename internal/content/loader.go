package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Loader handles loading quests from a directory.
// An empty Root loads the quests embedded in the binary.
type Loader struct {
	Root string
}

// NewLoader creates a new quest loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all quest files.
// Returns quests sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Quest, error) {
	fsys, base := l.source()

	var quests []Quest
	err := fs.WalkDir(fsys, base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !isSupportedExtension(ext) {
			return nil
		}

		q, err := loadFS(fsys, path)
		if err != nil {
			// Skip invalid files
			return nil
		}
		quests = append(quests, q)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sort.Slice(quests, func(i, j int) bool {
		return quests[i].ID < quests[j].ID
	})
	return quests, nil
}

// LoadFile loads a single quest file from disk.
func (l *Loader) LoadFile(path string) (Quest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Quest{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	q, err := ParseYAML(data)
	if err != nil {
		return Quest{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	q.FilePath = path
	return q, nil
}

// LoadByID loads a specific quest by ID.
func (l *Loader) LoadByID(id string) (Quest, error) {
	quests, err := l.LoadAll()
	if err != nil {
		return Quest{}, err
	}
	for _, q := range quests {
		if q.ID == id {
			return q, nil
		}
	}
	return Quest{}, fmt.Errorf("%w: %s", ErrQuestNotFound, id)
}

// ListIDs returns all quest IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	quests, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(quests))
	for i, q := range quests {
		ids[i] = q.ID
	}
	return ids, nil
}

// source picks the filesystem to walk.
func (l *Loader) source() (fs.FS, string) {
	if l.Root == "" {
		return builtinFS, "builtin"
	}
	return os.DirFS(l.Root), "."
}

func loadFS(fsys fs.FS, path string) (Quest, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Quest{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	q, err := ParseYAML(data)
	if err != nil {
		return Quest{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	q.FilePath = path
	return q, nil
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
