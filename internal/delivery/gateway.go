// Package delivery serves stored downloads by name from a fixed set of
// allow-listed directories.
package delivery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ytfetch/pkg/models"
)

var (
	ErrNotFound  = errors.New("file not found")
	ErrForbidden = errors.New("access outside allowed directories")
)

// mediaExts lists the extensions shown in the library view
var mediaExts = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".mp3":  true,
	".m4a":  true,
	".opus": true,
	".ogg":  true,
	".wav":  true,
	".flac": true,
	".aac":  true,
}

// Gateway resolves retrieval names against allow-listed root directories
type Gateway struct {
	roots []string
}

// NewGateway creates a gateway over the given roots.
// Roots are made absolute; empty entries and duplicates are dropped.
func NewGateway(roots ...string) *Gateway {
	g := &Gateway{}
	seen := make(map[string]bool, len(roots))

	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		g.roots = append(g.roots, abs)
	}

	return g
}

// Roots returns the allow-listed directories
func (g *Gateway) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Resolve maps a retrieval name to a regular file inside one of the roots.
// Roots are tried in order and the first one holding the file wins.
func (g *Gateway) Resolve(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}

	for _, root := range g.roots {
		realRoot, err := filepath.EvalSymlinks(root)
		if err != nil {
			continue
		}

		resolved, err := filepath.EvalSymlinks(filepath.Join(realRoot, clean))
		if err != nil {
			continue
		}

		if !within(realRoot, resolved) {
			return "", fmt.Errorf("%w: %s", ErrForbidden, name)
		}

		info, err := os.Stat(resolved)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		return resolved, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Open resolves name and opens the file for streaming.
// The caller closes the returned file.
func (g *Gateway) Open(name string) (*os.File, os.FileInfo, error) {
	path, err := g.Resolve(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return f, info, nil
}

// RelativeName returns the name under which path can be retrieved later,
// or false when path lies outside every root.
func (g *Gateway) RelativeName(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	for _, root := range g.roots {
		realRoot := root
		if r, err := filepath.EvalSymlinks(root); err == nil {
			realRoot = r
		}
		if !within(realRoot, abs) {
			continue
		}
		rel, err := filepath.Rel(realRoot, abs)
		if err != nil || rel == "." {
			continue
		}
		return filepath.ToSlash(rel), true
	}

	return "", false
}

// List returns the media files stored directly inside every root,
// most recently modified first. Missing roots are skipped.
func (g *Gateway) List() ([]models.StoredFile, error) {
	var files []models.StoredFile

	for _, root := range g.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read directory %s: %w", root, err)
		}

		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}

			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if !mediaExts[ext] {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				continue
			}

			files = append(files, models.StoredFile{
				Dir:     root,
				Name:    entry.Name(),
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

// cleanName rejects absolute names and names that climb out of a root
// without touching the filesystem.
func cleanName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}

	native := filepath.FromSlash(name)
	if filepath.IsAbs(native) || filepath.VolumeName(native) != "" ||
		strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("%w: %s", ErrForbidden, name)
	}

	clean := filepath.Clean(native)
	if clean == "." {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrForbidden, name)
	}

	return clean, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
