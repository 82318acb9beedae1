package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	fieldTitle = "%(title)s"
	fieldID    = "%(id)s"
	fieldExt   = "%(ext)s"
)

// leftovers the engine writes while a transfer is in flight
var skippedExtensions = []string{".part", ".ytdl", ".temp"}

// OutputTemplate returns the engine output template for dir.
// A non-empty sanitized custom name replaces the title/id pattern.
func OutputTemplate(dir, customName string) string {
	if name := Sanitize(customName); name != "" {
		return filepath.Join(dir, name+"."+fieldExt)
	}
	return filepath.Join(dir, fieldTitle+" ["+fieldID+"]."+fieldExt)
}

// renderTemplate fills the template fields from the engine's info record
func renderTemplate(tmpl string, info *EngineInfo) string {
	r := strings.NewReplacer(
		fieldTitle, info.Title,
		fieldID, info.ID,
		fieldExt, info.Ext,
	)
	return r.Replace(tmpl)
}

// ResolveArtifact finds the file the engine actually produced.
// Postprocessing may rewrite the extension, so the declared name is only a hint.
func ResolveArtifact(tmpl string, info *EngineInfo) (string, error) {
	if info == nil {
		return "", fmt.Errorf("%w: engine returned no info", ErrArtifactMissing)
	}

	for i := len(info.Artifacts) - 1; i >= 0; i-- {
		if p := info.Artifacts[i]; p != "" && isRegularFile(p) {
			return p, nil
		}
	}

	declared := info.Filename
	if declared == "" {
		declared = renderTemplate(tmpl, info)
	}
	if !filepath.IsAbs(declared) && filepath.IsAbs(tmpl) {
		declared = filepath.Join(filepath.Dir(tmpl), declared)
	}

	if isRegularFile(declared) {
		return declared, nil
	}

	if p, ok := findByStem(declared); ok {
		return p, nil
	}

	return "", fmt.Errorf("%w: %s", ErrArtifactMissing, filepath.Base(declared))
}

// findByStem returns the first file in path's directory sharing its stem.
// Prefix matching is used instead of filepath.Glob since titles often
// contain glob metacharacters such as [ and ].
func findByStem(path string) (string, bool) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, stem+".") || isLeftover(name) {
			continue
		}

		candidate := filepath.Join(dir, name)
		if isRegularFile(candidate) {
			return candidate, true
		}
	}

	return "", false
}

func isLeftover(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, skip := range skippedExtensions {
		if ext == skip {
			return true
		}
	}
	return false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
