package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ReadDirectory lists the immediate children of a directory, directories
// first and then by name.
func (p *Provider) ReadDirectory(path string) ([]Entry, error) {
	validated, err := p.validate(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(validated)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path)
	}

	dirEntries, err := os.ReadDir(validated)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		full := filepath.Join(validated, de.Name())
		entryType := EntryFile
		if isDirEntryDir(full, de) {
			entryType = EntryDirectory
		}
		entries = append(entries, Entry{Path: full, Name: de.Name(), Type: entryType})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == EntryDirectory
		}
		li, lj := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if li != lj {
			return li < lj
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// isDirEntryDir follows symlinks, matching how a file tree presents them.
func isDirEntryDir(full string, de os.DirEntry) bool {
	if de.IsDir() {
		return true
	}
	if de.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}

// ReadFile returns the contents of a UTF-8 text file.
func (p *Provider) ReadFile(path string) (string, error) {
	validated, err := p.validate(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(validated)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("path is not a file: %s", path)
	}

	data, err := os.ReadFile(validated)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	if !utf8.Valid(data) {
		return "", errors.New(describeNonText(data))
	}
	return string(data), nil
}

// WriteFile writes content, creating missing parent directories.
func (p *Provider) WriteFile(path, content string) (int, error) {
	validated, err := p.validate(path)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(validated), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(validated, []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	p.logger.Debug("file written", zap.String("path", validated), zap.Int("bytes", len(content)))
	return len(content), nil
}
