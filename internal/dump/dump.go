// Package dump saves page state at failure time so UI desyncs can be
// investigated after the run: a full-page screenshot plus the raw HTML.
package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// KeepDefault is how many dumps Clean retains by default.
const KeepDefault = 20

// WritePage stores screenshot (PNG) and html under dir with a shared
// unique name, returning that name. Either part may be empty when the
// browser could not produce it.
func WritePage(dir string, screenshot []byte, html string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dump directory: %w", err)
	}

	name := uuid.NewString()

	if len(screenshot) > 0 {
		path := filepath.Join(dir, name+".png")
		if err := os.WriteFile(path, screenshot, 0o644); err != nil {
			return "", fmt.Errorf("failed to write screenshot dump: %w", err)
		}
	}

	if html != "" {
		path := filepath.Join(dir, name+".html")
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			return "", fmt.Errorf("failed to write page dump: %w", err)
		}
	}

	return name, nil
}

// Clean prunes dir down to the newest keep dump files.
func Clean(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read dump directory: %w", err)
	}

	type dumpFile struct {
		path    string
		modTime int64
	}

	var files []dumpFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, dumpFile{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}

	if len(files) <= keep {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime > files[j].modTime
	})

	for _, f := range files[keep:] {
		if err := os.Remove(f.path); err != nil {
			return fmt.Errorf("failed to remove old dump: %w", err)
		}
	}

	return nil
}
