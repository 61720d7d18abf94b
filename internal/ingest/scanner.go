package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ScannedFile is a document file found under the docs root.
type ScannedFile struct {
	RelPath string // Relative path from the docs root, forward slashes
	Owner   string // Top-level folder, or "general" for root-level files
	AbsPath string
}

// ScanRoot walks the docs root and returns every markdown and plain text
// file. The top-level folder a file sits in becomes its owner, which is how
// departments organize their documents.
func ScanRoot(ctx context.Context, root string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			// Skip hidden directories
			if name := info.Name(); len(name) > 1 && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		owner := "general"
		if dir := filepath.ToSlash(filepath.Dir(relPath)); dir != "." && dir != "" {
			owner = firstSegment(dir)
		}

		files = append(files, ScannedFile{
			RelPath: relPath,
			Owner:   owner,
			AbsPath: path,
		})
		return nil
	})

	if err != nil {
		return files, fmt.Errorf("failed to scan docs root %s: %w", root, err)
	}
	return files, nil
}

func firstSegment(dir string) string {
	for i := 0; i < len(dir); i++ {
		if dir[i] == '/' {
			return dir[:i]
		}
	}
	return dir
}
