package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"leximini/internal/domain"
)

// DirectoryLoader reads PDF and plain-text documents from a directory tree.
type DirectoryLoader struct {
	walker *Walker
}

func NewDirectoryLoader(includes, excludes []string) *DirectoryLoader {
	return &DirectoryLoader{
		walker: NewWalker(includes, excludes),
	}
}

// Load reads every matching file under root. Files that fail to parse are
// collected into errs; the rest of the batch still loads. A missing root or
// an empty match set is a hard error: ingestion with nothing to ingest is a
// misconfiguration, not an empty success.
func (l *DirectoryLoader) Load(root string) ([]domain.Document, []error, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("data directory %q not found: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("data directory %q is not a directory", root)
	}

	files, err := l.walker.Walk(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no ingestible files found in %q", root)
	}

	var docs []domain.Document
	var errs []error

	for _, file := range files {
		content, err := extractText(file.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file.Path, err))
			continue
		}
		if strings.TrimSpace(content) == "" {
			errs = append(errs, fmt.Errorf("%s: no extractable text", file.Path))
			continue
		}

		docs = append(docs, domain.Document{
			ID:      generateDocID(file.Path),
			Path:    file.Path,
			Source:  filepath.Base(file.Path),
			Content: content,
		})
	}

	return docs, errs, nil
}

// extractText dispatches on file extension.
func extractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// generateDocID creates a unique ID for a document based on its path.
func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
