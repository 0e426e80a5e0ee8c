package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	filenamePrefix   = "ORO-MANTRA-Invoice-"
	fallbackFilename = "invoice"
)

// Filename derives the download name from the invoice number field.
func Filename(invoiceNumber string) string {
	num := strings.TrimSpace(invoiceNumber)
	if num == "" {
		num = fallbackFilename
	}
	num = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		}
		return '-'
	}, num)
	num = strings.Trim(num, ".")
	if num == "" {
		num = fallbackFilename
	}
	return filenamePrefix + num + ".pdf"
}

// Sink persists a finished document and reports where it went.
type Sink interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// DirSink writes documents into a local directory.
type DirSink struct {
	Dir string
}

func (s DirSink) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
