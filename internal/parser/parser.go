package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/sift-cli/internal/table"
)

// Loader reads one tabular file format into a table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*table.Table, error)
}

// Options controls table loading.
type Options struct {
	// Sheet selects an XLSX sheet by name; SheetIndex (1-based) is used when empty.
	Sheet      string
	SheetIndex int
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// Format is attached to the loaded table for numeric parsing.
	Format table.NumberFormat
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoadFile selects a loader based on filename and returns the loaded table.
func LoadFile(path string, opt Options) (*table.Table, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			t, err := l.Load(path, opt)
			if err != nil {
				return nil, err
			}
			t.Format = opt.Format
			return t, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported table format")
