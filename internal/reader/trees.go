package reader

import (
	"fmt"
	"io"
	"strings"
)

// TreesReader handles .trees files: bracketed constituency trees, one
// per line or spanning lines, already parsed upstream.
type TreesReader struct{}

func (p *TreesReader) Read(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trees: %w", err)
	}
	trees := strings.TrimSpace(string(data))
	if trees == "" {
		return nil, fmt.Errorf("trees file %s is empty", filename)
	}
	return &Document{Name: docName(filename), Trees: trees}, nil
}
