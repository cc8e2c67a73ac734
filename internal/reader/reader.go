// Package reader extracts parseable text from corpus files. Each format
// flattens to plain-text blocks for the constituency parser; .trees
// files carry pre-parsed bracketed trees and bypass parsing entirely.
package reader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the extracted content of one corpus file. Exactly one of
// Blocks or Trees is populated.
type Document struct {
	Name   string
	Blocks []string // plain-text paragraphs awaiting parsing
	Trees  string   // pre-parsed bracketed trees from a .trees file
}

// PreParsed reports whether the document skips the parse service.
func (d *Document) PreParsed() bool { return d.Trees != "" }

// Text joins the document's blocks for hashing or preview.
func (d *Document) Text() string { return strings.Join(d.Blocks, "\n\n") }

// Reader extracts a Document from raw file bytes.
type Reader interface {
	Read(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists the corpus file extensions this service
// accepts.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
	".pdf":      true,
	".trees":    true,
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	case ".pdf":
		return &PDFReader{}, nil
	case ".trees":
		return &TreesReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func docName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
