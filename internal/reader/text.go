package reader

import (
	"bufio"
	"io"
	"strings"
)

// TextReader handles plain text files. Blank lines separate blocks.
type TextReader struct{}

func (p *TextReader) Read(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				blocks = append(blocks, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		blocks = append(blocks, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Document{Name: docName(filename), Blocks: blocks}, nil
}
