package reader

import (
	"strings"
	"testing"
)

func TestTextReader_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextReader{}
	doc, err := p.Read(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Name != "notes" {
		t.Errorf("expected name %q, got %q", "notes", doc.Name)
	}
	if len(doc.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(doc.Blocks))
	}

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	for i, w := range want {
		if doc.Blocks[i] != w {
			t.Errorf("block[%d]: expected %q, got %q", i, w, doc.Blocks[i])
		}
	}
}

func TestTextReader_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "Para one.\n   \nPara two."
	p := &TextReader{}
	doc, err := p.Read(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Blocks))
	}
}

func TestMarkdownReader_FlattensHeadingsAndBody(t *testing.T) {
	input := "# Title\n\nFirst paragraph here.\n\n## Section\n\nSecond paragraph here.\n"
	p := &MarkdownReader{}
	doc, err := p.Read(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := doc.Text()
	for _, want := range []string{"Title", "First paragraph here.", "Section", "Second paragraph here."} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in extracted text, got %q", want, joined)
		}
	}
	// Markup must not survive extraction.
	if strings.Contains(joined, "#") {
		t.Errorf("heading markers should be stripped, got %q", joined)
	}
}

func TestHTMLReader_SkipsChrome(t *testing.T) {
	input := `<html><head><title>T</title><style>p{}</style></head>
<body><nav>skip me</nav><h1>Heading</h1><p>Body text.</p><script>var x;</script></body></html>`
	p := &HTMLReader{}
	doc, err := p.Read(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := doc.Text()
	if !strings.Contains(joined, "Heading") || !strings.Contains(joined, "Body text.") {
		t.Errorf("missing content blocks: %q", joined)
	}
	if strings.Contains(joined, "skip me") || strings.Contains(joined, "var x") {
		t.Errorf("nav/script content should be skipped: %q", joined)
	}
}

func TestTreesReader_PassesThrough(t *testing.T) {
	input := "(ROOT (S (NP (PRP I)) (VP (VBP run))))\n"
	p := &TreesReader{}
	doc, err := p.Read(strings.NewReader(input), "corpus.trees")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.PreParsed() {
		t.Fatal("trees document should be pre-parsed")
	}
	if doc.Trees != strings.TrimSpace(input) {
		t.Errorf("trees content should pass through, got %q", doc.Trees)
	}

	if _, err := p.Read(strings.NewReader("  \n"), "empty.trees"); err == nil {
		t.Error("expected error for empty trees file")
	}
}

func TestForFile(t *testing.T) {
	cases := []struct {
		filename string
		ok       bool
	}{
		{"a.txt", true},
		{"a.md", true},
		{"a.markdown", true},
		{"a.HTML", true},
		{"a.docx", true},
		{"a.pdf", true},
		{"a.trees", true},
		{"a.exe", false},
		{"a", false},
	}
	for _, tc := range cases {
		_, err := ForFile(tc.filename)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.filename, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected error", tc.filename)
		}
		if got := IsSupportedExtension(tc.filename); got != tc.ok {
			t.Errorf("IsSupportedExtension(%s) = %v", tc.filename, got)
		}
	}
}

func TestSegment_PacksWithoutOverlap(t *testing.T) {
	blocks := []string{
		"One two three.",
		"Four five six.",
		"Seven eight nine.",
	}
	segments := Segment(blocks, 32)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %q", len(segments), segments)
	}

	// Every sentence appears exactly once across all segments.
	joined := strings.Join(segments, " ")
	for _, block := range blocks {
		if strings.Count(joined, block) != 1 {
			t.Errorf("block %q should appear exactly once in %q", block, joined)
		}
	}
}

func TestSegment_SplitsOversizedBlock(t *testing.T) {
	long := "First sentence here. Second sentence here. Third sentence here."
	segments := Segment([]string{long}, 25)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %q", len(segments), segments)
	}
	for _, seg := range segments {
		if !strings.HasSuffix(seg, "here.") {
			t.Errorf("segment should end on a sentence boundary, got %q", seg)
		}
	}
}

func TestSegment_EmptyBlocks(t *testing.T) {
	if got := Segment(nil, 100); len(got) != 0 {
		t.Errorf("expected no segments, got %v", got)
	}
	if got := Segment([]string{"  ", ""}, 100); len(got) != 0 {
		t.Errorf("expected no segments for blank blocks, got %v", got)
	}
}
