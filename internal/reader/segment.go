package reader

import "strings"

// Segment packs document blocks into parse requests of at most maxChars
// characters each. Oversized blocks are split at sentence boundaries.
// Segments never overlap: a sentence sent twice would be counted twice.
func Segment(blocks []string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = 4000
	}

	var segments []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if len(block) > maxChars {
			flush()
			segments = append(segments, splitBySentences(block, maxChars)...)
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(block) > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(block)
	}
	flush()

	return segments
}

// splitBySentences breaks an oversized block at sentence boundaries,
// packing whole sentences up to maxChars. A single sentence longer than
// maxChars is emitted as its own segment rather than cut mid-sentence.
func splitBySentences(text string, maxChars int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	for _, sent := range sentences {
		if current.Len() > 0 && current.Len()+1+len(sent) > maxChars {
			result = append(result, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting on terminal punctuation
// followed by a space.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}
