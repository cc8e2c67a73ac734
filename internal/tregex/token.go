package tregex

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenLabels
	tokenAny      // __
	tokenNot      // !
	tokenAnd      // &
	tokenOr       // | (standalone, between relation alternatives)
	tokenLParen   // (
	tokenRParen   // )
	tokenLBracket // [
	tokenRBracket // ]
	tokenRel      // < > << >> <, <# $+ $- $++ $--
)

type token struct {
	typ    tokenType
	labels []string // tokenLabels: the alternation set, e.g. MD|VBZ|VBP|VBD
	rel    string   // tokenRel: the relation symbol
	pos    int      // byte offset in the pattern string
}

func (t token) String() string {
	switch t.typ {
	case tokenEOF:
		return "end of pattern"
	case tokenLabels:
		return strings.Join(t.labels, "|")
	case tokenAny:
		return "__"
	case tokenRel:
		return t.rel
	case tokenNot:
		return "!"
	case tokenAnd:
		return "&"
	case tokenOr:
		return "|"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	case tokenLBracket:
		return "["
	case tokenRBracket:
		return "]"
	}
	return "?"
}

// lex splits a pattern string into tokens. A '|' glued directly between
// identifiers is label alternation and folds into a single tokenLabels;
// a freestanding '|' separates relation alternatives.
func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case unicode.IsSpace(rune(c)):
			i++
		case c == '(':
			tokens = append(tokens, token{typ: tokenLParen, pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{typ: tokenRParen, pos: i})
			i++
		case c == '[':
			tokens = append(tokens, token{typ: tokenLBracket, pos: i})
			i++
		case c == ']':
			tokens = append(tokens, token{typ: tokenRBracket, pos: i})
			i++
		case c == '!':
			tokens = append(tokens, token{typ: tokenNot, pos: i})
			i++
		case c == '&':
			tokens = append(tokens, token{typ: tokenAnd, pos: i})
			i++
		case c == '|':
			tokens = append(tokens, token{typ: tokenOr, pos: i})
			i++
		case c == '<':
			start := i
			i++
			if i < len(src) && (src[i] == '<' || src[i] == ',' || src[i] == '#') {
				i++
			}
			tokens = append(tokens, token{typ: tokenRel, rel: src[start:i], pos: start})
		case c == '>':
			start := i
			i++
			if i < len(src) && src[i] == '>' {
				i++
			}
			tokens = append(tokens, token{typ: tokenRel, rel: src[start:i], pos: start})
		case c == '$':
			start := i
			i++
			if i >= len(src) || (src[i] != '+' && src[i] != '-') {
				return nil, &PatternSyntaxError{Pattern: src, Offset: start, Msg: "expected + or - after $"}
			}
			sign := src[i]
			i++
			if i < len(src) && src[i] == sign {
				i++
			}
			tokens = append(tokens, token{typ: tokenRel, rel: src[start:i], pos: start})
		case isIdentByte(c):
			start := i
			labels, next, err := lexLabels(src, i)
			if err != nil {
				return nil, err
			}
			i = next
			if len(labels) == 1 && labels[0] == "__" {
				tokens = append(tokens, token{typ: tokenAny, pos: start})
			} else {
				tokens = append(tokens, token{typ: tokenLabels, labels: labels, pos: start})
			}
		default:
			return nil, &PatternSyntaxError{Pattern: src, Offset: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	tokens = append(tokens, token{typ: tokenEOF, pos: len(src)})
	return tokens, nil
}

// lexLabels reads an identifier and any glued |alternatives.
func lexLabels(src string, i int) ([]string, int, error) {
	var labels []string
	for {
		start := i
		for i < len(src) && isIdentByte(src[i]) {
			i++
		}
		if i == start {
			return nil, 0, &PatternSyntaxError{Pattern: src, Offset: i, Msg: "empty label in alternation"}
		}
		labels = append(labels, src[start:i])
		// A glued '|' continues the label set only when an identifier
		// follows immediately; otherwise it is a relation alternative.
		if i+1 < len(src) && src[i] == '|' && isIdentByte(src[i+1]) {
			i++
			continue
		}
		return labels, i, nil
	}
}

func isIdentByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '$', c == '\'', c == '.', c == ',', c == ':':
		return true
	}
	return false
}
