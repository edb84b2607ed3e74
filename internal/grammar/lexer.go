package grammar

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokWord     tokenKind = iota // TYPE_NAME
	tokInt                       // INTEGER_LABEL
	tokArrow                     // ->
	tokProduces                  // ==>
	tokPipe                      // |
	tokComma                     // ,
	tokSemi                      // ;
	tokEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokWord:
		return "type name"
	case tokInt:
		return "label"
	case tokEOF:
		return "end of input"
	}
	for _, p := range symbols().puncts {
		if p.kind == k {
			return fmt.Sprintf("%q", p.text)
		}
	}
	return "token"
}

type token struct {
	kind tokenKind
	val  string
	pos  Position
}

type punct struct {
	text string
	kind tokenKind
}

// symbolTable is built once per process and only read afterwards.
type symbolTable struct {
	puncts []punct // longest first
	starts string  // first bytes of every punctuation token
}

var symbols = sync.OnceValue(func() *symbolTable {
	ps := []punct{
		{"==>", tokProduces},
		{"->", tokArrow},
		{"|", tokPipe},
		{",", tokComma},
		{";", tokSemi},
	}
	sort.SliceStable(ps, func(i, j int) bool { return len(ps[i].text) > len(ps[j].text) })
	var starts strings.Builder
	for _, p := range ps {
		if !strings.ContainsRune(starts.String(), rune(p.text[0])) {
			starts.WriteByte(p.text[0])
		}
	}
	return &symbolTable{puncts: ps, starts: starts.String()}
})

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func tokenize(src string) ([]token, error) {
	st := symbols()
	var tokens []token
	line, col := 1, 1
	i := 0
	pos := func() Position { return Position{Offset: i, Line: line, Col: col} }
	advance := func(n int) {
		for _, r := range src[i : i+n] {
			if r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		i += n
	}

	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		// Skip whitespace.
		if unicode.IsSpace(r) {
			advance(size)
			continue
		}
		// Comments run to end of line.
		if r == '#' {
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				j = len(src) - i
			}
			advance(j)
			continue
		}
		// Punctuation.
		if strings.IndexByte(st.starts, src[i]) >= 0 {
			matched := false
			for _, p := range st.puncts {
				if strings.HasPrefix(src[i:], p.text) {
					tokens = append(tokens, token{p.kind, p.text, pos()})
					advance(len(p.text))
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}
		// Labels.
		if r >= '0' && r <= '9' {
			start := pos()
			j := i
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			tokens = append(tokens, token{tokInt, src[i:j], start})
			advance(j - i)
			continue
		}
		// Type names.
		if isNameRune(r) {
			start := pos()
			j := i
			for j < len(src) {
				rr, sz := utf8.DecodeRuneInString(src[j:])
				if !isNameRune(rr) {
					break
				}
				j += sz
			}
			tokens = append(tokens, token{tokWord, src[i:j], start})
			advance(j - i)
			continue
		}
		return nil, &SyntaxError{Source: src, Pos: pos(), Msg: fmt.Sprintf("unexpected character %q", r)}
	}
	tokens = append(tokens, token{tokEOF, "", pos()})
	return tokens, nil
}
