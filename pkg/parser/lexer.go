// Package parser implements a small line assembler driving a
// pkg/assembler.State: labels, mnemonics, directives, and the expression
// grammar from pkg/expr, tokenized off a text/scanner.Scanner character
// stream. Grounded on db47h-ngaro/asm/parser.go's use of text/scanner and on
// gmofishsauce-y4/asm's split between a hand-rolled lexer and a parser that
// consumes its tokens.
package parser

import (
	"io"
	"strconv"
	"text/scanner"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokEOL
	tokIdent
	tokNumber
	tokChar
	tokPunct
)

// token is one lexical unit. For tokIdent/tokPunct, text/r carries the
// spelling; for tokNumber/tokChar, num carries the literal's value.
type token struct {
	kind tokenKind
	text string
	num  int32
	r    rune
	line int
}

// lexer turns a character stream into tixasm's token vocabulary. Numbers are
// hand-scanned (not via Scanner.Scan's own int recognition) so that `$`-
// prefixed and `h`-suffixed hex literals can be told apart from a bare `$`
// (current PC) and a trailing identifier with no whitespace in between,
// which Scanner's tokenizer alone cannot distinguish.
type lexer struct {
	s    scanner.Scanner
	line int
}

func newLexer(src io.Reader, name string) *lexer {
	l := &lexer{line: 1}
	l.s.Init(src)
	l.s.Filename = name
	l.s.Mode = 0
	return l
}

func (l *lexer) next() rune {
	r := l.s.Next()
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *lexer) peek() rune {
	return l.s.Peek()
}

// scan reads and returns the next token, skipping spaces, tabs, CRs and
// `;`-comments.
func (l *lexer) scan() token {
	for {
		r := l.peek()
		switch {
		case r == ' ' || r == '\t' || r == '\r':
			l.next()
			continue
		case r == ';':
			for {
				r = l.peek()
				if r == '\n' || r == scanner.EOF {
					break
				}
				l.next()
			}
			continue
		}
		break
	}

	line := l.line
	r := l.peek()
	switch {
	case r == scanner.EOF:
		return token{kind: tokEOF, line: line}
	case r == '\n':
		l.next()
		return token{kind: tokEOL, line: line}
	case r == '$':
		return l.scanDollar(line)
	case r >= '0' && r <= '9':
		return l.scanNumber(line)
	case r == '\'':
		return l.scanChar(line)
	case isIdentStart(r):
		return l.scanIdent(line)
	default:
		l.next()
		return token{kind: tokPunct, r: r, line: line}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '.'
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == '\''
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanDollar handles both `$` alone (current PC) and a `$`-prefixed hex
// literal (`$1A2B`) by peeking one rune past the `$` before committing.
func (l *lexer) scanDollar(line int) token {
	l.next() // consume '$'
	if !isHexDigit(l.peek()) {
		return token{kind: tokPunct, r: '$', line: line}
	}
	var digits []rune
	for isHexDigit(l.peek()) {
		digits = append(digits, l.next())
	}
	v, _ := strconv.ParseInt(string(digits), 16, 64)
	return token{kind: tokNumber, num: int32(v), line: line}
}

// scanNumber reads a decimal or `0x`-prefixed hex literal, then checks for
// an immediately-following (no whitespace) `h`/`H` suffix marking a
// trailing-letter hex literal (`1234h`).
func (l *lexer) scanNumber(line int) token {
	var digits []rune
	base := 10
	if l.peek() == '0' {
		digits = append(digits, l.next())
		if l.peek() == 'x' || l.peek() == 'X' {
			l.next()
			base = 16
			digits = nil
			for isHexDigit(l.peek()) {
				digits = append(digits, l.next())
			}
			v, _ := strconv.ParseInt(string(digits), 16, 64)
			return token{kind: tokNumber, num: int32(v), line: line}
		}
	}
	for l.peek() >= '0' && l.peek() <= '9' {
		digits = append(digits, l.next())
	}
	if l.peek() == 'h' || l.peek() == 'H' {
		l.next()
		v, _ := strconv.ParseInt(string(digits), 16, 64)
		return token{kind: tokNumber, num: int32(v), line: line}
	}
	v, _ := strconv.ParseInt(string(digits), base, 64)
	return token{kind: tokNumber, num: int32(v), line: line}
}

// scanChar reads a single-quoted character literal, e.g. 'A'.
func (l *lexer) scanChar(line int) token {
	l.next() // opening quote
	r := l.next()
	if l.peek() == '\'' {
		l.next()
	}
	return token{kind: tokChar, num: int32(r), line: line}
}

func (l *lexer) scanIdent(line int) token {
	var b []rune
	for isIdentCont(l.peek()) {
		b = append(b, l.next())
	}
	return token{kind: tokIdent, text: string(b), line: line}
}
