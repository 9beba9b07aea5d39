// Copyright (C) 2026  The lips authors

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package lexer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AcamTech/lips/pkg/encoding"
	"github.com/AcamTech/lips/pkg/mips"
	"github.com/AcamTech/lips/pkg/token"
)

type ScanError struct {
	File    string
	Line    int
	Message string
}

func (err *ScanError) Error() string {
	return fmt.Sprintf("%s:%d: Error: %s", err.File, err.Line, err.Message)
}

func (err *ScanError) Position() (string, int) {
	return err.File, err.Line
}

type source struct {
	name   string
	reader *bufio.Reader
	closer io.Closer
	line   int
}

// Lexer turns source text into the token stream the assembler consumes. It
// is strictly pull-based: each Next call produces exactly one token, and
// the include stack keeps its position between calls. `.inc "file"` is
// handled here; the assembler only ever sees the directive token, the
// statement's end of line, and then tokens from the included file.
type Lexer struct {
	stack   []*source
	dir     string
	pending []token.Token
	final   *token.Token
}

// New scans a single in-memory source. `.inc` resolves relative to the
// current working directory.
func New(name string, r io.Reader) *Lexer {
	return &Lexer{
		stack: []*source{{name: name, reader: bufio.NewReader(r), line: 1}},
	}
}

// Open scans a source file; includes resolve relative to its directory.
func Open(path string) (*Lexer, error) {
	file, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	return &Lexer{
		dir: filepath.Dir(path),
		stack: []*source{{
			name:   filepath.Base(path),
			reader: bufio.NewReader(file),
			closer: file,
			line:   1,
		}},
	}, nil
}

func (l *Lexer) top() *source {
	return l.stack[len(l.stack)-1]
}

func (l *Lexer) errorf(format string, args ...interface{}) error {
	src := l.top()
	return &ScanError{src.name, src.line, fmt.Sprintf(format, args...)}
}

func (l *Lexer) make(kind token.Kind) token.Token {
	src := l.top()
	return token.Token{Kind: kind, File: src.name, Line: src.line}
}

// Next produces the next token. After the top-level end of file it keeps
// returning that same EOF token.
func (l *Lexer) Next() (token.Token, error) {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok, nil
	}

	if l.final != nil {
		return *l.final, nil
	}

	for {
		src := l.top()
		c, _, err := src.reader.ReadRune()

		if err == io.EOF {
			tok := l.make(token.EOF)

			if src.closer != nil {
				src.closer.Close()
			}

			if len(l.stack) == 1 {
				tok.Num = 1
				l.final = &tok
			} else {
				l.stack = l.stack[:len(l.stack)-1]
			}

			return tok, nil
		} else if err != nil {
			return token.Token{}, l.errorf("cannot read source: %v", err)
		}

		switch {
		case c == ' ' || c == '\t' || c == '\r':
			continue

		case c == '\n':
			tok := l.make(token.EOL)
			src.line++
			return tok, nil

		case c == ';':
			for {
				c, _, err = src.reader.ReadRune()
				if err != nil || c == '\n' {
					if err == nil {
						src.reader.UnreadRune()
					}
					break
				}
			}
			continue

		case c == ',':
			return l.make(token.SEPARATOR), nil

		case c == '+' || c == '-':
			return l.scanRelative(c)

		case c == '@':
			tok := l.make(token.DEFINEREF)
			name := l.scanIdent()
			if name == "" {
				return token.Token{}, l.errorf("expected name after '@'")
			}
			tok.Text = name
			return tok, nil

		case c == '"':
			return l.scanString()

		case c >= '0' && c <= '9':
			src.reader.UnreadRune()
			return l.scanNumber("")

		case c == '(':
			return l.scanDeref()

		case c == '.':
			return l.scanDirective()

		case c == '$':
			tok := l.make(token.REGISTER)
			name := l.scanIdent()
			if allDigits(name) {
				name = "r" + name
			}
			if !mips.IsRegister(name) {
				return token.Token{}, l.errorf("invalid register identifier '$%s'", name)
			}
			tok.Text = name
			return tok, nil

		case isIdentStart(c):
			src.reader.UnreadRune()
			return l.scanWord()

		default:
			return token.Token{}, l.errorf("unexpected character %q", c)
		}
	}
}

func (l *Lexer) scanRelative(dir rune) (token.Token, error) {
	src := l.top()
	count := int64(1)

	for {
		c, _, err := src.reader.ReadRune()

		if err != nil {
			break
		}

		if c == dir {
			count++
			continue
		}

		if c == ':' {
			tok := l.make(token.RELATIVE)
			if dir == '+' {
				tok.Num = 1
			} else {
				tok.Num = -1
			}
			return tok, nil
		}

		// A '-' immediately followed by a digit is a negative number, not
		// a relative-label reference.
		if dir == '-' && count == 1 && c >= '0' && c <= '9' {
			src.reader.UnreadRune()
			return l.scanNumber("-")
		}

		src.reader.UnreadRune()
		break
	}

	tok := l.make(token.RELATIVEREF)

	if dir == '+' {
		tok.Num = count
	} else {
		tok.Num = -count
	}

	return tok, nil
}

func (l *Lexer) scanString() (token.Token, error) {
	src := l.top()
	tok := l.make(token.STRING)

	var builder strings.Builder

	for {
		c, _, err := src.reader.ReadRune()

		if err != nil || c == '\n' {
			if err == nil {
				src.reader.UnreadRune()
			}
			return token.Token{}, l.errorf("unterminated string")
		}

		if c == '"' {
			tok.Text = builder.String()
			return tok, nil
		}

		if c == '\\' {
			c, _, err = src.reader.ReadRune()
			if err != nil {
				return token.Token{}, l.errorf("unterminated string")
			}

			switch c {
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			case 'r':
				c = '\r'
			case '0':
				c = 0
			case '\\', '"':
			default:
				return token.Token{}, l.errorf("invalid string escape '\\%c'", c)
			}
		}

		if c > 0xFF {
			return token.Token{}, l.errorf("character exceeds byte range")
		}

		builder.WriteRune(c)
	}
}

func (l *Lexer) scanNumber(prefix string) (token.Token, error) {
	tok := l.make(token.NUMBER)
	text := prefix + l.scanIdent()

	value, err := encoding.DecodeNumber(text)

	if err != nil {
		return token.Token{}, l.errorf("invalid numeric literal '%s'", text)
	}

	tok.Num = value
	return tok, nil
}

func (l *Lexer) scanDeref() (token.Token, error) {
	src := l.top()
	tok := l.make(token.DEREF)

	l.skipSpace()

	c, _, err := src.reader.ReadRune()

	if err != nil {
		return token.Token{}, l.errorf("expected register after '('")
	}

	if c != '$' {
		src.reader.UnreadRune()
	}

	name := l.scanIdent()

	if allDigits(name) && c == '$' {
		name = "r" + name
	}

	if !mips.IsRegister(name) {
		return token.Token{}, l.errorf("invalid register identifier '%s'", name)
	}

	l.skipSpace()

	if c, _, err = src.reader.ReadRune(); err != nil || c != ')' {
		return token.Token{}, l.errorf("expected ')' after register")
	}

	tok.Text = name
	return tok, nil
}

func (l *Lexer) scanDirective() (token.Token, error) {
	tok := l.make(token.DIRECTIVE)
	name := strings.ToLower(l.scanIdent())

	if name == "" {
		return token.Token{}, l.errorf("expected directive name after '.'")
	}

	if name == "include" {
		name = "inc"
	}

	tok.Text = name

	if name != "inc" {
		return tok, nil
	}

	return tok, l.pushInclude(tok)
}

// pushInclude consumes the rest of the `.inc "file"` statement, queues the
// statement's EOL, and switches input to the included file. The directive
// token itself still reaches the assembler, where .inc is a no-op.
func (l *Lexer) pushInclude(tok token.Token) error {
	src := l.top()

	l.skipSpace()

	c, _, err := src.reader.ReadRune()

	if err != nil || c != '"' {
		return l.errorf("expected file name after .inc")
	}

	name, err := l.scanString()

	if err != nil {
		return err
	}

	// Consume through the end of the include statement so the including
	// file resumes on its next line.
	eol := l.make(token.EOL)

	for {
		c, _, err = src.reader.ReadRune()

		if err != nil {
			break
		}

		if c == '\n' {
			src.line++
			break
		}

		if c != ' ' && c != '\t' && c != '\r' && c != ';' {
			return l.errorf("expected end of line after .inc")
		}

		if c == ';' {
			for {
				c, _, err = src.reader.ReadRune()
				if err != nil || c == '\n' {
					if err == nil {
						src.line++
					}
					break
				}
			}
			break
		}
	}

	file, err := os.Open(filepath.Join(l.dir, name.Text))

	if err != nil {
		return &ScanError{tok.File, tok.Line, fmt.Sprintf("cannot open include file '%s'", name.Text)}
	}

	l.pending = append(l.pending, eol)
	l.stack = append(l.stack, &source{
		name:   name.Text,
		reader: bufio.NewReader(file),
		closer: file,
		line:   1,
	})

	return nil
}

func (l *Lexer) scanWord() (token.Token, error) {
	src := l.top()
	name := l.scanIdent()

	c, _, err := src.reader.ReadRune()

	if err == nil {
		if c == ':' {
			tok := l.make(token.LABEL)
			tok.Text = name
			return tok, nil
		}
		src.reader.UnreadRune()
	}

	if strings.EqualFold(name, "define") {
		l.skipSpace()

		tok := l.make(token.DEFINE)
		tok.Text = l.scanIdent()

		if tok.Text == "" || !isIdentStart(rune(tok.Text[0])) {
			return token.Token{}, l.errorf("expected name after define")
		}

		return tok, nil
	}

	tok := l.make(token.NONE)
	tok.Text = name

	switch {
	case mips.IsRegister(name):
		tok.Kind = token.REGISTER
	case mips.IsInstruction(name):
		tok.Kind = token.INSTRUCTION
	default:
		tok.Kind = token.LABELREF
	}

	return tok, nil
}

func (l *Lexer) scanIdent() string {
	src := l.top()

	var builder strings.Builder

	for {
		c, _, err := src.reader.ReadRune()

		if err != nil {
			break
		}

		if !isIdentPart(c) {
			src.reader.UnreadRune()
			break
		}

		builder.WriteRune(c)
	}

	return builder.String()
}

func (l *Lexer) skipSpace() {
	src := l.top()

	for {
		c, _, err := src.reader.ReadRune()

		if err != nil {
			return
		}

		if c != ' ' && c != '\t' {
			src.reader.UnreadRune()
			return
		}
	}
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
