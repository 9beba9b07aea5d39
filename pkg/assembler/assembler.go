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

package assembler

import (
	"strconv"
	"strings"

	"github.com/AcamTech/lips/pkg/mips"
	"github.com/AcamTech/lips/pkg/token"
)

// Parser drains a token source into a buffer, resolves macro constants and
// anonymous relative labels over that buffer, then walks it once issuing
// directive and instruction requests to the emitter.
type Parser struct {
	emit    Emitter
	tokens  []token.Token
	pos     int
	defines map[string]int64

	// Anchor occurrence lists by buffer position. The forward list appends
	// in encounter order (ascending position); the backward list prepends,
	// newest first (descending position). Resolution scans each list in
	// its stored order, so the construction order of one cannot change
	// without the scan of the other.
	forward  []int
	backward []int

	overrides map[string]Override
}

func New(emit Emitter) *Parser {
	return &Parser{
		emit:      emit,
		defines:   make(map[string]int64),
		overrides: defaultOverrides(),
	}
}

// RegisterOverride installs a per-mnemonic routine consulted before the
// generic format engine. Generic parsing never runs for overridden
// mnemonics.
func (p *Parser) RegisterOverride(name string, fn Override) {
	p.overrides[strings.ToLower(name)] = fn
}

// Emit exposes the emitter to override routines.
func (p *Parser) Emit() Emitter {
	return p.emit
}

// Assemble runs the two preprocessing passes and then the dispatch loop.
// It stops at the first error; the emitter's Dump must only be called when
// Assemble returned nil.
func (p *Parser) Assemble(src TokenSource) error {
	if err := p.collect(src); err != nil {
		return err
	}

	if err := p.resolve(); err != nil {
		return err
	}

	return p.run()
}

// collect is pass 1: pull tokens until the top-level end of file, recording
// macro definitions and anchor occurrences on the way.
func (p *Parser) collect(src TokenSource) error {
	for {
		tok, err := src.Next()

		if err != nil {
			return err
		}

		p.tokens = append(p.tokens, tok)

		switch tok.Kind {
		case token.DEFINE:
			value, err := src.Next()

			if err != nil {
				return err
			}

			if value.Kind != token.NUMBER {
				return &ExpectedError{value.File, value.Line, "number for define"}
			}

			p.tokens = append(p.tokens, value)

			if _, exists := p.defines[tok.Text]; exists {
				return &DuplicateDefineError{tok.File, tok.Line, tok.Text}
			}

			p.defines[tok.Text] = value.Num

		case token.RELATIVE:
			at := len(p.tokens) - 1

			if tok.Num > 0 {
				p.forward = append(p.forward, at)
			} else {
				p.backward = append([]int{at}, p.backward...)
			}

		case token.EOF:
			if tok.TopLevel() {
				return nil
			}
		}
	}
}

// resolve is pass 2: a single in-order rewrite of the buffer. Macro
// references become number literals; anchors and anchor references become
// ordinary labels named after the anchor's buffer position. Positions start
// with a digit, which user labels cannot, so the names never collide.
func (p *Parser) resolve() error {
	for i := range p.tokens {
		tok := &p.tokens[i]

		switch tok.Kind {
		case token.DEFINEREF:
			value, exists := p.defines[tok.Text]

			if !exists {
				return &UndefinedDefineError{tok.File, tok.Line, tok.Text}
			}

			tok.Kind = token.NUMBER
			tok.Num = value
			tok.Text = ""

		case token.RELATIVE:
			tok.Kind = token.LABEL
			tok.Text = relativeName(i)

		case token.RELATIVEREF:
			at := p.findRelative(i, tok.Num)

			if at < 0 {
				return &UnresolvedRelativeError{tok.File, tok.Line}
			}

			tok.Kind = token.LABELREF
			tok.Num = 0
			tok.Text = relativeName(at)
		}
	}

	return nil
}

// findRelative locates the count-th anchor after (count > 0) or before
// (count < 0) buffer position i, or -1 if there are not enough anchors.
func (p *Parser) findRelative(i int, count int64) int {
	if count > 0 {
		for _, at := range p.forward {
			if at > i {
				if count--; count == 0 {
					return at
				}
			}
		}
	} else {
		for _, at := range p.backward {
			if at < i {
				if count++; count == 0 {
					return at
				}
			}
		}
	}

	return -1
}

func relativeName(at int) string {
	return strconv.Itoa(at) + "_relative"
}

// run is the top-level dispatch loop over the resolved buffer.
func (p *Parser) run() error {
	for p.pos < len(p.tokens) {
		tok := p.Peek()

		switch tok.Kind {
		case token.EOF:
			if tok.TopLevel() {
				return nil
			}
			p.Advance()

		case token.EOL:
			p.Advance()

		case token.DEFINE:
			// Definition pair, already recorded in pass 1.
			p.Advance()
			p.Advance()

		case token.DIRECTIVE:
			if err := p.directive(); err != nil {
				return err
			}

		case token.LABEL:
			if err := p.emit.AddLabel(tok.File, tok.Line, tok.Text); err != nil {
				return err
			}
			p.Advance()

		case token.INSTRUCTION:
			if err := p.instruction(); err != nil {
				return err
			}

		default:
			return &UnexpectedTokenError{tok.File, tok.Line, tok.Kind.String()}
		}
	}

	return nil
}

// Peek returns the token under the cursor without consuming it.
func (p *Parser) Peek() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.pos]
}

// Advance consumes and returns the token under the cursor.
func (p *Parser) Advance() token.Token {
	tok := p.Peek()

	if p.pos < len(p.tokens) {
		p.pos++
	}

	return tok
}

// SkipSeparator consumes an optional separator token.
func (p *Parser) SkipSeparator() bool {
	if p.Peek().Kind == token.SEPARATOR {
		p.Advance()
		return true
	}

	return false
}

// ExpectEndOfLine requires the current statement to be over: end of line
// (consumed) or end of file (left for the dispatch loop).
func (p *Parser) ExpectEndOfLine() error {
	tok := p.Peek()

	switch tok.Kind {
	case token.EOL:
		p.Advance()
		return nil
	case token.EOF:
		return nil
	}

	return &ExpectedError{tok.File, tok.Line, "end of line"}
}

// ExpectGPR consumes a general register operand.
func (p *Parser) ExpectGPR() (uint32, error) {
	return p.expectRegister(mips.LookupGPR, "general")
}

// ExpectFPR consumes a floating-point register operand.
func (p *Parser) ExpectFPR() (uint32, error) {
	return p.expectRegister(mips.LookupFPR, "floating-point")
}

// ExpectSys consumes a system register operand.
func (p *Parser) ExpectSys() (uint32, error) {
	return p.expectRegister(mips.LookupSys, "system")
}

func (p *Parser) expectRegister(lookup func(string) (uint32, bool), class string) (uint32, error) {
	tok := p.Advance()

	if tok.Kind != token.REGISTER {
		return 0, &ExpectedError{tok.File, tok.Line, "register"}
	}

	n, ok := lookup(tok.Text)

	if !ok {
		return 0, &RegisterClassError{tok.File, tok.Line, tok.Text, class}
	}

	return n, nil
}

// ExpectDeref consumes a dereferenced base register, e.g. the (sp) of
// 4(sp).
func (p *Parser) ExpectDeref() (uint32, error) {
	tok := p.Advance()

	if tok.Kind != token.DEREF {
		return 0, &ExpectedError{tok.File, tok.Line, "dereferenced register"}
	}

	n, ok := mips.LookupGPR(tok.Text)

	if !ok {
		return 0, &RegisterClassError{tok.File, tok.Line, tok.Text, "general"}
	}

	return n, nil
}

// ExpectConstant consumes a constant operand carrying the given tag.
func (p *Parser) ExpectConstant(tag ConstTag, labelAllowed bool) (Operand, error) {
	return p.expectConstant(tag, tag, labelAllowed)
}

// expectConstant consumes a number (tagged numTag) or, when permitted, a
// label reference (tagged labelTag). Branch operands tag the two
// differently: a literal is a ready offset, a label is not.
func (p *Parser) expectConstant(numTag, labelTag ConstTag, labelAllowed bool) (Operand, error) {
	tok := p.Advance()

	switch tok.Kind {
	case token.NUMBER:
		return Tagged(numTag, tok.Num), nil

	case token.LABELREF:
		if !labelAllowed {
			return Operand{}, &LabelNotAllowedError{tok.File, tok.Line}
		}
		return LabelOperand(labelTag, tok.Text), nil
	}

	return Operand{}, &ExpectedError{tok.File, tok.Line, "constant"}
}
