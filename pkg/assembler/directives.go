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

import "github.com/AcamTech/lips/pkg/token"

// directive interprets one directive statement. Every branch ends by
// requiring end of line; trailing garbage is an error.
func (p *Parser) directive() error {
	tok := p.Advance()

	switch tok.Text {
	// .org address
	case "org":
		addr, err := p.ExpectConstant(TAG_PLAIN, false)

		if err != nil {
			return err
		}

		if err := p.emit.AddDirective(tok.File, tok.Line, "org", addr); err != nil {
			return err
		}

	// .align [size [, fill]]
	case "align":
		args, err := p.listValues(false)

		if err != nil {
			return err
		}

		if len(args) > 2 {
			return &ExpectedError{tok.File, tok.Line, "end of line"}
		}

		for len(args) < 2 {
			args = append(args, Const(0))
		}

		if err := p.emit.AddDirective(tok.File, tok.Line, "align", args...); err != nil {
			return err
		}

	// .skip count [, fill]
	case "skip":
		args, err := p.listValues(false)

		if err != nil {
			return err
		}

		if len(args) == 0 {
			return &ExpectedError{tok.File, tok.Line, "constant"}
		}

		if len(args) > 2 {
			return &ExpectedError{tok.File, tok.Line, "end of line"}
		}

		if len(args) < 2 {
			args = append(args, Const(0))
		}

		if err := p.emit.AddDirective(tok.File, tok.Line, "skip", args...); err != nil {
			return err
		}

	// .byte / .halfword value [, value ...]
	case "byte", "halfword":
		args, err := p.listValues(false)

		if err != nil {
			return err
		}

		if len(args) == 0 {
			return &ExpectedError{tok.File, tok.Line, "constant"}
		}

		for _, arg := range args {
			if err := p.emit.AddDirective(tok.File, tok.Line, tok.Text, arg); err != nil {
				return err
			}
		}

	// .word value [, value ...] -- uniquely, labels are allowed
	case "word":
		args, err := p.listValues(true)

		if err != nil {
			return err
		}

		if len(args) == 0 {
			return &ExpectedError{tok.File, tok.Line, "constant"}
		}

		for _, arg := range args {
			if err := p.emit.AddDirective(tok.File, tok.Line, "word", arg); err != nil {
				return err
			}
		}

	// .inc "file" -- fully handled by the token source
	case "inc":

	// .ascii / .asciiz "text"
	case "ascii", "asciiz":
		text := p.Advance()

		if text.Kind != token.STRING {
			return &ExpectedError{text.File, text.Line, "string"}
		}

		for i := 0; i < len(text.Text); i++ {
			err := p.emit.AddDirective(
				tok.File, tok.Line, "byte", Const(int64(text.Text[i])),
			)

			if err != nil {
				return err
			}
		}

		if tok.Text == "asciiz" {
			if err := p.emit.AddDirective(tok.File, tok.Line, "byte", Const(0)); err != nil {
				return err
			}
		}

	case "incbin", "float":
		return &UnimplementedDirectiveError{tok.File, tok.Line, tok.Text}

	default:
		return &UnknownDirectiveError{tok.File, tok.Line, tok.Text}
	}

	return p.ExpectEndOfLine()
}

// listValues parses a possibly empty run of constant values. A separator
// between successive values is optional, but a separator must be followed
// by another value.
func (p *Parser) listValues(allowLabels bool) ([]Operand, error) {
	var args []Operand

	for {
		tok := p.Peek()

		switch {
		case tok.Kind == token.NUMBER:
			p.Advance()
			args = append(args, Const(tok.Num))

		case tok.Kind == token.LABELREF && allowLabels:
			p.Advance()
			args = append(args, LabelOperand(TAG_PLAIN, tok.Text))

		case tok.Kind == token.SEPARATOR && len(args) > 0:
			p.Advance()

			value, err := p.expectConstant(TAG_PLAIN, TAG_PLAIN, allowLabels)

			if err != nil {
				return nil, err
			}

			args = append(args, value)

		default:
			return args, nil
		}
	}
}
