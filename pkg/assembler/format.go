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
	"fmt"
	"strings"

	"github.com/AcamTech/lips/pkg/mips"
	"github.com/AcamTech/lips/pkg/token"
)

// instruction handles one instruction statement: override routine if one is
// registered, the pseudo address form for load/store mnemonics, otherwise
// the generic format engine.
func (p *Parser) instruction() error {
	tok := p.Advance()
	name := strings.ToLower(tok.Text)

	if fn, ok := p.overrides[name]; ok {
		return fn(p, tok)
	}

	entry, ok := mips.Lookup(name)

	if !ok || entry.In == mips.OverrideFormat {
		return &InternalError{
			fmt.Sprintf("no handler for instruction '%s'", name),
		}
	}

	if entry.In == mips.LoadStoreFormat {
		if err := p.loadStore(tok, entry); err != nil {
			return err
		}

		return p.ExpectEndOfLine()
	}

	bundle, err := p.parseOperands(entry.In)

	if err != nil {
		return err
	}

	if err := p.emitFormat(tok, entry, bundle); err != nil {
		return err
	}

	return p.ExpectEndOfLine()
}

// parseOperands interprets the input format string, one operand role per
// character. A separator between two operand roles is optional.
func (p *Parser) parseOperands(in string) (map[byte]Operand, error) {
	bundle := make(map[byte]Operand, len(in))

	for i := 0; i < len(in); i++ {
		var operand Operand
		var reg uint32
		var err error

		switch c := in[i]; c {
		case 'd', 's', 't':
			if reg, err = p.ExpectGPR(); err == nil {
				operand = Reg(reg)
			}

		case 'D', 'S', 'T':
			if reg, err = p.ExpectFPR(); err == nil {
				operand = Reg(reg)
			}

		case 'X', 'Y', 'Z':
			if reg, err = p.ExpectSys(); err == nil {
				operand = Reg(reg)
			}

		case 'o':
			operand, err = p.expectConstant(TAG_PLAIN, TAG_PLAIN, true)

		case 'r':
			operand, err = p.expectConstant(TAG_PLAIN, TAG_RELATIVE, true)

		case 'i':
			operand, err = p.expectConstant(TAG_PLAIN, TAG_PLAIN, false)

		case 'I':
			operand, err = p.expectConstant(TAG_INDEX, TAG_INDEX, true)

		case 'n':
			operand, err = p.expectConstant(TAG_NEGATED, TAG_NEGATED, false)

		case 'x':
			operand, err = p.expectConstant(TAG_SIGNED, TAG_SIGNED, false)

		case 'b':
			if reg, err = p.ExpectDeref(); err == nil {
				operand = Reg(reg)
			}

		default:
			return nil, &InternalError{
				fmt.Sprintf("invalid input format character %q", c),
			}
		}

		if err != nil {
			return nil, err
		}

		bundle[in[i]] = operand

		if i+1 < len(in) {
			p.SkipSeparator()
		}
	}

	return bundle, nil
}

// emitFormat reassembles the parsed bundle in output format order and
// routes it to the encoder the output length selects. The engine never
// interprets operand semantics; it only shuttles values into positions.
func (p *Parser) emitFormat(tok token.Token, entry mips.Entry, bundle map[byte]Operand) error {
	outs := make([]Operand, 0, len(entry.Out))

	for i := 0; i < len(entry.Out); i++ {
		switch c := entry.Out[i]; c {
		case '0':
			outs = append(outs, Const(0))

		case 'C':
			outs = append(outs, Const(int64(entry.Const)))

		case 'F':
			outs = append(outs, Const(int64(entry.Fmt)))

		default:
			operand, ok := bundle[c]

			if !ok {
				return &InternalError{
					fmt.Sprintf("output role %q was not parsed", c),
				}
			}

			outs = append(outs, operand)
		}
	}

	switch len(outs) {
	case 1:
		return p.emit.AddJump(tok.File, tok.Line, entry.Op, outs[0])

	case 3:
		return p.emit.AddImmediate(
			tok.File, tok.Line, entry.Op, outs[0], outs[1], outs[2],
		)

	case 5:
		return p.emit.AddRegister(
			tok.File, tok.Line, entry.Op,
			outs[0], outs[1], outs[2], outs[3], outs[4],
		)
	}

	return &InternalError{
		fmt.Sprintf("invalid output format length %d", len(outs)),
	}
}
