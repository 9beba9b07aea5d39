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
	"github.com/AcamTech/lips/pkg/mips"
	"github.com/AcamTech/lips/pkg/token"
)

// loadStore parses the pseudo "load/store at address" form shared by every
// load and store mnemonic:
//
//	lw t0, (sp)           one instruction, offset 0
//	lw t0, 4(sp)          one instruction, plain offset
//	lw t0, 0x1F00         one instruction, base register 0 (short form)
//	lw t0, buffer         lui $at / lw with base $at
//	lw t0, buffer, t1     lui $at / addu $at,$at,t1 / lw with base $at
//
// A symbolic label, or a literal whose upper 16 bits are non-zero when
// treated as a 32-bit unsigned address, needs the $at synthesis; everything
// else is a single real instruction.
func (p *Parser) loadStore(mn token.Token, entry mips.Entry) error {
	var reg uint32
	var err error

	if entry.Float {
		reg, err = p.ExpectFPR()
	} else {
		reg, err = p.ExpectGPR()
	}

	if err != nil {
		return err
	}

	p.SkipSeparator()

	switch tok := p.Peek(); tok.Kind {
	case token.DEREF:
		base, err := p.ExpectDeref()

		if err != nil {
			return err
		}

		return p.emit.AddImmediate(
			mn.File, mn.Line, entry.Op, Reg(base), Reg(reg), Const(0),
		)

	case token.NUMBER:
		p.Advance()

		if p.Peek().Kind == token.DEREF {
			base, err := p.ExpectDeref()

			if err != nil {
				return err
			}

			return p.emit.AddImmediate(
				mn.File, mn.Line, entry.Op,
				Reg(base), Reg(reg), Tagged(TAG_SIGNED, tok.Num),
			)
		}

		address := uint32(tok.Num)

		if address>>16 == 0 && tok.Num >= 0 {
			// Short fixed-address form.
			return p.emit.AddImmediate(
				mn.File, mn.Line, entry.Op,
				Reg(0), Reg(reg), Tagged(TAG_PLAIN, tok.Num),
			)
		}

		return p.synthesize(
			mn, entry, reg,
			Const(int64(address>>16)), Const(int64(address&0xFFFF)),
		)

	case token.LABELREF:
		p.Advance()

		return p.synthesize(
			mn, entry, reg,
			LabelOperand(TAG_UPPER, tok.Text), LabelOperand(TAG_LOWER, tok.Text),
		)
	}

	tok := p.Peek()
	return &ExpectedError{tok.File, tok.Line, "address or dereferenced register"}
}

// synthesize expands the full-address form: load the upper half into $at,
// optionally add a user-supplied index register, then issue the real
// instruction against $at with the lower half as offset.
func (p *Parser) synthesize(mn token.Token, entry mips.Entry, reg uint32, upper, lower Operand) error {
	at := mips.ScratchRegister

	err := p.emit.AddImmediate(
		mn.File, mn.Line, mips.OpLui, Reg(0), Reg(at), upper,
	)

	if err != nil {
		return err
	}

	// An index register is present only if another operand follows.
	sep := p.SkipSeparator()

	if sep || p.Peek().Kind == token.REGISTER {
		index, err := p.ExpectGPR()

		if err != nil {
			return err
		}

		err = p.emit.AddRegister(
			mn.File, mn.Line, mips.OpSpecial,
			Reg(at), Reg(index), Reg(at), Const(0), Const(int64(mips.FnAddu)),
		)

		if err != nil {
			return err
		}
	}

	return p.emit.AddImmediate(
		mn.File, mn.Line, entry.Op, Reg(at), Reg(reg), lower,
	)
}
