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
	"github.com/AcamTech/lips/pkg/encoding"
	"github.com/AcamTech/lips/pkg/mips"
	"github.com/AcamTech/lips/pkg/token"
)

// Override is a per-mnemonic routine that replaces the generic format
// engine. It receives the live parse cursor and the mnemonic token and may
// consume any token sequence and issue any emitter requests, including the
// end-of-line handling.
type Override func(p *Parser, mnemonic token.Token) error

func defaultOverrides() map[string]Override {
	return map[string]Override{
		"nop":  parseNop,
		"move": parseMove,
		"li":   parseLoadImmediate,
		"b":    parseBranchAlways,
	}
}

// nop -> sll zero, zero, 0
func parseNop(p *Parser, mn token.Token) error {
	err := p.Emit().AddRegister(
		mn.File, mn.Line, mips.OpSpecial,
		Reg(0), Reg(0), Reg(0), Const(0), Const(int64(mips.FnSll)),
	)

	if err != nil {
		return err
	}

	return p.ExpectEndOfLine()
}

// move d, s -> addu d, s, zero
func parseMove(p *Parser, mn token.Token) error {
	d, err := p.ExpectGPR()

	if err != nil {
		return err
	}

	p.SkipSeparator()

	s, err := p.ExpectGPR()

	if err != nil {
		return err
	}

	err = p.Emit().AddRegister(
		mn.File, mn.Line, mips.OpSpecial,
		Reg(s), Reg(0), Reg(d), Const(0), Const(int64(mips.FnAddu)),
	)

	if err != nil {
		return err
	}

	return p.ExpectEndOfLine()
}

// li t, value -> addiu/ori against zero, or lui+ori for full 32-bit values
func parseLoadImmediate(p *Parser, mn token.Token) error {
	reg, err := p.ExpectGPR()

	if err != nil {
		return err
	}

	p.SkipSeparator()

	value, err := p.ExpectConstant(TAG_PLAIN, false)

	if err != nil {
		return err
	}

	switch {
	case encoding.FitsSigned(value.Num, 16):
		err = p.Emit().AddImmediate(
			mn.File, mn.Line, mips.OpAddiu,
			Reg(0), Reg(reg), Tagged(TAG_SIGNED, value.Num),
		)

	case encoding.FitsUnsigned(value.Num, 16):
		err = p.Emit().AddImmediate(
			mn.File, mn.Line, mips.OpOri,
			Reg(0), Reg(reg), Tagged(TAG_PLAIN, value.Num),
		)

	default:
		bits := uint32(value.Num)

		err = p.Emit().AddImmediate(
			mn.File, mn.Line, mips.OpLui,
			Reg(0), Reg(reg), Const(int64(bits>>16)),
		)

		if err == nil {
			err = p.Emit().AddImmediate(
				mn.File, mn.Line, mips.OpOri,
				Reg(reg), Reg(reg), Const(int64(bits&0xFFFF)),
			)
		}
	}

	if err != nil {
		return err
	}

	return p.ExpectEndOfLine()
}

// b target -> beq zero, zero, target
func parseBranchAlways(p *Parser, mn token.Token) error {
	target, err := p.expectConstant(TAG_PLAIN, TAG_RELATIVE, true)

	if err != nil {
		return err
	}

	err = p.Emit().AddImmediate(
		mn.File, mn.Line, mips.OpBeq, Reg(0), Reg(0), target,
	)

	if err != nil {
		return err
	}

	return p.ExpectEndOfLine()
}
