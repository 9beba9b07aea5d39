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

type OperandKind uint
type ConstTag uint

const (
	OPERAND_REGISTER OperandKind = iota
	OPERAND_CONSTANT
	OPERAND_LABEL
)

const (
	TAG_PLAIN ConstTag = iota
	TAG_SIGNED
	TAG_NEGATED
	TAG_RELATIVE
	TAG_INDEX
	TAG_UPPER
	TAG_LOWER
)

// Operand is a resolved operand value handed to the emitter: a register
// number, or a constant/label with a tag describing how its bits reach the
// encoded field.
type Operand struct {
	Kind  OperandKind
	Tag   ConstTag
	Num   int64
	Label string
}

func Reg(n uint32) Operand {
	return Operand{Kind: OPERAND_REGISTER, Num: int64(n)}
}

func Const(v int64) Operand {
	return Operand{Kind: OPERAND_CONSTANT, Tag: TAG_PLAIN, Num: v}
}

func Tagged(tag ConstTag, v int64) Operand {
	return Operand{Kind: OPERAND_CONSTANT, Tag: tag, Num: v}
}

func LabelOperand(tag ConstTag, name string) Operand {
	return Operand{Kind: OPERAND_LABEL, Tag: tag, Label: name}
}

// TokenSource produces one token per call. It must be able to suspend after
// producing a token and resume later with its internal position intact; the
// resolver drives it strictly on demand.
type TokenSource interface {
	Next() (token.Token, error)
}

// Emitter consumes fully-resolved requests and produces the final byte
// stream. Every request is tagged with the originating file and line for
// diagnostics. Dump is called exactly once, after a fully successful pass.
type Emitter interface {
	AddLabel(file string, line int, name string) error
	AddDirective(file string, line int, name string, args ...Operand) error
	AddJump(file string, line int, op uint32, target Operand) error
	AddImmediate(file string, line int, op uint32, a, b, c Operand) error
	AddRegister(file string, line int, op uint32, a, b, c, d, e Operand) error
	Dump() ([]byte, error)
}
