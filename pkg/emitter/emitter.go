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

package emitter

import (
	"encoding/binary"
	"fmt"

	"github.com/AcamTech/lips/pkg/assembler"
	"github.com/AcamTech/lips/pkg/encoding"
)

type fixupKind uint

const (
	fixImm16 fixupKind = iota
	fixTarget26
	fixWord32
)

type fixup struct {
	kind   fixupKind
	tag    assembler.ConstTag
	offset uint32
	label  string
	file   string
	line   int
}

// Binary builds a big-endian byte image. Instructions and data are laid
// down immediately; anything that names a label becomes a fixup patched at
// Dump time, so forward references cost nothing.
type Binary struct {
	start  uint32
	buf    []byte
	labels map[string]uint32
	fixups []fixup
}

func New() *Binary {
	return &Binary{labels: make(map[string]uint32)}
}

func (b *Binary) pc() uint32 {
	return b.start + uint32(len(b.buf))
}

// Labels returns the final label table, for symbol file output.
func (b *Binary) Labels() map[string]uint32 {
	labels := make(map[string]uint32, len(b.labels))

	for name, addr := range b.labels {
		labels[name] = addr
	}

	return labels
}

func (b *Binary) AddLabel(file string, line int, name string) error {
	if _, exists := b.labels[name]; exists {
		return &RedeclaredLabelError{file, line, name}
	}

	b.labels[name] = b.pc()
	return nil
}

func (b *Binary) AddDirective(file string, line int, name string, args ...assembler.Operand) error {
	switch name {
	case "org":
		addr := args[0].Num

		if !encoding.FitsUnsigned(addr, 32) {
			return &OversizedValueError{file, line, 32, addr}
		}

		if len(b.buf) == 0 {
			b.start = uint32(addr)
			return nil
		}

		if uint32(addr) < b.pc() {
			return &OriginError{file, line}
		}

		for b.pc() < uint32(addr) {
			b.buf = append(b.buf, 0)
		}

	case "align":
		size, fill := args[0].Num, args[1].Num

		if !encoding.FitsUnsigned(size, 5) {
			return &OversizedValueError{file, line, 5, size}
		}

		if !encoding.FitsField(fill, 8) {
			return &OversizedValueError{file, line, 8, fill}
		}

		for b.pc()%(1<<uint(size)) != 0 {
			b.buf = append(b.buf, byte(fill))
		}

	case "skip":
		count, fill := args[0].Num, args[1].Num

		if count < 0 {
			return &OversizedValueError{file, line, 32, count}
		}

		if !encoding.FitsField(fill, 8) {
			return &OversizedValueError{file, line, 8, fill}
		}

		for i := int64(0); i < count; i++ {
			b.buf = append(b.buf, byte(fill))
		}

	case "byte":
		return b.scalar(file, line, args[0], 1)

	case "halfword":
		return b.scalar(file, line, args[0], 2)

	case "word":
		return b.scalar(file, line, args[0], 4)

	default:
		return &assembler.InternalError{
			Message: fmt.Sprintf("unknown directive request '%s'", name),
		}
	}

	return nil
}

func (b *Binary) scalar(file string, line int, value assembler.Operand, width int) error {
	switch value.Kind {
	case assembler.OPERAND_CONSTANT:
		if !encoding.FitsField(value.Num, uint(width)*8) {
			return &OversizedValueError{file, line, uint(width) * 8, value.Num}
		}

		bits := uint32(value.Num)

		for i := width - 1; i >= 0; i-- {
			b.buf = append(b.buf, byte(bits>>(uint(i)*8)))
		}

		return nil

	case assembler.OPERAND_LABEL:
		if width != 4 {
			return &assembler.InternalError{
				Message: "label operand in a byte-sized directive",
			}
		}

		b.fixups = append(b.fixups, fixup{
			kind:   fixWord32,
			offset: uint32(len(b.buf)),
			label:  value.Label,
			file:   file,
			line:   line,
		})

		b.buf = append(b.buf, 0, 0, 0, 0)
		return nil
	}

	return &assembler.InternalError{
		Message: "register operand in a data directive",
	}
}

func (b *Binary) AddJump(file string, line int, op uint32, target assembler.Operand) error {
	word := op << 26

	switch target.Kind {
	case assembler.OPERAND_CONSTANT:
		addr := uint32(target.Num)

		if addr%4 != 0 {
			return &MisalignedTargetError{file, line, addr}
		}

		word |= (addr & 0x0FFFFFFF) >> 2

	case assembler.OPERAND_LABEL:
		b.fixups = append(b.fixups, fixup{
			kind:   fixTarget26,
			offset: uint32(len(b.buf)),
			label:  target.Label,
			file:   file,
			line:   line,
		})

	default:
		return &assembler.InternalError{
			Message: "register operand as a jump target",
		}
	}

	b.word(word)
	return nil
}

func (b *Binary) AddImmediate(file string, line int, op uint32, rs, rt, imm assembler.Operand) error {
	source, err := b.field(file, line, rs, 5)

	if err != nil {
		return err
	}

	target, err := b.field(file, line, rt, 5)

	if err != nil {
		return err
	}

	word := op<<26 | source<<21 | target<<16

	switch imm.Kind {
	case assembler.OPERAND_CONSTANT:
		bits, err := b.imm16(file, line, imm)

		if err != nil {
			return err
		}

		word |= bits

	case assembler.OPERAND_LABEL:
		b.fixups = append(b.fixups, fixup{
			kind:   fixImm16,
			tag:    imm.Tag,
			offset: uint32(len(b.buf)),
			label:  imm.Label,
			file:   file,
			line:   line,
		})

	default:
		return &assembler.InternalError{
			Message: "register operand in an immediate field",
		}
	}

	b.word(word)
	return nil
}

func (b *Binary) AddRegister(file string, line int, op uint32, rs, rt, rd, shamt, funct assembler.Operand) error {
	word := op << 26

	widths := [...]uint{5, 5, 5, 5, 6}
	shifts := [...]uint{21, 16, 11, 6, 0}

	for i, operand := range [...]assembler.Operand{rs, rt, rd, shamt, funct} {
		bits, err := b.field(file, line, operand, widths[i])

		if err != nil {
			return err
		}

		word |= bits << shifts[i]
	}

	b.word(word)
	return nil
}

// Dump patches every fixup against the final label table and returns the
// image. It must only be called after a fully successful pass.
func (b *Binary) Dump() ([]byte, error) {
	for _, f := range b.fixups {
		addr, exists := b.labels[f.label]

		if !exists {
			return nil, &UnknownLabelError{f.file, f.line, f.label}
		}

		switch f.kind {
		case fixWord32:
			binary.BigEndian.PutUint32(b.buf[f.offset:], addr)

		case fixTarget26:
			if addr%4 != 0 {
				return nil, &MisalignedTargetError{f.file, f.line, addr}
			}

			word := binary.BigEndian.Uint32(b.buf[f.offset:])
			word |= (addr & 0x0FFFFFFF) >> 2
			binary.BigEndian.PutUint32(b.buf[f.offset:], word)

		case fixImm16:
			bits, err := b.patch16(f, addr)

			if err != nil {
				return nil, err
			}

			binary.BigEndian.PutUint16(b.buf[f.offset+2:], bits)
		}
	}

	image := make([]byte, len(b.buf))
	copy(image, b.buf)

	return image, nil
}

func (b *Binary) patch16(f fixup, addr uint32) (uint16, error) {
	switch f.tag {
	case assembler.TAG_RELATIVE:
		site := b.start + f.offset
		distance := int64(addr) - int64(site) - 4

		if distance%4 != 0 {
			return 0, &MisalignedTargetError{f.file, f.line, addr}
		}

		offset := distance / 4

		if !encoding.FitsSigned(offset, 16) {
			return 0, &OversizedValueError{f.file, f.line, 16, offset}
		}

		return uint16(offset), nil

	case assembler.TAG_UPPER:
		return uint16(addr >> 16), nil

	case assembler.TAG_LOWER:
		return uint16(addr & 0xFFFF), nil
	}

	if !encoding.FitsUnsigned(int64(addr), 16) {
		return 0, &OversizedValueError{f.file, f.line, 16, int64(addr)}
	}

	return uint16(addr), nil
}

// field renders a register number or small constant into a sub-word field.
func (b *Binary) field(file string, line int, operand assembler.Operand, bits uint) (uint32, error) {
	switch operand.Kind {
	case assembler.OPERAND_REGISTER, assembler.OPERAND_CONSTANT:
		if !encoding.FitsUnsigned(operand.Num, bits) {
			return 0, &OversizedValueError{file, line, bits, operand.Num}
		}

		return uint32(operand.Num), nil
	}

	return 0, &assembler.InternalError{
		Message: "label operand in a register field",
	}
}

// imm16 renders a constant into the low halfword per its tag.
func (b *Binary) imm16(file string, line int, operand assembler.Operand) (uint32, error) {
	value := operand.Num

	switch operand.Tag {
	case assembler.TAG_NEGATED:
		value = -value
		fallthrough

	case assembler.TAG_SIGNED:
		if !encoding.FitsSigned(value, 16) {
			return 0, &OversizedValueError{file, line, 16, value}
		}

	default:
		if !encoding.FitsField(value, 16) {
			return 0, &OversizedValueError{file, line, 16, value}
		}
	}

	return uint32(value) & 0xFFFF, nil
}

func (b *Binary) word(w uint32) {
	b.buf = append(b.buf,
		byte(w>>24), byte(w>>16), byte(w>>8), byte(w),
	)
}
