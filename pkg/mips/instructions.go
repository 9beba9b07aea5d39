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

package mips

import (
	"fmt"
	"strings"
)

// Input format roles. Each character names the next operand to parse:
//
//	d s t   general register (destination / source / second source)
//	D S T   floating-point register (same three slots)
//	X Y Z   system register (same three slots)
//	o       offset constant, label allowed
//	r       branch offset constant, label references tagged PC-relative
//	i       immediate constant, label forbidden
//	I       jump index constant, label allowed, scaled by 4
//	n       negated immediate, label forbidden
//	x       sign-extended immediate, label forbidden
//	b       dereferenced base register, e.g. the sp of 4(sp)
//
// Output format characters select a parsed role by the same letters, or
// emit a literal zero ('0'), the entry's Const ('C') or Fmt ('F') field.
// The output length picks the encoding shape: 1 jump, 3 immediate,
// 5 register.
const (
	InputRoles  = "dstDSTXYZorIinxb"
	outputExtra = "0CF"

	// LoadStoreFormat marks the pseudo "load/store at address" form; the
	// generic engine never sees these mnemonics.
	LoadStoreFormat = "*"

	// OverrideFormat marks mnemonics handled only by an override routine.
	OverrideFormat = "+"
)

// Primary opcodes and SPECIAL functs referenced outside the table (pseudo
// expansion and the shipped overrides).
const (
	OpSpecial uint32 = 0x00
	OpBeq     uint32 = 0x04
	OpAddiu   uint32 = 0x09
	OpOri     uint32 = 0x0D
	OpLui     uint32 = 0x0F
	FnSll     uint32 = 0x00
	FnAddu    uint32 = 0x21
)

// Entry describes one mnemonic: the first encoding field (primary opcode,
// or 0 for SPECIAL), the two format strings, and the fixed constants the
// output format may reference.
type Entry struct {
	Op    uint32
	In    string
	Out   string
	Const uint32
	Fmt   uint32
	Float bool // transfer register of a LoadStoreFormat entry is an FPR
}

var instructions = map[string]Entry{
	// Shifts and SPECIAL arithmetic
	"sll":     {Op: 0x00, In: "dti", Out: "0tdiC", Const: 0x00},
	"srl":     {Op: 0x00, In: "dti", Out: "0tdiC", Const: 0x02},
	"sra":     {Op: 0x00, In: "dti", Out: "0tdiC", Const: 0x03},
	"sllv":    {Op: 0x00, In: "dts", Out: "std0C", Const: 0x04},
	"srlv":    {Op: 0x00, In: "dts", Out: "std0C", Const: 0x06},
	"srav":    {Op: 0x00, In: "dts", Out: "std0C", Const: 0x07},
	"jr":      {Op: 0x00, In: "s", Out: "s000C", Const: 0x08},
	"jalr":    {Op: 0x00, In: "ds", Out: "s0d0C", Const: 0x09},
	"syscall": {Op: 0x00, In: "", Out: "0000C", Const: 0x0C},
	"break":   {Op: 0x00, In: "", Out: "0000C", Const: 0x0D},
	"mfhi":    {Op: 0x00, In: "d", Out: "00d0C", Const: 0x10},
	"mthi":    {Op: 0x00, In: "s", Out: "s000C", Const: 0x11},
	"mflo":    {Op: 0x00, In: "d", Out: "00d0C", Const: 0x12},
	"mtlo":    {Op: 0x00, In: "s", Out: "s000C", Const: 0x13},
	"mult":    {Op: 0x00, In: "st", Out: "st00C", Const: 0x18},
	"multu":   {Op: 0x00, In: "st", Out: "st00C", Const: 0x19},
	"div":     {Op: 0x00, In: "st", Out: "st00C", Const: 0x1A},
	"divu":    {Op: 0x00, In: "st", Out: "st00C", Const: 0x1B},
	"add":     {Op: 0x00, In: "dst", Out: "std0C", Const: 0x20},
	"addu":    {Op: 0x00, In: "dst", Out: "std0C", Const: 0x21},
	"sub":     {Op: 0x00, In: "dst", Out: "std0C", Const: 0x22},
	"subu":    {Op: 0x00, In: "dst", Out: "std0C", Const: 0x23},
	"and":     {Op: 0x00, In: "dst", Out: "std0C", Const: 0x24},
	"or":      {Op: 0x00, In: "dst", Out: "std0C", Const: 0x25},
	"xor":     {Op: 0x00, In: "dst", Out: "std0C", Const: 0x26},
	"nor":     {Op: 0x00, In: "dst", Out: "std0C", Const: 0x27},
	"slt":     {Op: 0x00, In: "dst", Out: "std0C", Const: 0x2A},
	"sltu":    {Op: 0x00, In: "dst", Out: "std0C", Const: 0x2B},

	// REGIMM and branch forms
	"bltz":   {Op: 0x01, In: "sr", Out: "sCr", Const: 0x00},
	"bgez":   {Op: 0x01, In: "sr", Out: "sCr", Const: 0x01},
	"bltzal": {Op: 0x01, In: "sr", Out: "sCr", Const: 0x10},
	"bgezal": {Op: 0x01, In: "sr", Out: "sCr", Const: 0x11},
	"beq":    {Op: 0x04, In: "str", Out: "str"},
	"bne":    {Op: 0x05, In: "str", Out: "str"},
	"blez":   {Op: 0x06, In: "sr", Out: "s0r"},
	"bgtz":   {Op: 0x07, In: "sr", Out: "s0r"},

	// Jumps
	"j":   {Op: 0x02, In: "I", Out: "I"},
	"jal": {Op: 0x03, In: "I", Out: "I"},

	// Immediate arithmetic
	"addi":  {Op: 0x08, In: "tsx", Out: "stx"},
	"addiu": {Op: 0x09, In: "tsx", Out: "stx"},
	"subi":  {Op: 0x08, In: "tsn", Out: "stn"},
	"subiu": {Op: 0x09, In: "tsn", Out: "stn"},
	"slti":  {Op: 0x0A, In: "tsx", Out: "stx"},
	"sltiu": {Op: 0x0B, In: "tsx", Out: "stx"},
	"andi":  {Op: 0x0C, In: "tsi", Out: "sti"},
	"ori":   {Op: 0x0D, In: "tsi", Out: "sti"},
	"xori":  {Op: 0x0E, In: "tsi", Out: "sti"},
	"lui":   {Op: 0x0F, In: "ti", Out: "0ti"},

	// Loads and stores, all in the pseudo address form
	"lb":   {Op: 0x20, In: LoadStoreFormat},
	"lh":   {Op: 0x21, In: LoadStoreFormat},
	"lwl":  {Op: 0x22, In: LoadStoreFormat},
	"lw":   {Op: 0x23, In: LoadStoreFormat},
	"lbu":  {Op: 0x24, In: LoadStoreFormat},
	"lhu":  {Op: 0x25, In: LoadStoreFormat},
	"lwr":  {Op: 0x26, In: LoadStoreFormat},
	"sb":   {Op: 0x28, In: LoadStoreFormat},
	"sh":   {Op: 0x29, In: LoadStoreFormat},
	"swl":  {Op: 0x2A, In: LoadStoreFormat},
	"sw":   {Op: 0x2B, In: LoadStoreFormat},
	"swr":  {Op: 0x2E, In: LoadStoreFormat},
	"lwc1": {Op: 0x31, In: LoadStoreFormat, Float: true},
	"swc1": {Op: 0x39, In: LoadStoreFormat, Float: true},

	// Coprocessor moves
	"mfc0": {Op: 0x10, In: "tX", Out: "CtX00", Const: 0x00},
	"mtc0": {Op: 0x10, In: "tX", Out: "CtX00", Const: 0x04},
	"mfc1": {Op: 0x11, In: "tS", Out: "CtS00", Const: 0x00},
	"mtc1": {Op: 0x11, In: "tS", Out: "CtS00", Const: 0x04},

	// Single-precision floating point
	"add.s": {Op: 0x11, In: "DST", Out: "FTSDC", Const: 0x00, Fmt: 0x10},
	"sub.s": {Op: 0x11, In: "DST", Out: "FTSDC", Const: 0x01, Fmt: 0x10},
	"mul.s": {Op: 0x11, In: "DST", Out: "FTSDC", Const: 0x02, Fmt: 0x10},
	"div.s": {Op: 0x11, In: "DST", Out: "FTSDC", Const: 0x03, Fmt: 0x10},
	"mov.s": {Op: 0x11, In: "DS", Out: "F0SDC", Const: 0x06, Fmt: 0x10},

	// Handled entirely by override routines
	"nop":  {In: OverrideFormat},
	"move": {In: OverrideFormat},
	"li":   {In: OverrideFormat},
	"b":    {In: OverrideFormat},
}

// Lookup returns the table entry for a mnemonic, case-insensitively.
func Lookup(mnemonic string) (Entry, bool) {
	e, ok := instructions[strings.ToLower(mnemonic)]
	return e, ok
}

// IsInstruction reports whether name is a known mnemonic.
func IsInstruction(name string) bool {
	_, ok := instructions[strings.ToLower(name)]
	return ok
}

// The format mini-language is static data; a bad character or output length
// is an assembler defect, so it fails here at load time rather than on the
// first source line that happens to use the mnemonic.
func init() {
	if err := validate(); err != nil {
		panic(err)
	}
}

func validate() error {
	for name, e := range instructions {
		if e.In == LoadStoreFormat || e.In == OverrideFormat {
			continue
		}

		for _, c := range e.In {
			if !strings.ContainsRune(InputRoles, c) {
				return fmt.Errorf(
					"Internal Error: %s: invalid input format character %q",
					name, c,
				)
			}
		}

		switch len(e.Out) {
		case 1, 3, 5:
		default:
			return fmt.Errorf(
				"Internal Error: %s: invalid output format length %d",
				name, len(e.Out),
			)
		}

		for _, c := range e.Out {
			if strings.ContainsRune(outputExtra, c) {
				continue
			}

			if !strings.ContainsRune(InputRoles, c) {
				return fmt.Errorf(
					"Internal Error: %s: invalid output format character %q",
					name, c,
				)
			}

			if !strings.ContainsRune(e.In, c) {
				return fmt.Errorf(
					"Internal Error: %s: output role %q not parsed by input format %q",
					name, c, e.In,
				)
			}
		}
	}

	return nil
}
