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

// ScratchRegister is $at, reserved for pseudo-instruction expansion and
// never accepted as a user operand name other than "at"/"r1".
const ScratchRegister uint32 = 1

var gprNames = map[string]uint32{
	"zero": 0, "at": 1,
	"v0": 2, "v1": 3,
	"a0": 4, "a1": 5, "a2": 6, "a3": 7,
	"t0": 8, "t1": 9, "t2": 10, "t3": 11,
	"t4": 12, "t5": 13, "t6": 14, "t7": 15,
	"s0": 16, "s1": 17, "s2": 18, "s3": 19,
	"s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"t8": 24, "t9": 25,
	"k0": 26, "k1": 27,
	"gp": 28, "sp": 29, "fp": 30, "s8": 30, "ra": 31,
}

var sysNames = map[string]uint32{
	"index": 0, "random": 1, "badvaddr": 8, "count": 9,
	"compare": 11, "status": 12, "sr": 12, "cause": 13,
	"epc": 14, "prid": 15,
}

func init() {
	for i := uint32(0); i < 32; i++ {
		gprNames[fmt.Sprintf("r%d", i)] = i
		sysNames[fmt.Sprintf("c%d", i)] = i
	}
}

// LookupGPR resolves a general register name to its number.
func LookupGPR(name string) (uint32, bool) {
	n, ok := gprNames[strings.ToLower(name)]
	return n, ok
}

// LookupFPR resolves a floating-point register name (f0..f31).
func LookupFPR(name string) (uint32, bool) {
	name = strings.ToLower(name)

	if len(name) < 2 || name[0] != 'f' {
		return 0, false
	}

	var n uint32

	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint32(c-'0')
	}

	if n > 31 || (len(name) > 2 && name[1] == '0') {
		return 0, false
	}

	return n, true
}

// LookupSys resolves a system (cop0) register name to its number.
func LookupSys(name string) (uint32, bool) {
	n, ok := sysNames[strings.ToLower(name)]
	return n, ok
}

// IsRegister reports whether name belongs to any register class. The lexer
// uses it to classify identifiers; the parser checks the class.
func IsRegister(name string) bool {
	if _, ok := LookupGPR(name); ok {
		return true
	}
	if _, ok := LookupFPR(name); ok {
		return true
	}
	_, ok := LookupSys(name)
	return ok
}
