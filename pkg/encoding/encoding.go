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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

// Decodes a numeric literal in the formats: 123, -123, 0x1F, 0b1010
func DecodeNumber(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty numeric literal")
	}

	negative := false

	if s[0] == '-' {
		negative = true
		s = s[1:]
	}

	base := 10

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	} else if strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B") {
		base = 2
		s = s[2:]
	}

	result, err := strconv.ParseUint(s, base, 64)

	if err != nil {
		return 0, err
	}

	if result > 0xFFFFFFFF {
		return 0, errors.New("literal exceeds 32 bits")
	}

	if negative {
		return -int64(result), nil
	}

	return int64(result), nil
}

// FitsSigned reports whether value fits a two's complement field of the
// given width.
func FitsSigned(value int64, bits uint) bool {
	limit := int64(1) << (bits - 1)
	return value >= -limit && value < limit
}

// FitsUnsigned reports whether value fits an unsigned field of the given
// width.
func FitsUnsigned(value int64, bits uint) bool {
	return value >= 0 && value < (int64(1)<<bits)
}

// FitsField reports whether value fits a field of the given width under
// either interpretation; hardware immediates are routinely written both
// ways (0xFFFF and -1 name the same halfword).
func FitsField(value int64, bits uint) bool {
	return FitsSigned(value, bits) || FitsUnsigned(value, bits)
}

func SignExtend32(value uint32, bitcount uint) uint32 {
	if (value>>(bitcount-1))&0x1 == 1 {
		value |= 0xFFFFFFFF << bitcount
	}

	return value
}
