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

import "fmt"

type RedeclaredLabelError struct {
	File string
	Line int
	Name string
}

func (err *RedeclaredLabelError) Position() (string, int) {
	return err.File, err.Line
}

func (err *RedeclaredLabelError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: redeclaration of label '%s'",
		err.File, err.Line, err.Name,
	)
}

type UnknownLabelError struct {
	File string
	Line int
	Name string
}

func (err *UnknownLabelError) Position() (string, int) {
	return err.File, err.Line
}

func (err *UnknownLabelError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: unknown label '%s'",
		err.File, err.Line, err.Name,
	)
}

type OversizedValueError struct {
	File  string
	Line  int
	Bits  uint
	Value int64
}

func (err *OversizedValueError) Position() (string, int) {
	return err.File, err.Line
}

func (err *OversizedValueError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: value %d exceeds %d-bit field",
		err.File, err.Line, err.Value, err.Bits,
	)
}

type MisalignedTargetError struct {
	File   string
	Line   int
	Target uint32
}

func (err *MisalignedTargetError) Position() (string, int) {
	return err.File, err.Line
}

func (err *MisalignedTargetError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: target %#x is not word aligned",
		err.File, err.Line, err.Target,
	)
}

type OriginError struct {
	File string
	Line int
}

func (err *OriginError) Position() (string, int) {
	return err.File, err.Line
}

func (err *OriginError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: origin before current address",
		err.File, err.Line,
	)
}
