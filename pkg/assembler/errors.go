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

import "fmt"

// Diagnostic is a user-facing error carrying the source position of the
// token being processed when the fault was detected. Assembly halts at the
// first one.
type Diagnostic interface {
	error
	Position() (string, int)
}

type ExpectedError struct {
	File string
	Line int
	Want string
}

func (err *ExpectedError) Position() (string, int) {
	return err.File, err.Line
}

func (err *ExpectedError) Error() string {
	return fmt.Sprintf("%s:%d: Error: expected %s", err.File, err.Line, err.Want)
}

type UndefinedDefineError struct {
	File string
	Line int
	Name string
}

func (err *UndefinedDefineError) Position() (string, int) {
	return err.File, err.Line
}

func (err *UndefinedDefineError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: undefined define '%s'",
		err.File, err.Line, err.Name,
	)
}

type DuplicateDefineError struct {
	File string
	Line int
	Name string
}

func (err *DuplicateDefineError) Position() (string, int) {
	return err.File, err.Line
}

func (err *DuplicateDefineError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: duplicate define '%s'",
		err.File, err.Line, err.Name,
	)
}

type UnresolvedRelativeError struct {
	File string
	Line int
}

func (err *UnresolvedRelativeError) Position() (string, int) {
	return err.File, err.Line
}

func (err *UnresolvedRelativeError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: could not find appropriate relative label",
		err.File, err.Line,
	)
}

type UnknownDirectiveError struct {
	File string
	Line int
	Name string
}

func (err *UnknownDirectiveError) Position() (string, int) {
	return err.File, err.Line
}

func (err *UnknownDirectiveError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: unknown directive '.%s'",
		err.File, err.Line, err.Name,
	)
}

type UnimplementedDirectiveError struct {
	File string
	Line int
	Name string
}

func (err *UnimplementedDirectiveError) Position() (string, int) {
	return err.File, err.Line
}

func (err *UnimplementedDirectiveError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: unimplemented directive '.%s'",
		err.File, err.Line, err.Name,
	)
}

type UnexpectedTokenError struct {
	File string
	Line int
	Kind string
}

func (err *UnexpectedTokenError) Position() (string, int) {
	return err.File, err.Line
}

func (err *UnexpectedTokenError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: unexpected token (%s)",
		err.File, err.Line, err.Kind,
	)
}

type RegisterClassError struct {
	File string
	Line int
	Name string
	Want string
}

func (err *RegisterClassError) Position() (string, int) {
	return err.File, err.Line
}

func (err *RegisterClassError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: wrong register class for '%s' (expected %s register)",
		err.File, err.Line, err.Name, err.Want,
	)
}

type LabelNotAllowedError struct {
	File string
	Line int
}

func (err *LabelNotAllowedError) Position() (string, int) {
	return err.File, err.Line
}

func (err *LabelNotAllowedError) Error() string {
	return fmt.Sprintf(
		"%s:%d: Error: labels not allowed here",
		err.File, err.Line,
	)
}

// InternalError signals a malformed static table or a dispatcher bug. It
// carries no source position; it is a defect in the assembler, not in the
// input program.
type InternalError struct {
	Message string
}

func (err *InternalError) Error() string {
	return "Internal Error: " + err.Message
}
