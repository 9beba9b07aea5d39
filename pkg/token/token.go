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

package token

type Kind uint

const (
	NONE Kind = iota
	NUMBER
	STRING
	REGISTER
	DEREF
	SEPARATOR
	EOL
	EOF
	DEFINE
	DEFINEREF
	DIRECTIVE
	LABEL
	LABELREF
	RELATIVE
	RELATIVEREF
	INSTRUCTION
)

var kindNames = map[Kind]string{
	NONE:        "<none>",
	NUMBER:      "number",
	STRING:      "string",
	REGISTER:    "register",
	DEREF:       "dereference",
	SEPARATOR:   "separator",
	EOL:         "end of line",
	EOF:         "end of file",
	DEFINE:      "define",
	DEFINEREF:   "define reference",
	DIRECTIVE:   "directive",
	LABEL:       "label",
	LABELREF:    "label reference",
	RELATIVE:    "relative label",
	RELATIVEREF: "relative label reference",
	INSTRUCTION: "instruction",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "<invalid>"
}

// Token is one classified unit of source text. The payload fields depend on
// the kind: Num holds number values, the signed direction/count of relative
// labels, and the top-level marker on EOF tokens; Text holds identifiers,
// mnemonics, directive names and the raw bytes of string literals.
type Token struct {
	Kind Kind
	Num  int64
	Text string
	File string
	Line int
}

// TopLevel reports whether an EOF token ends the bottom-most source file
// rather than an included one.
func (t Token) TopLevel() bool {
	return t.Kind == EOF && t.Num != 0
}
