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

package assembler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AcamTech/lips/pkg/assembler"
	"github.com/AcamTech/lips/pkg/lexer"
	"github.com/AcamTech/lips/pkg/token"
)

// call records one emitter request, stripped of its source position.
type call struct {
	Method string
	Name   string
	Op     uint32
	Args   []assembler.Operand
}

// recorder is an emitter that captures requests instead of encoding them,
// so tests can check exactly what the parser decided.
type recorder struct {
	calls []call
}

func (r *recorder) AddLabel(file string, line int, name string) error {
	r.calls = append(r.calls, call{Method: "label", Name: name})
	return nil
}

func (r *recorder) AddDirective(file string, line int, name string, args ...assembler.Operand) error {
	r.calls = append(r.calls, call{Method: "directive", Name: name, Args: args})
	return nil
}

func (r *recorder) AddJump(file string, line int, op uint32, target assembler.Operand) error {
	r.calls = append(r.calls, call{
		Method: "jump", Op: op, Args: []assembler.Operand{target},
	})
	return nil
}

func (r *recorder) AddImmediate(file string, line int, op uint32, a, b, c assembler.Operand) error {
	r.calls = append(r.calls, call{
		Method: "immediate", Op: op, Args: []assembler.Operand{a, b, c},
	})
	return nil
}

func (r *recorder) AddRegister(file string, line int, op uint32, a, b, c, d, e assembler.Operand) error {
	r.calls = append(r.calls, call{
		Method: "register", Op: op, Args: []assembler.Operand{a, b, c, d, e},
	})
	return nil
}

func (r *recorder) Dump() ([]byte, error) {
	return nil, nil
}

type testCase struct {
	Name   string
	Input  string
	Output []call
}

type failCase struct {
	Name  string
	Input string
	Error error
}

func parse(input string) (*recorder, error) {
	rec := &recorder{}
	lex := lexer.New("test.s", strings.NewReader(input))
	return rec, assembler.New(rec).Assemble(lex)
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				rec, err := parse(test.Input)
				require.NoError(t, err)
				require.Equal(t, test.Output, rec.calls)
			})
		}
	})
}

func testFail(t *testing.T, tests []failCase) {
	t.Run("Fail", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				_, err := parse(test.Input)
				require.Error(t, err)
				require.IsType(t, test.Error, err)
			})
		}
	})
}

func reg(n uint32) assembler.Operand      { return assembler.Reg(n) }
func num(v int64) assembler.Operand       { return assembler.Const(v) }
func signed(v int64) assembler.Operand    { return assembler.Tagged(assembler.TAG_SIGNED, v) }
func plain(v int64) assembler.Operand     { return assembler.Tagged(assembler.TAG_PLAIN, v) }
func negated(v int64) assembler.Operand   { return assembler.Tagged(assembler.TAG_NEGATED, v) }
func branch(name string) assembler.Operand {
	return assembler.LabelOperand(assembler.TAG_RELATIVE, name)
}

func TestRelativeLabels(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "Forward",
			Input: "+:\nb +\n+:\n",
			Output: []call{
				{Method: "label", Name: "0_relative"},
				{Method: "immediate", Op: 0x04, Args: []assembler.Operand{
					reg(0), reg(0), branch("5_relative"),
				}},
				{Method: "label", Name: "5_relative"},
			},
		},
		{
			// The double reference skips the nearest forward anchor.
			Name:  "Forward Skip",
			Input: "b ++\n+:\nnop\n+:\n",
			Output: []call{
				{Method: "immediate", Op: 0x04, Args: []assembler.Operand{
					reg(0), reg(0), branch("7_relative"),
				}},
				{Method: "label", Name: "3_relative"},
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					reg(0), reg(0), reg(0), num(0), num(0),
				}},
				{Method: "label", Name: "7_relative"},
			},
		},
		{
			// The double reference reaches past the nearest backward anchor
			// to the one before it.
			Name:  "Backward Skip",
			Input: "-:\nnop\n-:\nb --\n",
			Output: []call{
				{Method: "label", Name: "0_relative"},
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					reg(0), reg(0), reg(0), num(0), num(0),
				}},
				{Method: "label", Name: "4_relative"},
				{Method: "immediate", Op: 0x04, Args: []assembler.Operand{
					reg(0), reg(0), branch("0_relative"),
				}},
			},
		},
		{
			// A backward anchor is invisible to forward references and vice
			// versa.
			Name:  "Directions Are Distinct",
			Input: "-:\nb -\n",
			Output: []call{
				{Method: "label", Name: "0_relative"},
				{Method: "immediate", Op: 0x04, Args: []assembler.Operand{
					reg(0), reg(0), branch("0_relative"),
				}},
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "No Forward Anchor",
			Input: "b +\n",
			Error: &assembler.UnresolvedRelativeError{},
		},
		{
			Name:  "No Backward Anchor",
			Input: "b -\n+:\n",
			Error: &assembler.UnresolvedRelativeError{},
		},
		{
			Name:  "Not Enough Forward Anchors",
			Input: "b ++\n+:\n",
			Error: &assembler.UnresolvedRelativeError{},
		},
		{
			Name:  "Forward Anchor Is Behind",
			Input: "+:\nb +\n",
			Error: &assembler.UnresolvedRelativeError{},
		},
	})
}

func TestDefines(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "Simple",
			Input: "define WIDTH 0x10\nli t0, @WIDTH\n",
			Output: []call{
				{Method: "immediate", Op: 0x09, Args: []assembler.Operand{
					reg(0), reg(8), signed(16),
				}},
			},
		},
		{
			// Resolution runs over the whole buffer before interpretation,
			// so a reference may precede its definition.
			Name:  "Reference Before Definition",
			Input: "li t0, @LATER\ndefine LATER 5\n",
			Output: []call{
				{Method: "immediate", Op: 0x09, Args: []assembler.Operand{
					reg(0), reg(8), signed(5),
				}},
			},
		},
		{
			Name:  "In Directive",
			Input: "define FILL 0xFF\n.byte @FILL\n",
			Output: []call{
				{Method: "directive", Name: "byte", Args: []assembler.Operand{
					num(0xFF),
				}},
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Undefined",
			Input: "li t0, @MISSING\n",
			Error: &assembler.UndefinedDefineError{},
		},
		{
			Name:  "Duplicate",
			Input: "define A 1\ndefine A 2\n",
			Error: &assembler.DuplicateDefineError{},
		},
		{
			Name:  "Value Not A Number",
			Input: "define A foo\n",
			Error: &assembler.ExpectedError{},
		},
	})
}

func TestDirectives(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "Org",
			Input: ".org 0x1000\n",
			Output: []call{
				{Method: "directive", Name: "org", Args: []assembler.Operand{
					plain(0x1000),
				}},
			},
		},
		{
			Name:  "Align Defaults",
			Input: ".align 4\n",
			Output: []call{
				{Method: "directive", Name: "align", Args: []assembler.Operand{
					num(4), num(0),
				}},
			},
		},
		{
			Name:  "Align With Fill",
			Input: ".align 4, 0xFF\n",
			Output: []call{
				{Method: "directive", Name: "align", Args: []assembler.Operand{
					num(4), num(0xFF),
				}},
			},
		},
		{
			Name:  "Bare Align",
			Input: ".align\n",
			Output: []call{
				{Method: "directive", Name: "align", Args: []assembler.Operand{
					num(0), num(0),
				}},
			},
		},
		{
			Name:  "Skip",
			Input: ".skip 8\n",
			Output: []call{
				{Method: "directive", Name: "skip", Args: []assembler.Operand{
					num(8), num(0),
				}},
			},
		},
		{
			// Separators between list values are optional.
			Name:  "Byte List Mixed Separators",
			Input: ".byte 1 2, 3\n",
			Output: []call{
				{Method: "directive", Name: "byte", Args: []assembler.Operand{num(1)}},
				{Method: "directive", Name: "byte", Args: []assembler.Operand{num(2)}},
				{Method: "directive", Name: "byte", Args: []assembler.Operand{num(3)}},
			},
		},
		{
			Name:  "Halfword",
			Input: ".halfword 0x1234\n",
			Output: []call{
				{Method: "directive", Name: "halfword", Args: []assembler.Operand{
					num(0x1234),
				}},
			},
		},
		{
			Name:  "Word With Label",
			Input: ".word start\nstart:\n",
			Output: []call{
				{Method: "directive", Name: "word", Args: []assembler.Operand{
					assembler.LabelOperand(assembler.TAG_PLAIN, "start"),
				}},
				{Method: "label", Name: "start"},
			},
		},
		{
			Name:  "Ascii",
			Input: ".ascii \"AB\"\n",
			Output: []call{
				{Method: "directive", Name: "byte", Args: []assembler.Operand{num('A')}},
				{Method: "directive", Name: "byte", Args: []assembler.Operand{num('B')}},
			},
		},
		{
			Name:  "Asciiz",
			Input: ".asciiz \"A\"\n",
			Output: []call{
				{Method: "directive", Name: "byte", Args: []assembler.Operand{num('A')}},
				{Method: "directive", Name: "byte", Args: []assembler.Operand{num(0)}},
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Unknown",
			Input: ".foo\n",
			Error: &assembler.UnknownDirectiveError{},
		},
		{
			Name:  "Unimplemented Incbin",
			Input: ".incbin \"file.bin\"\n",
			Error: &assembler.UnimplementedDirectiveError{},
		},
		{
			Name:  "Unimplemented Float",
			Input: ".float\n",
			Error: &assembler.UnimplementedDirectiveError{},
		},
		{
			Name:  "Align Too Many Values",
			Input: ".align 1, 2, 3\n",
			Error: &assembler.ExpectedError{},
		},
		{
			Name:  "Byte Without Values",
			Input: ".byte\n",
			Error: &assembler.ExpectedError{},
		},
		{
			Name:  "Dangling Separator",
			Input: ".byte 1,\n",
			Error: &assembler.ExpectedError{},
		},
		{
			Name:  "Org Label",
			Input: ".org main\nmain:\n",
			Error: &assembler.LabelNotAllowedError{},
		},
		{
			Name:  "Byte Label",
			Input: ".byte main\nmain:\n",
			Error: &assembler.ExpectedError{},
		},
		{
			Name:  "Ascii Without String",
			Input: ".ascii 42\n",
			Error: &assembler.ExpectedError{},
		},
	})
}

func TestInstructionFormats(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "Register Shape",
			Input: "addu t0, s1, s2\n",
			Output: []call{
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					reg(17), reg(18), reg(8), num(0), num(0x21),
				}},
			},
		},
		{
			Name:  "Separators Are Optional",
			Input: "addu t0 s1 s2\n",
			Output: []call{
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					reg(17), reg(18), reg(8), num(0), num(0x21),
				}},
			},
		},
		{
			Name:  "Shift Amount",
			Input: "sll t0, t1, 4\n",
			Output: []call{
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					num(0), reg(9), reg(8), plain(4), num(0),
				}},
			},
		},
		{
			Name:  "Immediate Shape",
			Input: "addiu t0, s1, 4\n",
			Output: []call{
				{Method: "immediate", Op: 0x09, Args: []assembler.Operand{
					reg(17), reg(8), signed(4),
				}},
			},
		},
		{
			Name:  "Negated Immediate",
			Input: "subi t0, t1, 4\n",
			Output: []call{
				{Method: "immediate", Op: 0x08, Args: []assembler.Operand{
					reg(9), reg(8), negated(4),
				}},
			},
		},
		{
			Name:  "Jump Shape",
			Input: "j main\nmain:\n",
			Output: []call{
				{Method: "jump", Op: 0x02, Args: []assembler.Operand{
					assembler.LabelOperand(assembler.TAG_INDEX, "main"),
				}},
				{Method: "label", Name: "main"},
			},
		},
		{
			Name:  "Branch Label",
			Input: "beq s0, s1, done\ndone:\n",
			Output: []call{
				{Method: "immediate", Op: 0x04, Args: []assembler.Operand{
					reg(16), reg(17), branch("done"),
				}},
				{Method: "label", Name: "done"},
			},
		},
		{
			// A literal branch operand is a ready offset, not a target.
			Name:  "Branch Literal",
			Input: "beq zero, zero, 4\n",
			Output: []call{
				{Method: "immediate", Op: 0x04, Args: []assembler.Operand{
					reg(0), reg(0), plain(4),
				}},
			},
		},
		{
			Name:  "System Register",
			Input: "mfc0 t0, sr\n",
			Output: []call{
				{Method: "register", Op: 0x10, Args: []assembler.Operand{
					num(0), reg(8), reg(12), num(0), num(0),
				}},
			},
		},
		{
			Name:  "Floating Point",
			Input: "add.s f0, f2, f4\n",
			Output: []call{
				{Method: "register", Op: 0x11, Args: []assembler.Operand{
					num(0x10), reg(4), reg(2), reg(0), num(0),
				}},
			},
		},
		{
			Name:  "No Operands",
			Input: "syscall\n",
			Output: []call{
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					num(0), num(0), num(0), num(0), num(0x0C),
				}},
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Wrong Register Class",
			Input: "addu t0, f1, s2\n",
			Error: &assembler.RegisterClassError{},
		},
		{
			Name:  "Missing Operand",
			Input: "addu t0, s1\n",
			Error: &assembler.ExpectedError{},
		},
		{
			Name:  "Trailing Operand",
			Input: "addu t0, s1, s2 s3\n",
			Error: &assembler.ExpectedError{},
		},
		{
			Name:  "Label Where Forbidden",
			Input: "andi t0, t1, mask\nmask:\n",
			Error: &assembler.LabelNotAllowedError{},
		},
		{
			Name:  "Stray Number",
			Input: "42\n",
			Error: &assembler.UnexpectedTokenError{},
		},
		{
			Name:  "Stray String",
			Input: "\"text\"\n",
			Error: &assembler.UnexpectedTokenError{},
		},
	})
}

func TestLoadStore(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "Deref Only",
			Input: "lw t0, (sp)\n",
			Output: []call{
				{Method: "immediate", Op: 0x23, Args: []assembler.Operand{
					reg(29), reg(8), num(0),
				}},
			},
		},
		{
			Name:  "Offset And Deref",
			Input: "lw t0, 4(sp)\n",
			Output: []call{
				{Method: "immediate", Op: 0x23, Args: []assembler.Operand{
					reg(29), reg(8), signed(4),
				}},
			},
		},
		{
			Name:  "Negative Offset",
			Input: "lw t0, -4(sp)\n",
			Output: []call{
				{Method: "immediate", Op: 0x23, Args: []assembler.Operand{
					reg(29), reg(8), signed(-4),
				}},
			},
		},
		{
			// A small literal address needs no synthesis; the base is the
			// zero register.
			Name:  "Short Address",
			Input: "lw t0, 0x1F00\n",
			Output: []call{
				{Method: "immediate", Op: 0x23, Args: []assembler.Operand{
					reg(0), reg(8), plain(0x1F00),
				}},
			},
		},
		{
			// A full 32-bit address loads its upper half into the scratch
			// register first.
			Name:  "Full Address",
			Input: "lw t0, 0x80001234\n",
			Output: []call{
				{Method: "immediate", Op: 0x0F, Args: []assembler.Operand{
					reg(0), reg(1), num(0x8000),
				}},
				{Method: "immediate", Op: 0x23, Args: []assembler.Operand{
					reg(1), reg(8), num(0x1234),
				}},
			},
		},
		{
			Name:  "Label Address",
			Input: "sw t0, buffer\nbuffer:\n",
			Output: []call{
				{Method: "immediate", Op: 0x0F, Args: []assembler.Operand{
					reg(0), reg(1),
					assembler.LabelOperand(assembler.TAG_UPPER, "buffer"),
				}},
				{Method: "immediate", Op: 0x2B, Args: []assembler.Operand{
					reg(1), reg(8),
					assembler.LabelOperand(assembler.TAG_LOWER, "buffer"),
				}},
				{Method: "label", Name: "buffer"},
			},
		},
		{
			Name:  "Label Address With Index",
			Input: "lw t0, buffer, t1\nbuffer:\n",
			Output: []call{
				{Method: "immediate", Op: 0x0F, Args: []assembler.Operand{
					reg(0), reg(1),
					assembler.LabelOperand(assembler.TAG_UPPER, "buffer"),
				}},
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					reg(1), reg(9), reg(1), num(0), num(0x21),
				}},
				{Method: "immediate", Op: 0x23, Args: []assembler.Operand{
					reg(1), reg(8),
					assembler.LabelOperand(assembler.TAG_LOWER, "buffer"),
				}},
				{Method: "label", Name: "buffer"},
			},
		},
		{
			// Coprocessor loads transfer to an FPR; addressing is unchanged.
			Name:  "Float Transfer",
			Input: "lwc1 f4, 8(sp)\n",
			Output: []call{
				{Method: "immediate", Op: 0x31, Args: []assembler.Operand{
					reg(29), reg(4), signed(8),
				}},
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Bare Register Address",
			Input: "lw t0, s1\n",
			Error: &assembler.ExpectedError{},
		},
		{
			Name:  "Float Register In Integer Load",
			Input: "lw f0, (sp)\n",
			Error: &assembler.RegisterClassError{},
		},
		{
			Name:  "Integer Register In Float Load",
			Input: "lwc1 t0, (sp)\n",
			Error: &assembler.RegisterClassError{},
		},
	})
}

func TestOverrides(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "Nop",
			Input: "nop\n",
			Output: []call{
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					reg(0), reg(0), reg(0), num(0), num(0),
				}},
			},
		},
		{
			Name:  "Move",
			Input: "move t0, s1\n",
			Output: []call{
				{Method: "register", Op: 0x00, Args: []assembler.Operand{
					reg(17), reg(0), reg(8), num(0), num(0x21),
				}},
			},
		},
		{
			Name:  "Load Small Immediate",
			Input: "li t0, -1\n",
			Output: []call{
				{Method: "immediate", Op: 0x09, Args: []assembler.Operand{
					reg(0), reg(8), signed(-1),
				}},
			},
		},
		{
			Name:  "Load Halfword Immediate",
			Input: "li t0, 0xFFFF\n",
			Output: []call{
				{Method: "immediate", Op: 0x0D, Args: []assembler.Operand{
					reg(0), reg(8), plain(0xFFFF),
				}},
			},
		},
		{
			Name:  "Load Full Immediate",
			Input: "li t0, 0x12345678\n",
			Output: []call{
				{Method: "immediate", Op: 0x0F, Args: []assembler.Operand{
					reg(0), reg(8), num(0x1234),
				}},
				{Method: "immediate", Op: 0x0D, Args: []assembler.Operand{
					reg(8), reg(8), num(0x5678),
				}},
			},
		},
		{
			Name:  "Branch Always",
			Input: "loop:\nb loop\n",
			Output: []call{
				{Method: "label", Name: "loop"},
				{Method: "immediate", Op: 0x04, Args: []assembler.Operand{
					reg(0), reg(0), branch("loop"),
				}},
			},
		},
	})

	testFail(t, []failCase{
		{
			Name:  "Li Label",
			Input: "li t0, main\nmain:\n",
			Error: &assembler.LabelNotAllowedError{},
		},
		{
			Name:  "Move Trailing Operand",
			Input: "move t0, s1, s2\n",
			Error: &assembler.ExpectedError{},
		},
	})

	// A registered routine replaces the built-in handling outright.
	t.Run("Custom", func(t *testing.T) {
		rec := &recorder{}
		parser := assembler.New(rec)

		parser.RegisterOverride("nop", func(p *assembler.Parser, mn token.Token) error {
			err := p.Emit().AddJump(
				mn.File, mn.Line, 0x02, assembler.Const(0),
			)

			if err != nil {
				return err
			}

			return p.ExpectEndOfLine()
		})

		lex := lexer.New("test.s", strings.NewReader("nop\n"))
		require.NoError(t, parser.Assemble(lex))

		require.Equal(t, []call{
			{Method: "jump", Op: 0x02, Args: []assembler.Operand{num(0)}},
		}, rec.calls)
	})
}

// sliceSource feeds a pre-built token buffer, for streams the lexer would
// never produce.
type sliceSource struct {
	tokens []token.Token
	pos    int
}

func (s *sliceSource) Next() (token.Token, error) {
	tok := s.tokens[s.pos]

	if s.pos+1 < len(s.tokens) {
		s.pos++
	}

	return tok, nil
}

// A token claiming to be an instruction without a table entry is a defect in
// the assembler, not in the source program.
func TestUnknownMnemonicIsInternal(t *testing.T) {
	src := &sliceSource{tokens: []token.Token{
		{Kind: token.INSTRUCTION, Text: "bogus", File: "test.s", Line: 1},
		{Kind: token.EOF, Num: 1, File: "test.s", Line: 1},
	}}

	err := assembler.New(&recorder{}).Assemble(src)
	require.Error(t, err)
	require.IsType(t, &assembler.InternalError{}, err)
	require.EqualError(t, err, "Internal Error: no handler for instruction 'bogus'")
}

// Positions survive into diagnostics in the <file>:<line> form.
func TestDiagnosticPosition(t *testing.T) {
	_, err := parse("nop\naddu t0, s1\n")
	require.Error(t, err)
	require.EqualError(t, err, "test.s:2: Error: expected register")

	diag, ok := err.(assembler.Diagnostic)
	require.True(t, ok)

	file, line := diag.Position()
	require.Equal(t, "test.s", file)
	require.Equal(t, 2, line)
}
