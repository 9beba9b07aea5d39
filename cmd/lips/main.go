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

package main

import (
	"encoding/gob"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AcamTech/lips/pkg/assembler"
	"github.com/AcamTech/lips/pkg/emitter"
	"github.com/AcamTech/lips/pkg/lexer"
)

var outvar string
var symvar bool

var rootCmd = &cobra.Command{
	Use:   "lips [flags] sourcefile",
	Short: "lips assembles MIPS source into a raw binary image",
	Long: `lips is a MIPS assembler for embedded and console targets. It reads
one source file (or standard input when piped), resolves macro constants
and anonymous relative labels, and writes the raw big-endian machine code.
Within the source file, .inc directives may pull in further files relative
to its directory.`,

	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	rootCmd.Flags().StringVarP(
		&outvar, "out", "o", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
	rootCmd.Flags().BoolVar(
		&symvar, "sym", false,
		"Specifies whether to write the label table as a gob-encoded "+
			"symbol file next to the output, with extension '.sym'",
	)
}

func run(cmd *cobra.Command, args []string) error {
	var lex *lexer.Lexer

	if stat, _ := os.Stdin.Stat(); stat.Mode()&os.ModeCharDevice == 0 && len(args) == 0 {
		lex = lexer.New("<stdin>", os.Stdin)

		if outvar == "" {
			outvar = "out.bin"
		}
	} else {
		if len(args) != 1 {
			return cmd.Usage()
		}

		var err error

		if lex, err = lexer.Open(args[0]); err != nil {
			return err
		}

		if outvar == "" {
			filename := filepath.Base(args[0])
			outvar = strings.ReplaceAll(
				filename, filepath.Ext(filename), ".bin",
			)
		}
	}

	binary := emitter.New()

	if err := assembler.New(binary).Assemble(lex); err != nil {
		return err
	}

	image, err := binary.Dump()

	if err != nil {
		return err
	}

	if err := os.WriteFile(outvar, image, 0666); err != nil {
		return err
	}

	if symvar {
		filename := filepath.Dir(outvar) + "/" + strings.ReplaceAll(
			filepath.Base(outvar), filepath.Ext(outvar), ".sym",
		)

		file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)

		if err != nil {
			return err
		}

		defer file.Close()

		if err := gob.NewEncoder(file).Encode(binary.Labels()); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
