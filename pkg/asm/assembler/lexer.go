// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package assembler

import (
	"slices"

	"github.com/consensys/go-cvm/pkg/util/source"
	"github.com/consensys/go-cvm/pkg/util/source/lex"
)

// END_OF signals "end of file"
const END_OF uint = 0

// WHITESPACE signals spaces or tabs
const WHITESPACE uint = 1

// NEWLINE signals the end of a line
const NEWLINE uint = 2

// COMMENT signals "// ..." or "; ..." upto the end of the line
const COMMENT uint = 3

// COLON signals ":"
const COLON uint = 4

// NUMBER signals an integer literal, such as "-12" or "0x1F"
const NUMBER uint = 10

// CHAR signals a quoted character literal, such as 'a' or '\n'
const CHAR uint = 11

// STRING signals a quoted string literal, such as "hello\n"
const STRING uint = 12

// IDENTIFIER signals either a mnemonic or a label
const IDENTIFIER uint = 20

var whitespace = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'), lex.Unit('\r')))

var (
	decimal = lex.Many(lex.Within('0', '9'))
	hex     = lex.Sequence(lex.Or(lex.Unit('0', 'x'), lex.Unit('0', 'X')),
		lex.Many(lex.Or(lex.Within('0', '9'), lex.Within('a', 'f'), lex.Within('A', 'F'))))
	unsigned = lex.Or(hex, decimal)
	number   = lex.Or(lex.Sequence(lex.Unit('-'), unsigned), unsigned)
)

var identifierStart = lex.Or(
	lex.Unit('_'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z'))

var identifierRest = lex.Many(lex.Or(
	lex.Unit('_'),
	lex.Within('0', '9'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z')))

var identifier = lex.And(identifierStart, identifierRest)

var comment = lex.Or(
	lex.And(lex.Unit('/', '/'), lex.Until('\n')),
	lex.And(lex.Unit(';'), lex.Until('\n')))

var rules = []lex.LexRule[rune]{
	lex.Rule(comment, COMMENT),
	lex.Rule(lex.Unit('\n'), NEWLINE),
	lex.Rule(lex.Unit(':'), COLON),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(number, NUMBER),
	lex.Rule(lex.Quoted('\''), CHAR),
	lex.Rule(lex.Quoted('"'), STRING),
	lex.Rule(identifier, IDENTIFIER),
	lex.Rule(lex.Eof[rune](), END_OF),
}

// Lex a given source file into a sequence of tokens, with whitespace and
// comments removed.  The final token is always END_OF.
func Lex(srcfile *source.File) ([]lex.Token, []source.SyntaxError) {
	var (
		lexer  = lex.NewLexer(srcfile.Contents(), rules...)
		tokens = lexer.Collect()
	)
	//
	if lexer.Remaining() != 0 {
		start := int(lexer.Index())
		end := start + 1
		//
		return nil, []source.SyntaxError{*srcfile.SyntaxError(source.NewSpan(start, end), "unknown text encountered")}
	}
	//
	tokens = slices.DeleteFunc(tokens, func(t lex.Token) bool {
		return t.Kind == WHITESPACE || t.Kind == COMMENT
	})
	//
	return tokens, nil
}
