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
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/consensys/go-cvm/pkg/util/source"
	"github.com/consensys/go-cvm/pkg/util/source/lex"
	"github.com/consensys/go-cvm/pkg/vm/opcode"
)

// Parse a given source file into a sequence of instructions along with the
// labels declared between them.  Labels are bound to the address of the
// instruction which follows them, but are not yet resolved within the
// instructions themselves.
func Parse(srcfile *source.File) ([]Instruction, Environment, []source.SyntaxError) {
	return NewParser(srcfile).Parse()
}

// ============================================================================
// Parser
// ============================================================================

// Parser is a line-oriented parser for assembly language.  Each line holds
// zero or more label declarations, followed by at most one instruction.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	// Position within the tokens
	index int
}

// NewParser constructs a new parser for a given source file.
func NewParser(srcfile *source.File) *Parser {
	return &Parser{srcfile, nil, 0}
}

// Parse the source file into a sequence of instructions, or some number of
// syntax errors.
func (p *Parser) Parse() ([]Instruction, Environment, []source.SyntaxError) {
	var (
		env     Environment
		code    []Instruction
		address uint
		errs    []source.SyntaxError
	)
	//
	if p.tokens, errs = Lex(p.srcfile); len(errs) > 0 {
		return nil, env, errs
	}
	//
	for p.lookahead().Kind != END_OF {
		// Labels
		for p.follows(IDENTIFIER, COLON) {
			if errs = p.parseLabel(address, &env); len(errs) > 0 {
				return nil, env, errs
			}
		}
		// Instruction (if present)
		if p.lookahead().Kind == IDENTIFIER {
			insn, errs := p.parseInstruction()
			//
			if len(errs) > 0 {
				return nil, env, errs
			}
			//
			code = append(code, insn)
			address += insn.Width()
		}
		// End of line
		if !p.match(NEWLINE) && p.lookahead().Kind != END_OF {
			return nil, env, p.syntaxErrors(p.lookahead(), "unexpected token")
		}
	}
	//
	return code, env, nil
}

func (p *Parser) parseLabel(address uint, env *Environment) []source.SyntaxError {
	// Observe, following cannot fail
	tok, _ := p.expect(IDENTIFIER)
	// Likewise, this cannot fail
	p.expect(COLON)
	//
	lab := p.string(tok)
	//
	if env.IsBoundLabel(lab) {
		return p.syntaxErrors(tok, "label already declared")
	}
	//
	env.DeclareLabel(lab, address)
	//
	return nil
}

func (p *Parser) parseInstruction() (Instruction, []source.SyntaxError) {
	var (
		tok     = p.lookahead()
		insn    Instruction
		errs    []source.SyntaxError
		op, ok  = opcode.Parse(strings.ToUpper(p.string(tok)))
		operand lex.Token
	)
	//
	if !ok {
		return insn, p.syntaxErrors(tok, "unknown instruction")
	}
	//
	p.index++
	insn.Opcode = op
	//
	switch op.Class() {
	case opcode.NONE:
		operand = tok
	case opcode.BYTE:
		operand, insn.Operand, errs = p.parseNumber(math.MinInt8, math.MaxUint8)
	case opcode.INT:
		if IsBranch(op) && p.lookahead().Kind == IDENTIFIER {
			operand = p.lookahead()
			insn.Target = p.string(operand)
			p.index++
		} else {
			operand, insn.Operand, errs = p.parseNumber(math.MinInt32, math.MaxInt32)
		}
	case opcode.CHAR_CONST:
		if p.lookahead().Kind == NUMBER {
			operand, insn.Operand, errs = p.parseNumber(0, math.MaxUint16)
		} else {
			operand, insn.Operand, errs = p.parseChar()
		}
	case opcode.STRING_CONST:
		operand, insn.Text, errs = p.parseString()
	}
	//
	insn.Span = tok.Span.Join(operand.Span)
	//
	return insn, errs
}

// Parse an integer literal, ensuring it lies within a given (inclusive) range.
func (p *Parser) parseNumber(lowest int64, highest int64) (lex.Token, int32, []source.SyntaxError) {
	tok, errs := p.expect(NUMBER)
	//
	if len(errs) > 0 {
		return tok, 0, errs
	}
	//
	n, err := strconv.ParseInt(p.string(tok), 0, 64)
	//
	if err != nil || n < lowest || n > highest {
		return tok, 0, p.syntaxErrors(tok, fmt.Sprintf("integer out of range [%d..%d]", lowest, highest))
	}
	//
	return tok, int32(n), nil
}

func (p *Parser) parseChar() (lex.Token, int32, []source.SyntaxError) {
	tok, errs := p.expect(CHAR)
	//
	if len(errs) > 0 {
		return tok, 0, errs
	}
	//
	str, err := strconv.Unquote(p.string(tok))
	runes := []rune(str)
	//
	if err != nil || len(runes) != 1 {
		return tok, 0, p.syntaxErrors(tok, "invalid character literal")
	} else if runes[0] > math.MaxUint16 {
		return tok, 0, p.syntaxErrors(tok, "character outside basic multilingual plane")
	}
	//
	return tok, runes[0], nil
}

func (p *Parser) parseString() (lex.Token, []uint16, []source.SyntaxError) {
	tok, errs := p.expect(STRING)
	//
	if len(errs) > 0 {
		return tok, nil, errs
	}
	//
	str, err := strconv.Unquote(p.string(tok))
	//
	if err != nil {
		return tok, nil, p.syntaxErrors(tok, "invalid string literal")
	}
	//
	var chars = make([]uint16, 0, len(str))
	//
	for _, r := range str {
		if r > math.MaxUint16 {
			return tok, nil, p.syntaxErrors(tok, "character outside basic multilingual plane")
		}
		//
		chars = append(chars, uint16(r))
	}
	//
	return tok, chars, nil
}

// Get the text representing the given token as a string.
func (p *Parser) string(token lex.Token) string {
	return p.srcfile.Text(token.Span)
}

// Lookahead returns the next token.  This must exist because EOF is always
// appended at the end of the token stream.
func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

// Expect returns an error if the next token is not what was expected.
func (p *Parser) expect(kind uint) (lex.Token, []source.SyntaxError) {
	lookahead := p.lookahead()
	//
	if lookahead.Kind != kind {
		return lookahead, p.syntaxErrors(lookahead, fmt.Sprintf("expected %s", describe(kind)))
	}
	//
	p.index++
	//
	return lookahead, nil
}

// Match attempts to match the given token.
func (p *Parser) match(kind uint) bool {
	if p.lookahead().Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

// Follows checks whether the next tokens are of the given kinds.
func (p *Parser) follows(kinds ...uint) bool {
	for i, kind := range kinds {
		n := i + p.index
		if n >= len(p.tokens) || p.tokens[n].Kind != kind {
			return false
		}
	}
	//
	return true
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcfile.SyntaxError(token.Span, msg)}
}

func describe(kind uint) string {
	switch kind {
	case NUMBER:
		return "integer"
	case CHAR:
		return "character"
	case STRING:
		return "string"
	case IDENTIFIER:
		return "identifier"
	case COLON:
		return "\":\""
	default:
		return "end of line"
	}
}
