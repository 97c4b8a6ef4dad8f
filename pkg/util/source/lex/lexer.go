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
package lex

import "github.com/consensys/go-cvm/pkg/util/source"

// Token is a tagged span of the input.
type Token struct {
	Kind uint
	Span source.Span
}

// LexRule associates the items matched by a scanner with a given tag.
//
// nolint
type LexRule[T any] struct {
	scanner Scanner[T]
	tag     uint
}

// Rule constructs a lexing rule which tags whatever a given scanner matches.
func Rule[T any](scanner Scanner[T], tag uint) LexRule[T] {
	return LexRule[T]{scanner, tag}
}

// Lexer splits an input sequence into tokens by trying each rule in turn at
// the current position, and taking the first which matches.
type Lexer[T any] struct {
	items []T
	index int
	rules []LexRule[T]
	// Token found by the last scan, but not yet consumed.
	next *Token
}

// NewLexer constructs a lexer over a given input with a given set of rules.
func NewLexer[T any](input []T, rules ...LexRule[T]) *Lexer[T] {
	return &Lexer[T]{input, 0, rules, nil}
}

// Index returns the current position within the input.
func (p *Lexer[T]) Index() uint {
	return uint(p.index)
}

// Remaining returns the number of input items not yet consumed.
func (p *Lexer[T]) Remaining() uint {
	return uint(max(0, len(p.items)-p.index))
}

// HasNext determines whether another token can be matched at the current
// position.
func (p *Lexer[T]) HasNext() bool {
	p.scan()
	return p.next != nil
}

// Next returns the next token and advances past it.  This assumes HasNext
// returned true.
func (p *Lexer[T]) Next() Token {
	tok := *p.next
	p.next = nil
	//
	if p.index == len(p.items) {
		// end-of-file token consumes nothing, so step past it explicitly.
		p.index++
	} else {
		p.index = tok.Span.End()
	}
	//
	return tok
}

// Collect matches all remaining tokens.  If lexing gets stuck, Remaining
// reports how much input was left unmatched.
func (p *Lexer[T]) Collect() []Token {
	var tokens []Token
	//
	for p.HasNext() {
		tokens = append(tokens, p.Next())
	}
	//
	return tokens
}

func (p *Lexer[T]) scan() {
	if p.next != nil || p.index > len(p.items) {
		return
	}
	//
	for _, r := range p.rules {
		if n := r.scanner(p.items[p.index:]); n > 0 {
			end := min(len(p.items), p.index+int(n))
			p.next = &Token{r.tag, source.NewSpan(p.index, end)}
			//
			return
		}
	}
}
