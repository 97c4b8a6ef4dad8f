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
package source

import (
	"fmt"
	"os"
)

// File is a named piece of source text, typically read from disk.
type File struct {
	filename string
	// Contents held as runes so that spans index characters, not bytes.
	contents []rune
}

// NewSourceFile constructs a source file from its raw bytes.
func NewSourceFile(filename string, bytes []byte) *File {
	return &File{filename, []rune(string(bytes))}
}

// ReadFile reads a single source file from disk.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	//
	if err != nil {
		return nil, err
	}
	//
	return NewSourceFile(filename, bytes), nil
}

// Filename returns the name of this source file.
func (s *File) Filename() string {
	return s.filename
}

// Contents returns the characters of this source file.
func (s *File) Contents() []rune {
	return s.contents
}

// Text returns the characters covered by a given span of this file.
func (s *File) Text(span Span) string {
	return string(s.contents[span.start:span.end])
}

// SyntaxError constructs a syntax error over a given span of this file.
func (s *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{s, span, msg}
}

// FindFirstEnclosingLine determines the line of this file containing the
// start of a given span.  A span starting beyond the end of the file is
// attributed to the last physical line.
func (s *File) FindFirstEnclosingLine(span Span) Line {
	var (
		num   = 1
		start = 0
	)
	//
	for i := 0; i < len(s.contents) && i < span.start; i++ {
		if s.contents[i] == '\n' {
			num++
			start = i + 1
		}
	}
	//
	end := start
	//
	for end < len(s.contents) && s.contents[end] != '\n' {
		end++
	}
	//
	return Line{s.contents, Span{start, end}, num}
}

// ============================================================================
// Line
// ============================================================================

// Line identifies a single physical line of a source file.
type Line struct {
	text []rune
	span Span
	// Line number, counting from 1.
	number int
}

func (p *Line) String() string {
	return string(p.text[p.span.start:p.span.end])
}

// Number returns the line number, counting from 1.
func (p *Line) Number() int {
	return p.number
}

// Start returns the index of the first character of this line in the file.
func (p *Line) Start() int {
	return p.span.start
}

// Length returns the number of characters in this line, excluding the
// terminator.
func (p *Line) Length() int {
	return p.span.Length()
}

// ============================================================================
// Syntax Errors
// ============================================================================

// SyntaxError is an error which retains the span of the source file where it
// arose, so that the offending text can be highlighted.
type SyntaxError struct {
	srcfile *File
	span    Span
	msg     string
}

// SourceFile returns the file this error was reported against.
func (p *SyntaxError) SourceFile() *File {
	return p.srcfile
}

// Span returns the offending span of text.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	line := p.FirstEnclosingLine()
	col := 1 + p.span.start - line.Start()
	//
	return fmt.Sprintf("%s:%d:%d: %s", p.srcfile.filename, line.Number(), col, p.msg)
}

// FirstEnclosingLine returns the line containing the start of this error.
func (p *SyntaxError) FirstEnclosingLine() Line {
	return p.srcfile.FindFirstEnclosingLine(p.span)
}
