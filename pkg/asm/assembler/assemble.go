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

	"github.com/consensys/go-cvm/pkg/util/source"
)

// Assemble a given source file into an object image, which can be loaded and
// executed directly.
func Assemble(srcfile *source.File) ([]byte, []source.SyntaxError) {
	code, env, errs := Parse(srcfile)
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if errs = Resolve(srcfile, code, env); len(errs) > 0 {
		return nil, errs
	}
	//
	return Encode(code), nil
}

// Resolve each label targeted by a branch or call into a displacement, which
// is relative to the address of the instruction following the branch.
func Resolve(srcfile *source.File, code []Instruction, env Environment) []source.SyntaxError {
	var (
		errs    []source.SyntaxError
		address uint
	)
	//
	for i := range code {
		insn := &code[i]
		next := address + insn.Width()
		//
		if insn.Target != "" {
			if target, ok := env.LookupLabel(insn.Target); ok {
				insn.Operand = int32(int64(target) - int64(next))
			} else {
				msg := fmt.Sprintf("unknown label %s", insn.Target)
				errs = append(errs, *srcfile.SyntaxError(insn.Span, msg))
			}
		}
		//
		address = next
	}
	//
	return errs
}

// Encode a sequence of (resolved) instructions into bytes.
func Encode(code []Instruction) []byte {
	var bytes []byte
	//
	for i := range code {
		bytes = code[i].Encode(bytes)
	}
	//
	return bytes
}
