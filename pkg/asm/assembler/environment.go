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

import "fmt"

// Label is a named position in the code.
type Label struct {
	Name string
	// Address of the instruction following the label.
	Address uint
}

// Environment captures the labels declared during assembly.
type Environment struct {
	labels []Label
}

// DeclareLabel declares a label at a given address.  If a label with the same
// name already exists, this will panic.
func (p *Environment) DeclareLabel(name string, address uint) {
	if p.IsBoundLabel(name) {
		panic(fmt.Sprintf("label %s already declared", name))
	}
	//
	p.labels = append(p.labels, Label{name, address})
}

// IsBoundLabel checks whether a label with the given name has been declared.
func (p *Environment) IsBoundLabel(name string) bool {
	_, ok := p.LookupLabel(name)
	return ok
}

// LookupLabel returns the address of the label with a given name, and whether
// or not it was declared.
func (p *Environment) LookupLabel(name string) (uint, bool) {
	for _, l := range p.labels {
		if l.Name == name {
			return l.Address, true
		}
	}
	//
	return 0, false
}

// Labels returns the declared labels in order of declaration.
func (p *Environment) Labels() []Label {
	return p.labels
}
