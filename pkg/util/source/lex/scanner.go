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

import (
	"cmp"
	"slices"
)

// Scanner reports how many items at the start of its input it matches, where
// zero means no match.
type Scanner[T any] func(items []T) uint

// Or matches using the first of the given scanners to succeed.
func Or[T any](scanners ...Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		for _, scanner := range scanners {
			if n := scanner(items); n > 0 {
				return n
			}
		}
		//
		return 0
	}
}

// And succeeds only if every given scanner matches at the same position,
// returning the longest match.
func And[T any](scanners ...Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		var n uint
		//
		for _, scanner := range scanners {
			m := scanner(items)
			//
			if m == 0 {
				return 0
			}
			//
			n = max(n, m)
		}
		//
		return n
	}
}

// Sequence matches each of the given scanners one after another.  Every
// scanner must match at least one item.
func Sequence[T any](scanners ...Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		var n uint
		//
		for _, scanner := range scanners {
			m := scanner(items[n:])
			//
			if m == 0 {
				return 0
			}
			//
			n += m
		}
		//
		return n
	}
}

// Unit matches exactly the given items, in order.
func Unit[T comparable](chars ...T) Scanner[T] {
	return func(items []T) uint {
		if len(items) < len(chars) || !slices.Equal(items[:len(chars)], chars) {
			return 0
		}
		//
		return uint(len(chars))
	}
}

// Within matches any single item in a given (inclusive) range.
func Within[T cmp.Ordered](lowest T, highest T) Scanner[T] {
	return func(items []T) uint {
		if len(items) != 0 && lowest <= items[0] && items[0] <= highest {
			return 1
		}
		//
		return 0
	}
}

// Not matches any single item other than those given.
func Not[T comparable](chars ...T) Scanner[T] {
	return func(items []T) uint {
		if len(items) == 0 || slices.Contains(chars, items[0]) {
			return 0
		}
		//
		return 1
	}
}

// Many matches zero or more repetitions of a given scanner.  Since a zero
// length match signals failure, this only succeeds when there is at least one
// repetition, unless combined with another scanner.
func Many[T any](scanner Scanner[T]) Scanner[T] {
	return func(items []T) uint {
		var index uint
		//
		for index < uint(len(items)) {
			n := scanner(items[index:])
			//
			if n == 0 {
				break
			}
			//
			index += n
		}
		//
		return index
	}
}

// Until matches everything upto (but excluding) a given item, or the end of
// input.
func Until[T comparable](item T) Scanner[T] {
	return func(items []T) uint {
		if i := slices.Index(items, item); i >= 0 {
			return uint(i)
		}
		//
		return uint(len(items))
	}
}

// Eof matches the end of input.  For this to be useful, the match is reported
// as having length one.
func Eof[T any]() Scanner[T] {
	return func(items []T) uint {
		if len(items) == 0 {
			return 1
		}
		//
		return 0
	}
}

// Quoted matches a literal enclosed by a given delimiter, within which a
// backslash escapes the following character.  A literal cannot span lines,
// and an unterminated literal does not match.
func Quoted(delim rune) Scanner[rune] {
	return func(items []rune) uint {
		if len(items) == 0 || items[0] != delim {
			return 0
		}
		//
		for i := 1; i < len(items); i++ {
			switch items[i] {
			case '\\':
				i++
			case '\n':
				return 0
			case delim:
				return uint(i + 1)
			}
		}
		//
		return 0
	}
}
