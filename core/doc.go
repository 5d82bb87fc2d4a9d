/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package core provides regular expressions over sequences of
// arbitrary symbols.  Symbols are values of any type, and they are
// tested by predicates rather than compared to characters.
//
// The algebra is closed under concatenation, alternation,
// repetition, intersection, complement, and exclusive-or.  An
// Expression is compiled to a nondeterministic Automaton.  Nothing
// is determinized.  Instead, Not turns the operand's graph into a
// complement scope, and the matching engine keeps a set of runs for
// each scope.  A run starts wherever the scope is entered.
//
// The primary type is Expression, and the primary function is
// Compile.  Then call Matches (or Walk, for the details) on the
// resulting Automaton.  An Automaton is immutable and can be used
// by many goroutines at once.
//
// Internal contract violations (for example, combining an Automaton
// with itself) panic with an *InvariantViolation.  There are no
// other errors.
package core
