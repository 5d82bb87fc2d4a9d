/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// Package testutil has JSON helpers for tests of things that match
// sequences of JSON values.
package testutil

import (
	"encoding/json"
	"fmt"
	"log"
)

// JS renders its argument as JSON or as a string indicating an error.
func JS(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		log.Printf("warning: testutil.JS error %s for %#v", err, x)
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// Dwimjs, when given a string or bytes, parses that data as JSON.
// When given anything else, just returns what's given.  A string
// that isn't JSON is returned as is.
//
// See https://en.wikipedia.org/wiki/DWIM.
func Dwimjs(x interface{}) interface{} {
	switch vv := x.(type) {
	case []byte:
		return Dwimjs(string(vv))
	case string:
		var v interface{}
		if err := json.Unmarshal([]byte(vv), &v); err != nil {
			return vv
		}
		return v
	default:
		return x
	}
}

// Seq parses a JSON array of symbols.  It panics on bad JSON.
func Seq(js string) []interface{} {
	var seq []interface{}
	if err := json.Unmarshal([]byte(js), &seq); err != nil {
		panic(fmt.Errorf("bad sequence %s: %w", js, err))
	}
	return seq
}

// Seqs parses a JSON array of sequences.  It panics on bad JSON.
func Seqs(js string) [][]interface{} {
	var seqs [][]interface{}
	if err := json.Unmarshal([]byte(js), &seqs); err != nil {
		panic(fmt.Errorf("bad sequences %s: %w", js, err))
	}
	return seqs
}
