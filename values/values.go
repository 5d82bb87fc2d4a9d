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

// Package values provides predicates over JSON-like symbols.
//
// A JSON-like value is nil, a bool, a float64, a string, a
// []interface{}, or a map[string]interface{} of JSON-like values.
// Normalize turns the other numeric types (and the
// map[interface{}]interface{} that some YAML parsers like) into that
// form.
package values

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Normalize makes numbers float64s and map keys strings, recursively.
func Normalize(x interface{}) interface{} {
	switch vv := x.(type) {
	case float64:
		return vv
	case float32:
		return float64(vv)
	case int:
		return float64(vv)
	case int8:
		return float64(vv)
	case int16:
		return float64(vv)
	case int32:
		return float64(vv)
	case int64:
		return float64(vv)
	case uint:
		return float64(vv)
	case uint8:
		return float64(vv)
	case uint16:
		return float64(vv)
	case uint32:
		return float64(vv)
	case uint64:
		return float64(vv)
	case json.Number:
		if f, err := vv.Float64(); err == nil {
			return f
		}
		return string(vv)
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = Normalize(y)
		}
		return acc
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			acc[k] = Normalize(y)
		}
		return acc
	case map[interface{}]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			acc[fmt.Sprint(k)] = Normalize(y)
		}
		return acc
	}
	return x
}

// Canonicalize gives the JSON-like form of x by way of JSON.
func Canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(Normalize(x))
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}

// Key returns the canonical JSON text of x.  Equal values have equal
// keys.
func Key(x interface{}) string {
	js, err := json.Marshal(Normalize(x))
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}

// Equal reports whether two values are the same JSON-like value.
func Equal(x, y interface{}) bool {
	return reflect.DeepEqual(Normalize(x), Normalize(y))
}

// Compare orders two numbers or two strings.  The second result is
// false for anything else.
func Compare(x, y interface{}) (int, bool) {
	switch a := Normalize(x).(type) {
	case float64:
		b, is := Normalize(y).(float64)
		if !is {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case b < a:
			return 1, true
		}
		return 0, true
	case string:
		b, is := y.(string)
		if !is {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case b < a:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// KindOf names the JSON type of x: "null", "bool", "number",
// "string", "array", or "object".  Anything else is "unknown".
func KindOf(x interface{}) string {
	switch Normalize(x).(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return "unknown"
}

// Kinds are the names KindOf can return, other than "unknown".
var Kinds = []string{"null", "bool", "number", "string", "array", "object"}
