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

package values

import (
	"errors"
	"strings"
)

// Matcher matches structural patterns against JSON-like values.
//
// A pattern is a JSON-like value that can contain variables:
// strings starting with '?'.  A variable matches anything, but the
// same variable must match equal values everywhere in one symbol.
// The variable "?" is anonymous and binds nothing.  A map pattern
// matches any map with at least the pattern's properties.  An array
// pattern is a set: each element must match a distinct element of
// the value, and at most one variable in the array matches one
// leftover element.  A map value (or array element) variable that
// starts with "??" is optional.
type Matcher struct {
	// AllowPropertyVariables enables a variable as the only key of
	// a map pattern.  That pattern matches when some property
	// matches.
	AllowPropertyVariables bool

	// Inequalities enables numeric inequality variables.
	//
	// Given a binding for "?<n", the variable "?<n" matches a
	// number X only when X < the bound value, and then "?n" is
	// bound to X.  The operators are "<", "<=", ">", ">=", and
	// "!=".
	Inequalities bool
}

// DefaultMatcher is the Matcher that Matches uses.
var DefaultMatcher = &Matcher{
	AllowPropertyVariables: true,
	Inequalities:           true,
}

// Bindings is a map from variables to their values.
type Bindings map[string]interface{}

// Copy makes a shallow copy.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for p, v := range bs {
		acc[p] = v
	}
	return acc
}

// IsVariable reports whether the string is a pattern variable.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

func isOptional(x interface{}) bool {
	s, is := x.(string)
	return is && strings.HasPrefix(s, "??")
}

// UnknownPatternType is an error that includes the thing that's
// causing the trouble.
type UnknownPatternType struct {
	Pattern interface{}
}

func (e *UnknownPatternType) Error() string {
	return "unknown pattern type"
}

// Match returns every way to extend the given bindings so that the
// pattern matches x.  The given bindings are not modified.
func (m *Matcher) Match(pattern, x interface{}, bs Bindings) ([]Bindings, error) {
	if bs == nil {
		bs = make(Bindings)
	}
	return m.match(Normalize(pattern), Normalize(x), bs.Copy())
}

// Matches reports whether the pattern matches x at all.
func (m *Matcher) Matches(pattern, x interface{}) (bool, error) {
	bss, err := m.Match(pattern, x, nil)
	return 0 < len(bss), err
}

// Matches uses the DefaultMatcher.
func Matches(pattern, x interface{}) (bool, error) {
	return DefaultMatcher.Matches(pattern, x)
}

// match can modify bs.
func (m *Matcher) match(p, x interface{}, bs Bindings) ([]Bindings, error) {
	switch vv := p.(type) {
	case nil:
		if x == nil {
			return []Bindings{bs}, nil
		}
		return nil, nil

	case bool, float64:
		if p == x {
			return []Bindings{bs}, nil
		}
		return nil, nil

	case string:
		if !IsVariable(vv) {
			if s, is := x.(string); is && s == vv {
				return []Bindings{bs}, nil
			}
			return nil, nil
		}
		if vv == "?" {
			return []Bindings{bs}, nil
		}
		if using, bss := m.inequal(x, bs, vv); using {
			return bss, nil
		}
		if bound, have := bs[vv]; have {
			return m.match(Normalize(bound), x, bs)
		}
		bs[vv] = x
		return []Bindings{bs}, nil

	case map[string]interface{}:
		fm, is := x.(map[string]interface{})
		if !is {
			return nil, nil
		}
		return m.matchMap(vv, fm, bs)

	case []interface{}:
		xs, is := x.([]interface{})
		if !is {
			return nil, nil
		}
		return m.matchArray(vv, xs, bs)
	}

	return nil, &UnknownPatternType{p}
}

func (m *Matcher) matchMap(pm, fm map[string]interface{}, bs Bindings) ([]Bindings, error) {
	if len(pm) == 1 {
		for k, v := range pm {
			if IsVariable(k) {
				if !m.AllowPropertyVariables {
					return nil, errors.New(`can't have a variable as a key ("` + k + `")`)
				}
				var acc []Bindings
				for fk, fv := range fm {
					keyed, err := m.match(k, fk, bs.Copy())
					if err != nil {
						return nil, err
					}
					for _, kbs := range keyed {
						ext, err := m.match(v, fv, kbs)
						if err != nil {
							return nil, err
						}
						acc = append(acc, ext...)
					}
				}
				return acc, nil
			}
		}
	}

	bss := []Bindings{bs}
	for k, v := range pm {
		if IsVariable(k) {
			return nil, errors.New(`can't have a variable as a key ("` + k + `") with other keys`)
		}
		fv, have := fm[k]
		if !have {
			if isOptional(v) {
				continue
			}
			return nil, nil
		}
		var acc []Bindings
		for _, b := range bss {
			ext, err := m.match(v, fv, b.Copy())
			if err != nil {
				return nil, err
			}
			acc = append(acc, ext...)
		}
		if len(acc) == 0 {
			return nil, nil
		}
		bss = acc
	}
	return bss, nil
}

func (m *Matcher) matchArray(ps, xs []interface{}, bs Bindings) ([]Bindings, error) {
	var (
		v    string
		rest = make([]interface{}, 0, len(ps))
	)
	for _, p := range ps {
		if s, is := p.(string); is && IsVariable(s) {
			if v != "" {
				return nil, errors.New("multiple variables not supported here")
			}
			v = s
			continue
		}
		rest = append(rest, p)
	}

	var (
		acc  []Bindings
		used = make([]bool, len(xs))
		try  func(i int, bs Bindings) error
	)

	try = func(i int, bs Bindings) error {
		if i == len(rest) {
			if v == "" {
				acc = append(acc, bs)
				return nil
			}
			found := false
			for j, x := range xs {
				if used[j] {
					continue
				}
				ext, err := m.match(v, x, bs.Copy())
				if err != nil {
					return err
				}
				found = found || 0 < len(ext)
				acc = append(acc, ext...)
			}
			if !found && isOptional(v) {
				acc = append(acc, bs)
			}
			return nil
		}
		for j, x := range xs {
			if used[j] {
				continue
			}
			ext, err := m.match(rest[i], x, bs.Copy())
			if err != nil {
				return err
			}
			for _, b := range ext {
				used[j] = true
				err = try(i+1, b)
				used[j] = false
				if err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := try(0, bs); err != nil {
		return nil, err
	}
	return acc, nil
}

// inequal handles a variable like "?<n".  The first result is false
// when the variable isn't being used as an inequality.
func (m *Matcher) inequal(x interface{}, bs Bindings, v string) (bool, []Bindings) {
	if !m.Inequalities || len(v) < 3 {
		return false, nil
	}
	bound, have := bs[v]
	if !have {
		return false, nil
	}
	b, is := Normalize(bound).(float64)
	if !is {
		return false, nil
	}
	a, is := x.(float64)
	if !is {
		return false, nil
	}

	var op, plain string
	for _, o := range []string{"<=", ">=", "!=", ">", "<"} {
		if strings.HasPrefix(v[1:], o) {
			op, plain = o, "?"+v[1+len(o):]
			break
		}
	}
	if op == "" {
		return false, nil
	}

	var ok bool
	switch op {
	case "<":
		ok = a < b
	case "<=":
		ok = a <= b
	case ">":
		ok = a > b
	case ">=":
		ok = a >= b
	case "!=":
		ok = a != b
	}
	if !ok {
		return true, nil
	}

	if given, have := bs[plain]; have {
		if c, is := Normalize(given).(float64); !is || c != a {
			return true, nil
		}
		return true, []Bindings{bs}
	}
	bs[plain] = a
	return true, []Bindings{bs}
}
