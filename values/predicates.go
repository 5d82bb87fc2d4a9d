package values

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Comcast/regular/core"
	"github.com/cloudflare/ahocorasick"
	"github.com/dlclark/regexp2"
	"github.com/gorhill/cronexpr"
)

// Symbol is the symbol type for JSON-like sequences.
type Symbol = interface{}

// Predicate is a predicate over JSON-like symbols.
type Predicate = core.Predicate[Symbol]

func format(x interface{}) string {
	return core.FormatValue(Normalize(x))
}

func formats(xs []interface{}) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = format(x)
	}
	return strings.Join(ss, ", ")
}

// Is accepts symbols equal to v.
func Is(v interface{}) Predicate {
	v = Normalize(v)
	return Predicate{
		Name: format(v),
		Test: func(x Symbol) bool { return Equal(v, x) },
	}
}

// OneOf accepts symbols equal to any of the values.
func OneOf(vs ...interface{}) Predicate {
	keys := make([]string, len(vs))
	for i, v := range vs {
		keys[i] = Key(v)
	}
	return Predicate{
		Name: "[" + formats(vs) + "]",
		Test: func(x Symbol) bool { return slices.Contains(keys, Key(x)) },
	}
}

// Between accepts numbers or strings in the closed range [lo, hi].
func Between(lo, hi interface{}) Predicate {
	return Predicate{
		Name: "[" + format(lo) + ".." + format(hi) + "]",
		Test: func(x Symbol) bool {
			a, ok := Compare(lo, x)
			if !ok || 0 < a {
				return false
			}
			b, ok := Compare(x, hi)
			return ok && b <= 0
		},
	}
}

// Kind accepts symbols of the given JSON type (see KindOf).
func Kind(kind string) (Predicate, error) {
	if !slices.Contains(Kinds, kind) {
		return Predicate{}, fmt.Errorf("unknown kind %q", kind)
	}
	return Predicate{
		Name: "@" + kind,
		Test: func(x Symbol) bool { return KindOf(x) == kind },
	}, nil
}

// RegexpTimeout bounds each regular expression match.
var RegexpTimeout = 100 * time.Millisecond

// Regexp accepts strings that contain a match for the regular
// expression.  The syntax is .NET-style, as implemented by
// github.com/dlclark/regexp2.
func Regexp(pattern string) (Predicate, error) {
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		if re, err = regexp2.Compile(pattern, regexp2.None); err != nil {
			return Predicate{}, err
		}
	}
	re.MatchTimeout = RegexpTimeout
	return Predicate{
		Name: "/" + pattern + "/",
		Test: func(x Symbol) bool {
			s, is := x.(string)
			if !is {
				return false
			}
			matched, err := re.MatchString(s)
			return err == nil && matched
		},
	}, nil
}

// Contains accepts strings that contain any of the words.
func Contains(words ...string) (Predicate, error) {
	if len(words) == 0 {
		return Predicate{}, fmt.Errorf("no words")
	}
	m := ahocorasick.NewStringMatcher(words)
	return Predicate{
		Name: "@contains(" + strings.Join(words, ",") + ")",
		Test: func(x Symbol) bool {
			s, is := x.(string)
			return is && m.Contains([]byte(s))
		},
	}, nil
}

// Cron accepts RFC3339 timestamps (or time.Times) that fall on the
// schedule given by the cron expression, to the second.
func Cron(expr string) (Predicate, error) {
	c, err := cronexpr.Parse(expr)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{
		Name: "@cron(" + expr + ")",
		Test: func(x Symbol) bool {
			var t time.Time
			switch vv := x.(type) {
			case time.Time:
				t = vv
			case string:
				parsed, err := time.Parse(time.RFC3339Nano, vv)
				if err != nil {
					return false
				}
				t = parsed
			default:
				return false
			}
			t = t.Truncate(time.Second)
			return c.Next(t.Add(-time.Second)).Equal(t)
		},
	}, nil
}

// Pattern accepts symbols that the structural pattern matches (see
// Matcher).
func Pattern(pattern interface{}) Predicate {
	pattern = Normalize(pattern)
	return Predicate{
		Name: "@pattern" + Key(pattern),
		Test: func(x Symbol) bool {
			matched, err := DefaultMatcher.Matches(pattern, x)
			return err == nil && matched
		},
	}
}
