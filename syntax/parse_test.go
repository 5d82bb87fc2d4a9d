package syntax

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Comcast/regular/core"
	"github.com/Comcast/regular/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	type test struct {
		src    string
		accept [][]interface{}
		reject [][]interface{}
	}

	tests := []test{
		{
			src:    `1 2`,
			accept: [][]interface{}{{1, 2}},
			reject: [][]interface{}{{}, {1}, {2, 1}},
		},
		{
			src:    `"coin" | "push"`,
			accept: [][]interface{}{{"coin"}, {"push"}},
			reject: [][]interface{}{{}, {"coin", "push"}},
		},
		{
			src:    `all "coin" & !("push" all | all "push" "push" all)`,
			accept: [][]interface{}{{"coin"}, {"coin", "push", "coin"}},
			reject: [][]interface{}{{}, {"push", "coin"}, {"coin", "push", "push", "coin"}},
		},
		{
			src:    `[1..3]+`,
			accept: [][]interface{}{{1}, {1, 2.5, 3}},
			reject: [][]interface{}{{}, {4}, {1, "2"}},
		},
		{
			src:    `[1, "a"]*`,
			accept: [][]interface{}{{}, {1, "a", 1}},
			reject: [][]interface{}{{2}},
		},
		{
			src:    `~1`,
			accept: [][]interface{}{{2}, {"1"}},
			reject: [][]interface{}{{}, {1}, {2, 2}},
		},
		{
			src:    `@number @string`,
			accept: [][]interface{}{{1, "a"}},
			reject: [][]interface{}{{"a", 1}},
		},
		{
			src:    `/^a\d/`,
			accept: [][]interface{}{{"a1"}, {"a2b"}},
			reject: [][]interface{}{{"b1"}, {1}},
		},
		{
			src:    `/a\/b/`,
			accept: [][]interface{}{{"xa/b"}},
			reject: [][]interface{}{{"ab"}},
		},
		{
			src:    `1{2}`,
			accept: [][]interface{}{{1, 1}},
			reject: [][]interface{}{{1}, {1, 1, 1}},
		},
		{
			src:    `1{1,}`,
			accept: [][]interface{}{{1}, {1, 1, 1}},
			reject: [][]interface{}{{}},
		},
		{
			src:    `1{1,2}`,
			accept: [][]interface{}{{1}, {1, 1}},
			reject: [][]interface{}{{}, {1, 1, 1}},
		},
		{
			src:    `()`,
			accept: [][]interface{}{{}},
			reject: [][]interface{}{{1}},
		},
		{
			src:    `empty`,
			accept: [][]interface{}{{}},
			reject: [][]interface{}{{1}},
		},
		{
			src:    `. any`,
			accept: [][]interface{}{{1, "x"}},
			reject: [][]interface{}{{}, {1}},
		},
		{
			src:    `some`,
			accept: [][]interface{}{{1}, {1, 2}},
			reject: [][]interface{}{{}},
		},
		{
			src:    `none`,
			reject: [][]interface{}{{}, {1}},
		},
		{
			src:    `all`,
			accept: [][]interface{}{{}, {1}, {1, "x"}},
		},
		{
			src:    `1 ^ [1..2]`,
			accept: [][]interface{}{{2}},
			reject: [][]interface{}{{1}, {3}},
		},
		{
			src:    `!1 2`,
			accept: [][]interface{}{{2}, {2, 2}, {1, 1, 2}},
			reject: [][]interface{}{{1, 2}, {1}},
		},
		{
			src:    "1 # one\n2 # two",
			accept: [][]interface{}{{1, 2}},
		},
		{
			src:    `null true false -1.5`,
			accept: [][]interface{}{{nil, true, false, -1.5}},
			reject: [][]interface{}{{nil, true, true, -1.5}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			e, err := Parse(tc.src)
			require.NoError(t, err)
			a := core.Compile(e)
			for _, seq := range tc.accept {
				assert.True(t, a.Matches(seq), "%v should be accepted by %s", seq, e)
			}
			for _, seq := range tc.reject {
				assert.False(t, a.Matches(seq), "%v should be rejected by %s", seq, e)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		``,
		`1 |`,
		`(1`,
		`[1..2, 3]`,
		`/(/`,
		`1{`,
		`coin`,
		`& 1`,
		`{"a": 1}`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			assert.Error(t, err)
		})
	}
}

func TestRepeatLimits(t *testing.T) {
	for _, src := range []string{
		`.{-2}`,
		`.{-1,}`,
		`.{0,-3}`,
		`.{0,100000}`,
		`.{1001}`,
		`.{5000,}`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			var bad *BadCount
			assert.ErrorAs(t, err, &bad)
		})
	}

	e, err := Parse(`.{1000}`)
	require.NoError(t, err)
	assert.NoError(t, CheckCost(e, 0))
}

func TestCheckCost(t *testing.T) {
	src := `1`
	for i := 2; i <= 25; i++ {
		src += fmt.Sprintf(" ^ %d", i)
	}
	e, err := Parse(src)
	require.NoError(t, err)
	var costly *TooCostly
	assert.ErrorAs(t, CheckCost(e, 0), &costly)

	e, err = Parse(`1 ^ 2 ^ 3`)
	require.NoError(t, err)
	assert.NoError(t, CheckCost(e, 0))

	e, err = Parse(`(.{0,1000}){0,1000}`)
	require.NoError(t, err)
	assert.ErrorAs(t, CheckCost(e, 0), &costly)
}

func TestUnknownName(t *testing.T) {
	_, err := Parse(`1 @tacos`)
	var unknown *UnknownName
	require.True(t, errors.As(err, &unknown), "%v", err)
	assert.Equal(t, "tacos", unknown.Name)
}

func TestResolver(t *testing.T) {
	even := values.Predicate{
		Name: "@even",
		Test: func(x values.Symbol) bool {
			f, is := x.(float64)
			return is && int(f)%2 == 0
		},
	}
	p := &Parser{
		Resolver: Predicates{"even": even},
	}

	e, err := p.Parse(`@even+ @string`)
	require.NoError(t, err)
	a := core.Compile(e)
	assert.True(t, a.Matches([]interface{}{2.0, 4.0, "x"}))
	assert.False(t, a.Matches([]interface{}{3.0, "x"}))

	failing := &Parser{
		Resolver: ResolverFunc(func(name string) (values.Predicate, error) {
			return values.Predicate{}, errors.New("no " + name)
		}),
	}
	_, err = failing.Parse(`@string`)
	assert.ErrorContains(t, err, "no string")
}

func TestRoundTrip(t *testing.T) {
	for _, src := range []string{
		`1 2 | 3`,
		`(1 | 2) 3`,
		`!(1 2)*`,
		`~[1, 2]`,
		`[1..3]`,
		`@string`,
		`"a" "b"`,
		`1 & 2 ^ 3`,
		`1 & (2 ^ 3)`,
		`1*?`,
		`all "coin"`,
		`()`,
		`. some`,
		`none | 2.5`,
		`/a+/`,
		`null true`,
	} {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, src, MustParse(src).String())
		})
	}
}

func TestGrammar(t *testing.T) {
	g := Grammar()
	assert.True(t, strings.Contains(g, "Alt"), g)
}
