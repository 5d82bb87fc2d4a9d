// Package syntax parses the textual form of expressions over
// JSON-like symbols.
//
// The operators, loosest first:
//
//	a | b      either
//	a ^ b      exactly one of
//	a & b      both
//	a b        a then b
//	!a         anything but a
//	a* a+ a?   repetition, optional
//	a{n} a{n,} a{n,m}
//
// The atoms:
//
//	()         the empty sequence
//	. any      one arbitrary symbol
//	all        every sequence
//	none       no sequence
//	some       one or more arbitrary symbols
//	1 "a" true null
//	           one symbol equal to that value
//	[1, "a"]   one symbol equal to one of the values
//	[1..3]     one number (or string) in that inclusive range
//	/re/       one string containing a match for the regexp
//	@name      one symbol satisfying a named predicate
//	~p         one symbol not satisfying the predicate p
//
// A '#' starts a comment that runs to the end of the line.
package syntax

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var lex = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Regexp", Pattern: `/(\\.|[^/\\])*/`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(\.\d+)?([eE][-+]?\d+)?`},
	{Name: "Range", Pattern: `\.\.`},
	{Name: "Named", Pattern: `@[a-zA-Z_][a-zA-Z0-9_.\-]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[!|^&()*+?{},\[\]~.]`},
})

// Alt is the root of the parse tree.
type Alt struct {
	Xors []*Xor `parser:"@@ ( '|' @@ )*"`
}

type Xor struct {
	Ands []*And `parser:"@@ ( '^' @@ )*"`
}

type And struct {
	Seqs []*Seq `parser:"@@ ( '&' @@ )*"`
}

type Seq struct {
	Units []*Unary `parser:"@@+"`
}

type Unary struct {
	Not     *Unary   `parser:"  '!' @@"`
	Postfix *Postfix `parser:"| @@"`
}

type Postfix struct {
	Atom *Atom `parser:"@@"`
	Ops  []*Op `parser:"@@*"`
}

type Op struct {
	Star     bool    `parser:"  @'*'"`
	Plus     bool    `parser:"| @'+'"`
	Optional bool    `parser:"| @'?'"`
	Repeat   *Repeat `parser:"| '{' @@ '}'"`
}

// Repeat is {n}, {n,}, or {n,m}.
type Repeat struct {
	Min     int  `parser:"@Number"`
	Bounded bool `parser:"( @','"`
	Max     *int `parser:"  @Number? )?"`
}

type Atom struct {
	Paren *Paren `parser:"  @@"`
	Any   bool   `parser:"| @( '.' | 'any' )"`
	All   bool   `parser:"| @'all'"`
	None  bool   `parser:"| @'none'"`
	Empty bool   `parser:"| @'empty'"`
	Some  bool   `parser:"| @'some'"`
	Sym   *Sym   `parser:"| @@"`
}

type Paren struct {
	Open bool `parser:"@'('"`
	Body *Alt `parser:"@@? ')'"`
}

// Sym is a single-symbol predicate, maybe rejected.
type Sym struct {
	Pos lexer.Position

	Reject bool  `parser:"@'~'?"`
	Pred   *Pred `parser:"@@"`
}

type Pred struct {
	Named  *string `parser:"  @Named"`
	Regexp *string `parser:"| @Regexp"`
	List   *List   `parser:"| '[' @@ ']'"`
	Value  *Value  `parser:"| @@"`
}

// List is either a set [a, b, c] or a range [lo..hi].
type List struct {
	First *Value   `parser:"@@"`
	To    *Value   `parser:"( Range @@ )?"`
	Rest  []*Value `parser:"( ',' @@ )*"`
}

type Value struct {
	Number *float64 `parser:"  @Number"`
	String *string  `parser:"| @String"`
	True   bool     `parser:"| @'true'"`
	False  bool     `parser:"| @'false'"`
	Null   bool     `parser:"| @'null'"`
}

// Interface returns the JSON-like value.
func (v *Value) Interface() interface{} {
	switch {
	case v.Number != nil:
		return *v.Number
	case v.String != nil:
		return *v.String
	case v.True:
		return true
	case v.False:
		return false
	}
	return nil
}

var parser = participle.MustBuild[Alt](
	participle.Lexer(lex),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Grammar returns the EBNF of the syntax.
func Grammar() string {
	return parser.String()
}

// ParseTree parses the source into its parse tree.
func ParseTree(src string) (*Alt, error) {
	return parser.ParseString("", src)
}
