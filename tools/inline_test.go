package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInline(t *testing.T) {
	input := `
I like %inline("tacos"), and
I also like %inline("queso").
Both are delicious.
`
	want := `
I like TACOS, and
I also like QUESO.
Both are delicious.
`

	find := func(name string) ([]byte, error) {
		return []byte(strings.ToUpper(name)), nil
	}

	got, err := Inline([]byte(input), find)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestInlineNested(t *testing.T) {
	files := map[string]string{
		"a": `a(%inline("b"))`,
		"b": `b`,
		"c": `%inline("c")`,
	}
	find := func(name string) ([]byte, error) {
		return []byte(files[name]), nil
	}

	got, err := Inline([]byte(`%inline("a")`), find)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a(b)" {
		t.Fatalf("got %s", got)
	}

	if _, err = Inline([]byte(`%inline("c")`), find); err == nil {
		t.Fatal("should have complained")
	}
}

func TestReadFileWithInlines(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "even.js"), []byte("x % 2 == 0"), 0644); err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(dir, "spec.yaml")
	src := "predicates:\n  even:\n    source: '%inline(\"even.js\")'\n"
	if err := os.WriteFile(filename, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFileWithInlines(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "source: 'x % 2 == 0'") {
		t.Fatalf("got %s", got)
	}

	if _, err = ReadAllWithInlines(strings.NewReader(`%inline("../etc/passwd")`), dir); err == nil {
		t.Fatal("should have complained")
	}
}
