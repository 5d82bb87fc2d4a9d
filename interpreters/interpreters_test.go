package interpreters

import (
	"context"
	"errors"
	"testing"
)

func TestStandard(t *testing.T) {
	is := Standard()
	ctx := context.Background()

	for _, name := range []string{"", "ecmascript", "goja", "ecmascript-ext", "noop"} {
		i, err := is.Find(name)
		if err != nil {
			t.Fatal(err)
		}
		p, err := i.Predicate(ctx, `x == 1`, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !p(1) {
			t.Fatalf("%q: should be true", name)
		}
	}

	_, err := is.Find("cobol")
	var unknown *UnknownInterpreter
	if !errors.As(err, &unknown) || unknown.Name != "cobol" {
		t.Fatal(err)
	}
}
