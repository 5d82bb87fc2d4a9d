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

package ecmascript

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Comcast/regular/values"
)

func predicate(t *testing.T, i *Interpreter, src interface{}) func(values.Symbol) bool {
	t.Helper()
	ctx := context.Background()
	compiled, err := i.Compile(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	p, err := i.Predicate(ctx, src, compiled)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPredicates(t *testing.T) {
	type test struct {
		name   string
		src    interface{}
		accept []interface{}
		reject []interface{}
	}

	tests := []test{
		{
			name:   "expression",
			src:    `x > 2`,
			accept: []interface{}{3, 10.5},
			reject: []interface{}{1, 2, "a"},
		},
		{
			name:   "body",
			src:    `if (typeof x !== "string") { return false; } return x.length == 3;`,
			accept: []interface{}{"abc"},
			reject: []interface{}{"ab", 123},
		},
		{
			name:   "object",
			src:    `x.likes === "tacos"`,
			accept: []interface{}{map[string]interface{}{"likes": "tacos"}},
			reject: []interface{}{map[string]interface{}{"likes": "chips"}},
		},
		{
			name:   "truthy",
			src:    `x`,
			accept: []interface{}{1, "a", true},
			reject: []interface{}{0, "", false, nil},
		},
		{
			name:   "exception",
			src:    `x.y.z`,
			accept: []interface{}{map[string]interface{}{"y": map[string]interface{}{"z": 1}}},
			reject: []interface{}{1, nil},
		},
		{
			name: "map source",
			src: map[interface{}]interface{}{
				"code": `x % 2 == 0`,
			},
			accept: []interface{}{2, 4},
			reject: []interface{}{1},
		},
	}

	i := NewInterpreter()
	i.Silent = true

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := predicate(t, i, tc.src)
			for _, x := range tc.accept {
				if !p(x) {
					t.Errorf("%#v should be accepted", x)
				}
			}
			for _, x := range tc.reject {
				if p(x) {
					t.Errorf("%#v should be rejected", x)
				}
			}
		})
	}
}

func TestPredicateNoPrecompile(t *testing.T) {
	i := NewInterpreter()
	p, err := i.Predicate(context.Background(), `x == "a"`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !p("a") {
		t.Fatal("should be true")
	}
}

func TestPredicateModifySymbol(t *testing.T) {
	i := NewInterpreter()
	p := predicate(t, i, `x.n = 2; return true;`)
	x := map[string]interface{}{"n": 1}
	if !p(x) {
		t.Fatal("should be true")
	}
	if x["n"] != 1 {
		t.Fatalf("symbol modified: %#v", x)
	}
}

func TestCompileError(t *testing.T) {
	i := NewInterpreter()
	if _, err := i.Compile(context.Background(), `x >`); err == nil {
		t.Fatal("should have complained")
	}
	if _, err := i.Compile(context.Background(), 42); err == nil {
		t.Fatal("should have complained")
	}
	if _, err := i.Predicate(context.Background(), "", "not a program"); err == nil {
		t.Fatal("should have complained")
	}
}

func TestTimeout(t *testing.T) {
	i := NewInterpreter()
	i.Silent = true
	i.Timeout = 20 * time.Millisecond
	p := predicate(t, i, `for (;;) {} return true;`)

	then := time.Now()
	if p(1) {
		t.Fatal("should have been false")
	}
	if elapsed := time.Since(then); time.Second < elapsed {
		t.Fatalf("took %v", elapsed)
	}
}

func TestExtended(t *testing.T) {
	i := NewInterpreter()
	i.Extended = true

	p := predicate(t, i, `0 < _.match({"likes":"?x"}, x).length`)
	if !p(map[string]interface{}{"likes": "queso"}) {
		t.Fatal("should have matched")
	}
	if p(map[string]interface{}{"wants": "queso"}) {
		t.Fatal("shouldn't have matched")
	}

	p = predicate(t, i, `new Date(_.cronNext(x)) > new Date()`)
	if !p("* * * * *") {
		t.Fatal("next should be in the future")
	}
}

func TestNotExtended(t *testing.T) {
	i := NewInterpreter()
	i.Silent = true
	p := predicate(t, i, `_.cronNext("* * * * *") != ""`)
	if p(1) {
		t.Fatal("cronNext shouldn't be available")
	}
}

func TestRequires(t *testing.T) {
	i := NewInterpreter()
	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"even": `function even(n) { return n % 2 == 0; }`,
		"big":  `function big(n) { return 10 < n; }`,
	})

	p := predicate(t, i, `require("even"); return even(x);`)
	if !p(2) || p(3) {
		t.Fatal("even")
	}

	p = predicate(t, i, map[string]interface{}{
		"requires": []interface{}{"even", "big"},
		"code":     `even(x) && big(x)`,
	})
	if !p(12) || p(2) || p(13) {
		t.Fatal("even and big")
	}

	if _, err := i.Compile(context.Background(), `require("odd"); return odd(x);`); err == nil {
		t.Fatal("should have complained")
	}
}

func TestFileLibraryProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "lib.js"), []byte(`function one(n) { return n == 1; }`), 0644); err != nil {
		t.Fatal(err)
	}

	provide := MakeFileLibraryProvider(dir)
	ctx := context.Background()

	if _, err := provide(ctx, "file://lib.js"); err != nil {
		t.Fatal(err)
	}
	if _, err := provide(ctx, "file://../etc/passwd"); err == nil {
		t.Fatal("should have complained")
	}
	if _, err := provide(ctx, "https://example.com/lib.js"); err == nil {
		t.Fatal("should have complained")
	}
	if _, err := provide(ctx, "lib.js"); err == nil {
		t.Fatal("should have complained")
	}

	i := NewInterpreter()
	i.LibraryProvider = provide
	p := predicate(t, i, `require("file://lib.js"); return one(x);`)
	if !p(1) {
		t.Fatal("one")
	}
}

func TestConcurrentPredicate(t *testing.T) {
	i := NewInterpreter()
	p := predicate(t, i, `x < 50`)

	var wg sync.WaitGroup
	errs := make(chan int, 100)
	for n := 0; n < 100; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if p(n) != (n < 50) {
				errs <- n
			}
		}(n)
	}
	wg.Wait()
	close(errs)
	for n := range errs {
		t.Errorf("wrong verdict for %d", n)
	}
}

func BenchmarkPredicate(b *testing.B) {
	i := NewInterpreter()
	p, err := i.Predicate(context.Background(), `x.n < 10`, nil)
	if err != nil {
		b.Fatal(err)
	}
	x := map[string]interface{}{"n": 3}
	for j := 0; j < b.N; j++ {
		p(x)
	}
}
