package ecmascript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// LibraryProvider resolves a library name into source code.
type LibraryProvider func(ctx context.Context, name string) (string, error)

// DefaultLibraryProvider reads "file://" libraries relative to the
// working directory.
var DefaultLibraryProvider = MakeFileLibraryProvider(".")

func (i *Interpreter) provide(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, name)
	}
	return DefaultLibraryProvider(ctx, name)
}

// MakeFileLibraryProvider makes a LibraryProvider for names like
// "file://lib.js", which are read relative to the given directory.
func MakeFileLibraryProvider(dir string) LibraryProvider {
	return func(ctx context.Context, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		if parts[0] != "file" {
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
		filename := filepath.Clean(parts[1])
		if strings.HasPrefix(filename, "..") || filepath.IsAbs(filename) {
			return "", fmt.Errorf("library '%s' is outside of %s", name, dir)
		}
		bs, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return "", err
		}
		return string(bs), nil
	}
}

// MakeMapLibraryProvider makes a LibraryProvider that looks up
// sources by name.
func MakeMapLibraryProvider(srcs map[string]string) LibraryProvider {
	return func(ctx context.Context, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

// InlineRequires generates new source code that replaces top-level
// require() calls with the code that those calls reference.
//
// Defining require() in the runtime would need eval, which would
// prevent precompilation.
func InlineRequires(ctx context.Context, src string, provider LibraryProvider) (string, error) {
	p, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return "", err
	}

	type Required struct {
		Idx0 int
		Idx1 int
		Name string
	}

	var requires []Required

	var visit func(ss []ast.Statement) error
	visit = func(ss []ast.Statement) error {
		for _, s := range ss {
			exps, is := s.(*ast.ExpressionStatement)
			if !is {
				continue
			}
			switch e := exps.Expression.(type) {
			case *ast.FunctionLiteral:
				// The wrapper around a predicate.
				if err := visit(e.Body.List); err != nil {
					return err
				}
				continue
			case *ast.CallExpression:
				id, is := e.Callee.(*ast.Identifier)
				if !is || id.Name != "require" {
					continue
				}
				if len(e.ArgumentList) != 1 {
					return fmt.Errorf("bad require args: %#v", e.ArgumentList)
				}
				lit, is := e.ArgumentList[0].(*ast.StringLiteral)
				if !is {
					return errors.New("require needs a string literal")
				}
				requires = append(requires, Required{
					Idx0: int(exps.Idx0()),
					Idx1: int(exps.Idx1()),
					Name: string(lit.Value),
				})
			}
		}
		return nil
	}
	if err = visit(p.Body); err != nil {
		return "", err
	}

	if len(requires) == 0 {
		return src, nil
	}

	// Idx values are 1-based.
	var (
		b    strings.Builder
		from = 0
	)
	for _, r := range requires {
		lib, err := provider(ctx, r.Name)
		if err != nil {
			return "", err
		}
		b.WriteString(src[from : r.Idx0-1])
		b.WriteString(lib)
		b.WriteString("\n")
		from = r.Idx1 - 1
	}
	b.WriteString(src[from:])
	return b.String(), nil
}

// parseSource accepts either a string or a map with "code" and
// (optionally) "requires" properties.
//
// The map can be a map[interface{}]interface{}, which is what some
// YAML parsers return.
func parseSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		return vv, nil, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			m[fmt.Sprint(k)] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		s, is := vv["code"].(string)
		if !is {
			return "", nil, errors.New("bad ECMAScript code")
		}
		code = s

		switch vv := vv["requires"].(type) {
		case nil:
		case string:
			libs = []string{vv}
		case []string:
			libs = vv
		case []interface{}:
			for _, x := range vv {
				lib, is := x.(string)
				if !is {
					return "", nil, fmt.Errorf("bad library %#v", x)
				}
				libs = append(libs, lib)
			}
		default:
			return "", nil, fmt.Errorf("bad requires %#v", vv)
		}
		return code, libs, nil
	}
	return "", nil, fmt.Errorf("bad ECMAScript source (%T)", src)
}
