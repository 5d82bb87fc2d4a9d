package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Comcast/regular/core"
	"github.com/Comcast/regular/spec"
	"github.com/Comcast/regular/syntax"
	"github.com/Comcast/regular/tools"
	"github.com/Comcast/regular/values"
	"github.com/spf13/cobra"
)

// contextOf returns the command's context, which is nil when the
// command wasn't run by Execute.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadSpec reads (with inlining), parses, and compiles a spec file.
// A spec without a name gets the file's base name.
func loadSpec(ctx context.Context, filename string) (*spec.Spec, error) {
	bs, err := tools.ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	s, err := spec.Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if s.Name == "" {
		base := filepath.Base(filename)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err = s.Compile(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// source names where an automaton comes from: an expression in the
// text syntax or a spec file.
type source struct {
	expr     string
	specFile string
}

func (src *source) automaton(ctx context.Context) (*core.Automaton[values.Symbol], error) {
	switch {
	case src.expr != "" && src.specFile != "":
		return nil, errors.New("give an expression (-e) or a spec file (-f) but not both")
	case src.expr != "":
		e, err := syntax.Parse(src.expr)
		if err != nil {
			return nil, err
		}
		logf("expression %s", e)
		return core.Compile(e), nil
	case src.specFile != "":
		s, err := loadSpec(ctx, src.specFile)
		if err != nil {
			return nil, err
		}
		return s.Automaton()
	}
	return nil, errors.New("need an expression (-e) or a spec file (-f)")
}

// parseSeq parses a JSON array.
func parseSeq(arg string) ([]interface{}, error) {
	var seq []interface{}
	if err := json.Unmarshal([]byte(arg), &seq); err != nil {
		return nil, fmt.Errorf("sequence %s isn't a JSON array: %w", arg, err)
	}
	return seq, nil
}
