/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package ecmascript provides an ECMAScript-compatible predicate
// interpreter.
package ecmascript

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/Comcast/regular/values"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is what a predicate that ran out of time
	// reports (and logs).
	Interrupted = errors.New(InterruptedMessage)

	// DefaultTimeout is the Timeout for NewInterpreter.
	DefaultTimeout = 100 * time.Millisecond
)

// Interpreter makes symbol predicates from ECMAScript using Goja,
// which is a Go implementation of ECMAScript 5.1+.
//
// The source is either an expression or a function body.  Either
// way, the symbol is available as x.  The result is converted to a
// boolean in the usual ECMAScript way.  An exception makes the
// predicate false.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Timeout bounds each evaluation of a predicate.  Zero means no
	// bound.
	Timeout time.Duration

	// Extended adds some additional properties at _.
	//
	//	cronNext(s): the next time (RFC3339Nano) for the crontab
	//	  expression.
	//	match(pat, obj): the bindings from the pattern matcher.
	Extended bool

	// Silent suppresses logging of exceptions.
	Silent bool

	// LibraryProvider resolves names given to require().  Nil
	// means DefaultLibraryProvider.
	LibraryProvider LibraryProvider
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		Timeout: DefaultTimeout,
	}
}

var returns = regexp.MustCompile(`\breturn\b`)

func wrapSrc(src string) string {
	if returns.MatchString(src) {
		return fmt.Sprintf("(function(x) {\n%s\n});\n", src)
	}
	return fmt.Sprintf("(function(x) {\nreturn (%s);\n});\n", src)
}

// Compile calls goja.Compile after inlining any libraries.  This step
// is optional.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, libs, err := parseSource(src)
	if err != nil {
		return nil, err
	}

	wrapped := wrapSrc(code)

	if wrapped, err = InlineRequires(ctx, wrapped, i.provide); err != nil {
		return nil, err
	}

	for j := len(libs) - 1; 0 <= j; j-- {
		lib, err := i.provide(ctx, libs[j])
		if err != nil {
			return nil, err
		}
		wrapped = lib + "\n" + wrapped
	}

	obj, err := goja.Compile("", wrapped, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

// vm is a runtime with the predicate function ready to call.
//
// A goja.Runtime isn't safe for concurrent use, so each predicate
// keeps a pool of them.
type vm struct {
	o  *goja.Runtime
	fn goja.Callable
}

// Predicate returns a function that evaluates the (compiled) source
// against a symbol.
func (i *Interpreter) Predicate(ctx context.Context, src interface{}, compiled interface{}) (func(values.Symbol) bool, error) {
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return nil, err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return nil, fmt.Errorf("ECMAScript bad compilation: %T %#v", compiled, compiled)
	}

	// Make one now so that a bad program fails here rather than
	// on the first symbol.
	first, err := i.newVM(p)
	if err != nil {
		return nil, err
	}

	pool := &sync.Pool{
		New: func() interface{} {
			v, err := i.newVM(p)
			if err != nil {
				return nil
			}
			return v
		},
	}
	pool.Put(first)

	return func(x values.Symbol) bool {
		v, _ := pool.Get().(*vm)
		if v == nil {
			return false
		}
		ok, err := i.call(v, x)
		if err != nil {
			if !i.Silent {
				log.Printf("ecmascript predicate %s error: %s", values.Key(x), err)
			}
			if errors.Is(err, Interrupted) {
				// The runtime might be in a strange state.
				return false
			}
		}
		pool.Put(v)
		return ok
	}, nil
}

func (i *Interpreter) newVM(p *goja.Program) (*vm, error) {
	o := goja.New()

	env := map[string]interface{}{}
	if i.Extended {
		i.extend(o, env)
	}
	if err := o.Set("_", env); err != nil {
		return nil, err
	}

	f, err := RunProgram(o, p)
	if err != nil {
		return nil, err
	}
	fn, is := goja.AssertFunction(f)
	if !is {
		return nil, fmt.Errorf("ECMAScript predicate isn't a function: %s", f)
	}
	return &vm{
		o:  o,
		fn: fn,
	}, nil
}

func (i *Interpreter) call(v *vm, x values.Symbol) (ok bool, err error) {
	// Predicates shouldn't be able to modify the symbol.
	if y, err := values.Canonicalize(x); err == nil {
		x = y
	}

	if 0 < i.Timeout {
		timer := time.AfterFunc(i.Timeout, func() {
			v.o.Interrupt(InterruptedMessage)
		})
		defer func() {
			timer.Stop()
			v.o.ClearInterrupt()
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("%v", r)
		}
	}()

	r, err := v.fn(goja.Undefined(), v.o.ToValue(x))
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return false, Interrupted
		}
		return false, err
	}
	return r.ToBoolean(), nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func export(x interface{}) interface{} {
	if v, is := x.(goja.Value); is && v != nil {
		return v.Export()
	}
	return x
}

func (i *Interpreter) extend(o *goja.Runtime, env map[string]interface{}) {
	// cronNext parses the given string as a crontab expression
	// using github.com/gorhill/cronexpr.  Returns the next time
	// as a string formatted in time.RFC3339Nano (UTC).
	env["cronNext"] = func(x interface{}) interface{} {
		cronExpr, is := export(x).(string)
		if !is {
			protest(o, "not a string")
		}
		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	// match is a utility that invokes the pattern matcher.
	env["match"] = func(pat, x goja.Value) interface{} {
		p, err := values.Canonicalize(export(pat))
		if err != nil {
			protest(o, err.Error())
		}
		y, err := values.Canonicalize(export(x))
		if err != nil {
			protest(o, err.Error())
		}
		bss, err := values.DefaultMatcher.Match(p, y, nil)
		if err != nil {
			protest(o, err.Error())
		}
		acc := make([]interface{}, len(bss))
		for j, bs := range bss {
			acc[j] = map[string]interface{}(bs)
		}
		return acc
	}
}

// RunProgram runs the program, turning a panic into an error.
func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}
