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

// Package expect is a tool for testing a matching service.
//
// You construct a Session, which has requests and expected results.
// Then run the session to see if the expected results actually
// appeared.
//
// An expected result is a pattern (see values.Matcher) that a result
// must match.  An optional guard can then check the pattern's
// bindings with some code.
//
// A Session can run against a subprocess (like "rmatch serve
// --stdio") or against a Processor in this process.
package expect

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/Comcast/regular/interpreters"
	"github.com/Comcast/regular/sio"
	"github.com/Comcast/regular/values"
)

// Output is a specification for a result that's expected.
type Output struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Pattern must be matched by an emitted result.
	Pattern interface{} `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Guard is optional code that gets the bindings from the
	// match (as x) and must return true.
	Guard interface{} `json:"guard,omitempty" yaml:"guard,omitempty"`

	// Interpreter names the Guard's interpreter.  The default is
	// ECMAScript.
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`

	// Bindingss, which is the result of a match (and optional
	// guard), is written during processing.  Just for diagnostics.
	Bindingss []values.Bindings `json:"bs,omitempty" yaml:"bs,omitempty"`

	// Inverted means that matching output isn't desired!
	Inverted bool `json:"inverted,omitempty" yaml:"inverted,omitempty"`

	guard func(values.Symbol) bool
}

// IO is a package of requests and required result specifications.
type IO struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// WaitBefore is the time to wait before sending the first
	// request.
	WaitBefore time.Duration `json:"waitBefore,omitempty" yaml:"waitBefore,omitempty"`

	// WaitBetween is the time to wait between sending requests.
	WaitBetween time.Duration `json:"waitBetween,omitempty" yaml:"waitBetween,omitempty"`

	// Inputs are the requests to send.  A string is sent as is.
	// Anything else is sent as JSON.
	Inputs []interface{} `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// WaitAfter is the time to wait after sending the last
	// request.
	WaitAfter time.Duration `json:"waitAfter,omitempty" yaml:"waitAfter,omitempty"`

	// OutputSet is the set (not a list) of results to verify.
	OutputSet []*Output `json:"outputSet,omitempty" yaml:"outputSet,omitempty"`

	// Timeout is the optional timeout for this set.
	// Session.DefaultTimeout is the default value.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Session is mostly a sequence of IOs.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// IOs is sequence of IOs that this session will run.
	IOs []*IO `json:"ios" yaml:"ios"`

	// ParsePatterns will parse IO.OutputSet.Patterns as JSON.
	ParsePatterns bool `json:"parsePatterns,omitempty" yaml:"parsePatterns,omitempty"`

	// Interpreters are used (if necessary) to compile any
	// Guards.  Nil means interpreters.Standard().
	Interpreters interpreters.Map `json:"-" yaml:"-"`

	// DefaultTimeout is the default timeout for each IO.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty" yaml:"defaultTimeout,omitempty"`

	// ShowStderr controls whether the subprocess's stderr is
	// logged.
	ShowStderr bool `json:"showStderr,omitempty" yaml:"showStderr,omitempty"`

	// ShowStdin controls whether requests are logged.
	ShowStdin bool `json:"showStdin,omitempty" yaml:"showStdin,omitempty"`

	// ShowStdout controls whether results are logged.
	ShowStdout bool `json:"showStdout,omitempty" yaml:"showStdout,omitempty"`

	// OutputPrefix is the prefix (like a tag) of result lines.
	// The prefix is removed before parsing.
	OutputPrefix string `json:"outputPrefix,omitempty" yaml:"outputPrefix,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

var (
	// Timeout is the error when an IO's results didn't show up in
	// time.
	Timeout = errors.New("timeout")

	// Canceled is the error when the context was done before the
	// Session finished.
	Canceled = errors.New("canceled")

	happy = errors.New("happy")
)

// Compile compiles any Guards.  Run calls Compile, so calling it
// first just finds problems sooner.
func (s *Session) Compile(ctx context.Context) error {
	is := s.Interpreters
	if is == nil {
		is = interpreters.Standard()
	}
	for i, iop := range s.IOs {
		for j, o := range iop.OutputSet {
			if o.Guard == nil || o.guard != nil {
				continue
			}
			interpreter, err := is.Find(o.Interpreter)
			if err != nil {
				return err
			}
			compiled, err := interpreter.Compile(ctx, o.Guard)
			if err != nil {
				return fmt.Errorf("io %d output %d guard: %w", i, j, err)
			}
			if o.guard, err = interpreter.Predicate(ctx, o.Guard, compiled); err != nil {
				return fmt.Errorf("io %d output %d guard: %w", i, j, err)
			}
		}
	}
	return nil
}

// Run processes all the IOs in the Session using a subprocess.
//
// The subprocess runs in dir (if not empty).  It's given by the
// args.  The first arg is the executable.  Example args:
//
//	"rmatch", "serve", "--stdio", "--db", "specs.db"
func (s *Session) Run(ctx context.Context, dir string, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("need a command (and optional args) (for expect.Session.Run)")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	defer stdin.Close()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	// Log subprocess's stderr.
	go func() {
		out := bufio.NewReader(stderr)
		for {
			line, err := out.ReadBytes('\n')
			if err == io.EOF {
				break
			}
			if err != nil {
				if !strings.Contains(err.Error(), "already closed") {
					log.Printf("stderr error %s", err)
				}
				break
			}
			if s.ShowStderr {
				log.Printf("stderr %s", line)
			}
		}
	}()

	err = s.run(ctx, stdin, bufio.NewReader(stdout))

	if cerr := stdin.Close(); cerr != nil {
		log.Printf("stdin.Close() error %s", cerr)
	}
	if err != nil {
		cancel()
		cmd.Wait()
		return err
	}

	return cmd.Wait()
}

// RunProcessor processes all the IOs in the Session using the given
// Processor via an sio.Stdio.
func (s *Session) RunProcessor(ctx context.Context, p sio.Processor) error {
	var (
		inR, inW   = io.Pipe()
		outR, outW = io.Pipe()
		served     = make(chan error, 1)
	)

	c := &sio.Stdio{
		In:  inR,
		Out: outW,
	}
	go func() {
		err := c.Serve(ctx, p)
		outW.Close()
		served <- err
	}()

	err := s.run(ctx, inW, bufio.NewReader(outR))
	inW.Close()

	// Unread results shouldn't block the Stdio.
	go io.Copy(io.Discard, outR)

	if serr := <-served; err == nil && serr != context.Canceled {
		err = serr
	}
	return err
}

// send writes the IO's requests.
func (s *Session) send(iop *IO, in io.Writer) error {
	s.pause("waitBefore", iop.WaitBefore)

	for i, input := range iop.Inputs {
		if 0 < i {
			s.pause("waitBetween", iop.WaitBetween)
		}

		var js []byte
		if str, is := input.(string); is {
			js = []byte(str)
		} else {
			var err error
			if js, err = json.Marshal(values.Normalize(input)); err != nil {
				return err
			}
		}

		if s.ShowStdin {
			log.Printf("in %s\n", js)
		}

		if _, err := in.Write(append(js, '\n')); err != nil {
			return err
		}
	}

	s.pause("waitAfter", iop.WaitAfter)
	return nil
}

// check consumes results until every (non-inverted) Output has been
// seen.
func (s *Session) check(iop *IO, out *bufio.Reader) error {
	need := 0
	for _, o := range iop.OutputSet {
		if !o.Inverted {
			need++
		}
	}

	for 0 < need {
		line, err := out.ReadBytes('\n')
		if err != nil {
			return err
		}

		if s.ShowStdout {
			log.Printf("out %s", line)
		}

		if s.OutputPrefix != "" {
			line = bytes.TrimPrefix(bytes.TrimSpace(line), []byte(s.OutputPrefix))
		}

		var message interface{}
		if err = json.Unmarshal(line, &message); err != nil {
			log.Printf("ignoring '%s'", bytes.TrimSpace(line))
			continue
		}

		for _, output := range iop.OutputSet {
			if output.Bindingss != nil {
				continue
			}
			var pattern = output.Pattern
			if s.ParsePatterns {
				js, is := pattern.(string)
				if !is {
					return fmt.Errorf("pattern %v isn't a string", pattern)
				}
				if err = json.Unmarshal([]byte(js), &pattern); err != nil {
					return fmt.Errorf("Unmarshal error %v for %s", err, js)
				}
			}

			bss, err := values.DefaultMatcher.Match(pattern, message, nil)
			if err != nil {
				return err
			}
			if len(bss) == 0 {
				continue
			}
			if 1 < len(bss) {
				log.Printf("warning: multiple Bindingss")
			}

			if output.guard != nil {
				if !output.guard(map[string]interface{}(bss[0])) {
					continue
				}
				bss = bss[:1]
			}

			output.Bindingss = bss
			if output.Inverted {
				return fmt.Errorf("undesired output %s", sio.JS(output))
			}
			need--
		}
	}

	return nil
}

// run does the work for Run and RunProcessor.
func (s *Session) run(ctx context.Context, in io.Writer, out *bufio.Reader) error {
	if err := s.Compile(ctx); err != nil {
		return err
	}

	for _, iop := range s.IOs {

		timeout := iop.Timeout
		if timeout == 0 {
			timeout = s.DefaultTimeout
		}

		errs := make(chan error, 4)

		if 0 < timeout {
			timer := time.AfterFunc(timeout, func() {
				errs <- Timeout
				errs <- Timeout
			})
			defer timer.Stop()
		}

		report := func(err error) {
			if err == nil {
				err = happy
			}
			errs <- err
		}

		go func() { report(s.check(iop, out)) }()
		go func() { report(s.send(iop, in)) }()

		for happies := 0; happies < 2; {
			select {
			case <-ctx.Done():
				return Canceled
			case err := <-errs:
				if err != happy {
					return err
				}
				happies++
			}
		}
	}

	return nil
}

func (s *Session) pause(why string, d time.Duration) {
	if 0 < d {
		if s.Verbose {
			log.Printf("pause %s %s", why, d)
		}
		time.Sleep(d)
	}
}
