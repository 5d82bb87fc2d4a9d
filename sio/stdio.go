/* Copyright 2019 Comcast Cable Communications Management, LLC
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

package sio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Stdio is a fairly simple Couplings that reads requests (one JSON
// object per line) from stdin and writes results (also one per line)
// to stdout.
//
// Lines starting with '#' and blank lines are ignored.  The line
// "quit" ends the input.
type Stdio struct {
	// In is the source of requests.
	In io.Reader

	// Out receives results.
	Out io.Writer

	// ShellExpand enables input to include inline shell commands
	// delimited by '<<' and '>>'.  Use at your own risk, of
	// course!
	ShellExpand bool

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// EchoInput writes input lines (prepended with "input") to
	// the output.
	EchoInput bool

	// Tags prefixes tags indicating type of output ("input",
	// "result").
	Tags bool

	// PadTags adds some padding to tags used in output.
	PadTags bool

	// InputEOF will be closed on EOF from stdin.
	InputEOF chan bool
}

// NewStdio creates a new Stdio.
//
// In and Out are initialized with os.Stdin and os.Stdout
// respectively.
func NewStdio(shellExpand bool) *Stdio {
	return &Stdio{
		In:          os.Stdin,
		Out:         os.Stdout,
		ShellExpand: shellExpand,
		InputEOF:    make(chan bool),
	}
}

// Start does nothing.
func (s *Stdio) Start(ctx context.Context) error {
	return nil
}

// Stop does nothing.
func (s *Stdio) Stop(ctx context.Context) error {
	return nil
}

func (s *Stdio) printf(tag, format string, args ...interface{}) {
	if s.PadTags {
		tag = fmt.Sprintf("% 10s", tag)
	}
	if s.Tags {
		format = tag + " " + format
	}
	if s.Timestamps {
		ts := fmt.Sprintf("%-31s", time.Now().UTC().Format(time.RFC3339Nano))
		format = ts + " " + format
	}

	fmt.Fprintf(s.Out, format, args...)
}

// Serve processes requests until EOF, "quit", or ctx.Done().
//
// Requests are processed in order.  A line that isn't a request
// gets a Result with an Error.
func (s *Stdio) Serve(ctx context.Context, p Processor) error {
	if s.InputEOF != nil {
		defer close(s.InputEOF)
	}

	in := bufio.NewReader(s.In)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := in.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil
		}
		if err != nil && err != io.EOF {
			log.Printf("stdin error %s", err)
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "quit" {
			return nil
		}
		if s.EchoInput {
			s.printf("input", "%s\n", trimmed)
		}
		if strings.HasPrefix(trimmed, "#") || len(trimmed) == 0 {
			if err == io.EOF {
				return nil
			}
			continue
		}
		if s.ShellExpand {
			if trimmed, err = ShellExpand(trimmed); err != nil {
				s.printf("result", "%s\n", JS(&Result{Error: err.Error()}))
				continue
			}
		}

		var r *Result
		var req Request
		if jerr := json.Unmarshal([]byte(trimmed), &req); jerr != nil {
			r = &Result{Error: "bad input: " + jerr.Error()}
		} else {
			r = p.Process(ctx, &req)
		}
		s.printf("result", "%s\n", JS(r))

		if err == io.EOF {
			return nil
		}
	}
}
