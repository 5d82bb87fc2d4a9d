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

package expect

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/Comcast/regular/sio"
	"github.com/Comcast/regular/storage"

	"github.com/jsccast/yaml"
)

func service(t *testing.T) *sio.Service {
	store := storage.NewMem()
	err := store.Put(context.Background(), "even", []byte(`
name: even
doc: Sequences with an even number of symbols.
syntax: text
expression: '(@one @one)*'
predicates:
  one:
    source: 'true'
`))
	if err != nil {
		t.Fatal(err)
	}
	return sio.NewService(store)
}

func TestExpectBasic(t *testing.T) {
	s := &Session{
		DefaultTimeout: 5 * time.Second,
		IOs: []*IO{
			{
				Doc: "expressions",
				Inputs: []interface{}{
					map[string]interface{}{
						"id":         "1",
						"expression": `"coin"+`,
						"sequence":   []interface{}{"coin", "coin"},
					},
					`{"id":"2","expression":"\"coin\"+","sequence":["push"]}`,
				},
				OutputSet: []*Output{
					{Pattern: map[string]interface{}{"id": "2", "matches": false}},
					{Pattern: map[string]interface{}{"id": "1", "matches": true}},
				},
			},
			{
				Doc: "a stored spec",
				Inputs: []interface{}{
					`{"id":"3","spec":"even","sequence":[1,1,2,2]}`,
					`{"id":"4","spec":"even","sequence":[1]}`,
				},
				OutputSet: []*Output{
					{Pattern: map[string]interface{}{"id": "3", "matches": true}},
					{Pattern: map[string]interface{}{"id": "4", "matches": false}},
				},
			},
		},
	}

	if err := s.RunProcessor(context.Background(), service(t)); err != nil {
		t.Fatal(err)
	}

	if bss := s.IOs[0].OutputSet[0].Bindingss; len(bss) != 1 {
		t.Fatal(bss)
	}
}

func TestExpectGuard(t *testing.T) {
	s := &Session{
		DefaultTimeout: 5 * time.Second,
		IOs: []*IO{
			{
				Inputs: []interface{}{
					`{"id":"1","expression":"any","sequence":[1]}`,
					`{"id":"2","expression":"any","sequence":[2]}`,
				},
				OutputSet: []*Output{
					{
						Pattern: map[string]interface{}{"id": "?id", "matches": true},
						Guard:   `x["?id"] == "2"`,
					},
				},
			},
		},
	}

	if err := s.RunProcessor(context.Background(), service(t)); err != nil {
		t.Fatal(err)
	}

	bss := s.IOs[0].OutputSet[0].Bindingss
	if len(bss) != 1 || bss[0]["?id"] != "2" {
		t.Fatal(bss)
	}
}

func TestExpectBadGuard(t *testing.T) {
	s := &Session{
		IOs: []*IO{
			{
				OutputSet: []*Output{
					{Pattern: "?", Guard: `x ==`},
				},
			},
		},
	}
	if err := s.Compile(context.Background()); err == nil {
		t.Fatal("should have complained")
	}
}

func TestExpectInverted(t *testing.T) {
	s := &Session{
		DefaultTimeout: 5 * time.Second,
		IOs: []*IO{
			{
				Inputs: []interface{}{
					`{"id":"bad","spec":"tacos"}`,
					`{"id":"ok","expression":"empty"}`,
				},
				OutputSet: []*Output{
					{
						Pattern:  map[string]interface{}{"error": "?"},
						Inverted: true,
					},
					{Pattern: map[string]interface{}{"id": "ok"}},
				},
			},
		},
	}

	err := s.RunProcessor(context.Background(), service(t))
	if err == nil || !strings.Contains(err.Error(), "undesired") {
		t.Fatal(err)
	}
}

func TestExpectTimeout(t *testing.T) {
	s := &Session{
		DefaultTimeout: 200 * time.Millisecond,
		IOs: []*IO{
			{
				Inputs: []interface{}{
					`{"id":"1","expression":"any","sequence":[1]}`,
				},
				OutputSet: []*Output{
					{Pattern: map[string]interface{}{"id": "2"}},
				},
			},
		},
	}

	if err := s.RunProcessor(context.Background(), service(t)); err != Timeout {
		t.Fatal(err)
	}
}

var sessionYAML = `
doc: A session read from YAML.
parsePatterns: true
ios:
  - inputs:
      - id: y1
        spec: even
        sequence: [a, a]
    outputSet:
      - pattern: '{"id":"y1","matches":true}'
`

func TestExpectYAML(t *testing.T) {
	var s *Session
	if err := yaml.Unmarshal([]byte(sessionYAML), &s); err != nil {
		t.Fatal(err)
	}
	s.DefaultTimeout = 5 * time.Second

	if err := s.RunProcessor(context.Background(), service(t)); err != nil {
		t.Fatal(err)
	}
}

// TestExpectSubprocess runs a session against a real rmatch process.
//
// Requires a current rmatch in the path.
func TestExpectSubprocess(t *testing.T) {
	if _, err := exec.LookPath("rmatch"); err != nil {
		t.Skip(err)
	}

	s := &Session{
		DefaultTimeout: 10 * time.Second,
		IOs: []*IO{
			{
				Inputs: []interface{}{
					`{"id":"1","expression":"\"coin\"+","sequence":["coin"]}`,
				},
				OutputSet: []*Output{
					{Pattern: map[string]interface{}{"id": "1", "matches": true}},
				},
			},
		},
	}

	if err := s.Run(context.Background(), t.TempDir(), "rmatch", "serve", "--stdio", "--db", "specs.db"); err != nil {
		t.Fatal(err)
	}
}
