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

// Package sio couples a matching Service to some IO: stdin/stdout,
// WebSockets, or an MQTT broker.
package sio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/Comcast/regular/core"
	"github.com/Comcast/regular/interpreters"
	"github.com/Comcast/regular/spec"
	"github.com/Comcast/regular/storage"
	"github.com/Comcast/regular/syntax"
	"github.com/Comcast/regular/values"
)

// Request asks whether a spec's expression accepts a sequence.
//
// Each request carries a whole (finite) sequence.
type Request struct {
	// ID is an opaque identifier that's copied to the Result.
	ID string `json:"id,omitempty"`

	// Spec names a spec in the Service's Storage.
	Spec string `json:"spec,omitempty"`

	// Expression, if given instead of Spec, is an expression in
	// the text syntax.
	Expression string `json:"expression,omitempty"`

	Sequence []interface{} `json:"sequence"`

	// Walk requests the active nodes after each symbol.
	Walk bool `json:"walk,omitempty"`

	// ReplyTo is an optional topic for couplings that have
	// topics.
	ReplyTo string `json:"replyTo,omitempty"`
}

// Result is the answer to a Request.
type Result struct {
	ID      string `json:"id,omitempty"`
	Spec    string `json:"spec,omitempty"`
	Matches bool   `json:"matches"`
	Error   string `json:"error,omitempty"`

	// Walked is present when the Request asked for it.
	Walked *core.Walked[values.Symbol] `json:"walked,omitempty"`
}

// Processor answers Requests.  Implementations must be safe for
// concurrent use.
type Processor interface {
	Process(ctx context.Context, r *Request) *Result
}

// Service answers Requests using specs from a Storage.
//
// Compiled specs are cached.  Reload replaces a cached spec
// atomically, so requests in flight finish with the spec they
// started with.
type Service struct {
	// Storage holds the spec sources.
	Storage storage.Storage

	// Interpreters compile the specs' predicate sources.
	Interpreters interpreters.Map

	// MaxCost bounds the compilation cost of a request's
	// expression (see syntax.CheckCost).  Zero means
	// syntax.MaxCost.
	MaxCost int

	// Verbose turns on logging.
	Verbose bool

	sync.Mutex
	specs map[string]*spec.UpdatableSpec
}

// NewService makes a Service that gets specs from the given
// Storage.
func NewService(store storage.Storage) *Service {
	return &Service{
		Storage:      store,
		Interpreters: interpreters.Standard(),
		specs:        make(map[string]*spec.UpdatableSpec),
	}
}

// Logf logs if s.Verbose.
func (s *Service) Logf(format string, args ...interface{}) {
	if !s.Verbose {
		return
	}
	log.Printf(format, args...)
}

// load gets, parses, and compiles the named spec.
func (s *Service) load(ctx context.Context, name string) (*spec.Spec, error) {
	src, err := s.Storage.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	sp, err := spec.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("spec %s: %w", name, err)
	}
	if sp.Name == "" {
		sp.Name = name
	}
	if err = sp.Compile(ctx, s.Interpreters); err != nil {
		return nil, fmt.Errorf("spec %s: %w", name, err)
	}
	return sp, nil
}

// Spec returns the named compiled spec, loading it if it isn't
// cached.
func (s *Service) Spec(ctx context.Context, name string) (*spec.Spec, error) {
	s.Lock()
	u, have := s.specs[name]
	s.Unlock()
	if have {
		return u.Spec(), nil
	}

	sp, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}

	s.Lock()
	defer s.Unlock()
	// Somebody else might have won.
	if u, have = s.specs[name]; have {
		return u.Spec(), nil
	}
	s.specs[name] = spec.NewUpdatableSpec(sp)
	return sp, nil
}

// Reload reloads the named spec from Storage.  If the new version
// doesn't compile, the cached version stays.
func (s *Service) Reload(ctx context.Context, name string) error {
	sp, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()
	if u, have := s.specs[name]; have {
		return u.SetSpec(sp)
	}
	s.specs[name] = spec.NewUpdatableSpec(sp)
	return nil
}

// Forget drops the named spec from the cache.
func (s *Service) Forget(name string) {
	s.Lock()
	delete(s.specs, name)
	s.Unlock()
}

// Cached returns the number of cached specs.
func (s *Service) Cached() int {
	s.Lock()
	defer s.Unlock()
	return len(s.specs)
}

func (s *Service) automaton(ctx context.Context, r *Request) (*core.Automaton[values.Symbol], error) {
	switch {
	case r.Spec != "" && r.Expression != "":
		return nil, fmt.Errorf("request has both a spec and an expression")
	case r.Spec != "":
		sp, err := s.Spec(ctx, r.Spec)
		if err != nil {
			return nil, err
		}
		return sp.Automaton()
	case r.Expression != "":
		e, err := syntax.Parse(r.Expression)
		if err != nil {
			return nil, err
		}
		if err = syntax.CheckCost(e, s.MaxCost); err != nil {
			return nil, err
		}
		return core.Compile(e), nil
	}
	return nil, fmt.Errorf("request needs a spec or an expression")
}

// Process answers the Request.
func (s *Service) Process(ctx context.Context, r *Request) *Result {
	s.Logf("Process %s", JShort(r))

	res := &Result{
		ID:   r.ID,
		Spec: r.Spec,
	}

	a, err := s.automaton(ctx, r)
	if err != nil {
		res.Error = err.Error()
		s.Logf("Process %s error %s", r.ID, err)
		return res
	}

	if r.Walk {
		res.Walked = a.Walk(r.Sequence)
		res.Matches = res.Walked.Accepted
	} else {
		res.Matches = a.Matches(r.Sequence)
	}

	return res
}

// Run starts the Couplings and serves them until their input ends
// or the context is done.
func (s *Service) Run(ctx context.Context, c Couplings) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	err := c.Serve(ctx, s)
	if serr := c.Stop(context.Background()); err == nil {
		err = serr
	}
	return err
}
