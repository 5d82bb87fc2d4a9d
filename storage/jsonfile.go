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

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"
)

// JSONFile is a primitive Storage that keeps every spec source in
// one JSON file: an object from names to sources.
//
// Not glamorous or efficient.  Every Put and Delete rewrites the
// whole file.
type JSONFile struct {
	Filename string

	mu sync.Mutex
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{
		Filename: filename,
	}
}

func (s *JSONFile) read() (map[string]string, error) {
	srcs := make(map[string]string)
	js, err := os.ReadFile(s.Filename)
	if errors.Is(err, fs.ErrNotExist) {
		return srcs, nil
	}
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(js, &srcs); err != nil {
		return nil, err
	}
	return srcs, nil
}

func (s *JSONFile) write(srcs map[string]string) error {
	js, err := json.MarshalIndent(srcs, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.Filename + ".tmp"
	if err = os.WriteFile(tmp, js, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Filename)
}

func (s *JSONFile) Put(ctx context.Context, name string, src []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	srcs, err := s.read()
	if err != nil {
		return err
	}
	srcs[name] = string(src)
	return s.write(srcs)
}

func (s *JSONFile) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	srcs, err := s.read()
	if err != nil {
		return nil, err
	}
	src, have := srcs[name]
	if !have {
		return nil, &NotFound{name}
	}
	return []byte(src), nil
}

func (s *JSONFile) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	srcs, err := s.read()
	if err != nil {
		return err
	}
	if _, have := srcs[name]; !have {
		return nil
	}
	delete(srcs, name)
	return s.write(srcs)
}

func (s *JSONFile) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	srcs, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(srcs))
	for name := range srcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
