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

package tools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var inlinePattern = regexp.MustCompile(`%inline *\("([^"]*)"\)`)

// MaxInlineDepth bounds nested inlining.
var MaxInlineDepth = 8

// Inline replaces '%inline("NAME")' with f(NAME).  Replacements are
// themselves inlined, up to MaxInlineDepth levels.
//
// Spec files use this to keep long predicate sources in their own
// files.
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	return inline(bs, f, 0)
}

func inline(bs []byte, f func(string) ([]byte, error), depth int) ([]byte, error) {
	if MaxInlineDepth < depth {
		return nil, fmt.Errorf("inlining deeper than %d", MaxInlineDepth)
	}

	locs := inlinePattern.FindAllSubmatchIndex(bs, -1)
	if locs == nil {
		return bs, nil
	}

	acc := make([]byte, 0, len(bs))
	i := 0
	for _, loc := range locs {
		acc = append(acc, bs[i:loc[0]]...)
		name := string(bs[loc[2]:loc[3]])
		replacement, err := f(name)
		if err != nil {
			return nil, err
		}
		if replacement, err = inline(replacement, f, depth+1); err != nil {
			return nil, err
		}
		acc = append(acc, replacement...)
		i = loc[1]
	}
	return append(acc, bs[i:]...), nil
}

// DirInliner returns an Inline function that reads files relative to
// dir.  Absolute names and names that escape dir are errors.
func DirInliner(dir string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		if filepath.IsAbs(name) || strings.HasPrefix(filepath.Clean(name), "..") {
			return nil, fmt.Errorf("bad inline name %q", name)
		}
		return os.ReadFile(filepath.Join(dir, name))
	}
}

// ReadFileWithInlines is a replacement for os.ReadFile that adds
// Inline()ing based on the directory obtained from the filename.
func ReadFileWithInlines(filename string) ([]byte, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Inline(bs, DirInliner(filepath.Dir(filename)))
}

// ReadAllWithInlines is a replacement for io.ReadAll that adds
// Inline()ing based on the given directory.
func ReadAllWithInlines(in io.Reader, dir string) ([]byte, error) {
	bs, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return Inline(bs, DirInliner(dir))
}
