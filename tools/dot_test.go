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

package tools

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/regular/core"
)

func TestDot(t *testing.T) {
	a := core.Compile(core.TurnstileExpression())
	walked := a.Walk([]string{"coin", "push"})
	active := walked.Strides[0].Active

	var buf bytes.Buffer
	if err := Dot(a, &buf, &DotOpts{Active: active, Scopes: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "digraph G {") || !strings.HasSuffix(out, "}\n") {
		t.Fatal(out)
	}
	if !strings.Contains(out, "subgraph cluster_c1") {
		t.Fatal("no clusters")
	}
	if !strings.Contains(out, "doublecircle") {
		t.Fatal("no acceptance node")
	}
	if !strings.Contains(out, "&#34;coin&#34;") {
		t.Fatal("no coin label")
	}
	if !strings.Contains(out, `arrowtail="odot"`) {
		t.Fatal("no negative edges")
	}
	if 0 < len(active) && !strings.Contains(out, `color="red"`) {
		t.Fatal("no active nodes")
	}
	if strings.Count(out, "{") != strings.Count(out, "}") {
		t.Fatal("unbalanced")
	}
}

func TestDotNoScopes(t *testing.T) {
	a := core.Compile(core.TurnstileExpression())

	var buf bytes.Buffer
	if err := Dot(a, &buf, &DotOpts{MaxLabel: 3}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "cluster") {
		t.Fatal("unexpected cluster")
	}
	for _, n := range a.Nodes() {
		if !strings.Contains(buf.String(), "  "+n.String()+" [") {
			t.Fatalf("missing %s", n)
		}
	}
}

func TestPNG(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip(err)
	}

	basename := filepath.Join(t.TempDir(), "turnstile")
	a := core.Compile(core.TurnstileExpression())
	pngname, err := PNG(a, basename, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = os.Stat(pngname); err != nil {
		t.Fatal(err)
	}
}
