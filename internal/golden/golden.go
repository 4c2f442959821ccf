// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package golden provides a mechanism for managing test corpora: table
// driven tests where the "table" is a directory of case files with golden
// outputs stored alongside them.
package golden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus describes a test corpus rooted in the filesystem.
type Corpus struct {
	// Root is the test data directory, relative to the file that calls
	// [Corpus.Run].
	Root string

	// Refresh is an environment variable to consult for "refresh" mode. If
	// the variable is set, it is interpreted as a glob; goldens for matching
	// test cases are regenerated from the current output instead of
	// compared, and the run fails so refreshed goldens are never mistaken
	// for a passing test.
	Refresh string

	// Extension is the file extension (without a dot) of files that define a
	// test case.
	Extension string

	// Outputs are the extensions of each golden output. A missing golden
	// file is treated as expecting empty output.
	Outputs []string

	// Test executes one test case, filling outputs with one string per
	// entry of Outputs.
	Test func(t *testing.T, path, text string, outputs []string)
}

// Run executes every test case in the corpus as a subtest of t.
func (c Corpus) Run(t *testing.T) {
	testDir := callerDir()
	root := filepath.Join(testDir, c.Root)

	var cases []string
	err := filepath.Walk(root, func(p string, fi fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && strings.TrimPrefix(path.Ext(p), ".") == c.Extension {
			cases = append(cases, p)
		}
		return nil
	})
	if err != nil {
		t.Fatal("golden: error while walking testdata:", err)
	}

	refresh := os.Getenv(c.Refresh)
	if c.Refresh != "" && refresh != "" {
		if !doublestar.ValidatePattern(refresh) {
			t.Fatalf("golden: invalid glob %q in $%s", refresh, c.Refresh)
		}
		t.Logf("golden: refreshing goldens matching %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, casePath := range cases {
		name, _ := filepath.Rel(testDir, casePath)
		t.Run(name, func(t *testing.T) {
			text, err := os.ReadFile(casePath)
			if err != nil {
				t.Fatalf("golden: error while loading case %q: %v", casePath, err)
			}

			outputs := make([]string, len(c.Outputs))
			c.Test(t, name, string(text), outputs)

			refreshThis, _ := doublestar.Match(refresh, filepath.ToSlash(name))
			for i, ext := range c.Outputs {
				goldenPath := fmt.Sprint(casePath, ".", ext)
				if refreshThis {
					c.write(t, goldenPath, outputs[i])
					continue
				}

				want, err := os.ReadFile(goldenPath)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("golden: error while loading golden %q: %v", goldenPath, err)
					continue
				}
				if diff := diffStrings(outputs[i], string(want)); diff != "" {
					t.Errorf("golden: output mismatch for %q:\n%s", goldenPath, diff)
				}
			}
		})
	}
}

func (c Corpus) write(t *testing.T, path, text string) {
	if text == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Errorf("golden: error while deleting golden %q: %v", path, err)
		}
		return
	}
	if err := os.WriteFile(path, []byte(text), 0o666); err != nil {
		t.Errorf("golden: error while writing golden %q: %v", path, err)
	}
}

func diffStrings(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func callerDir() string {
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		panic("golden: could not determine test file's directory")
	}
	return filepath.Dir(file)
}
