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

// opimps is a batch expander: it rewrites every #[opimps::...] annotation in
// the source files matching the given glob patterns.
//
// Usage:
//
//	opimps [-w] [-jobs n] pattern...
//
// Without -w the expanded source is written to stdout; with -w each file is
// rewritten in place. Files are independent, so they are expanded in
// parallel.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/T101N/opimps"
)

func main() {
	write := flag.Bool("w", false, "rewrite files in place instead of printing to stdout")
	jobs := flag.Int("jobs", runtime.GOMAXPROCS(0), "maximum number of files to expand concurrently")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: opimps [-w] [-jobs n] pattern...")
		os.Exit(2)
	}

	paths, err := resolve(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "opimps:", err)
		os.Exit(2)
	}

	var group errgroup.Group
	group.SetLimit(max(*jobs, 1))

	var mu sync.Mutex // Guards stdout so files are not interleaved.
	for _, path := range paths {
		path := path
		group.Go(func() error {
			text, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			expanded, err := opimps.ProcessSource(path, string(text))
			if err != nil {
				return err
			}

			if *write {
				if expanded == string(text) {
					return nil
				}
				return os.WriteFile(path, []byte(expanded), 0o666)
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = os.Stdout.WriteString(expanded)
			return err
		})
	}

	if err := group.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "opimps:", err)
		os.Exit(1)
	}
}

// resolve expands the glob patterns into a sorted, de-duplicated file list.
func resolve(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
