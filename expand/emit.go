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

package expand

import "strings"

// Aggregate concatenates synthesized units, in enumeration order, into the
// single output fragment that replaces the annotated function.
//
// The fragment contains only ordinary trait-implementation syntax: no trace
// of the annotation, and no remnant of the original function definition.
// Output is deterministic for identical input; this stage performs no
// validation of its own.
func Aggregate(units []SynthesizedUnit) string {
	parts := make([]string, len(units))
	for i, unit := range units {
		parts[i] = unit.Format()
	}
	return strings.Join(parts, "\n\n") + "\n"
}
