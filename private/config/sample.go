// Copyright 2026 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// CtxMap carries values that samplers can substitute into their output.
type CtxMap map[string]string

// WriteSample writes the samples of all samplers to dst. TableSamplers are
// preceded by their table header and indented.
func WriteSample(dst io.Writer, path Path, ctx CtxMap, samplers ...Sampler) {
	var buf bytes.Buffer
	for _, s := range samplers {
		buf.Reset()
		ts, ok := s.(TableSampler)
		if !ok {
			s.Sample(&buf, path, ctx)
			if _, err := io.Copy(dst, &buf); err != nil {
				panic(fmt.Sprintf("writing sample: %v", err))
			}
			continue
		}
		p := path.Extend(ts.ConfigName())
		WriteString(dst, fmt.Sprintf("\n[%s]", strings.Join(p, ".")))
		ts.Sample(&buf, p, ctx)
		indent(dst, &buf)
	}
}

// WriteString writes s to dst and panics on failure.
func WriteString(dst io.Writer, s string) {
	if _, err := io.WriteString(dst, s); err != nil {
		panic(fmt.Sprintf("writing sample: %v", err))
	}
}

func indent(dst io.Writer, src io.Reader) {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Fprintln(dst)
			continue
		}
		fmt.Fprintf(dst, "    %s\n", line)
	}
}
