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

package consumer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"
)

// Summary is the final report of a consumer run.
type Summary struct {
	Group string `json:"group" yaml:"group"`
	Stats `yaml:",inline"`
}

// Human writes the summary in a human readable form. Counters that indicate
// a problem are highlighted if colored is set.
func (s Summary) Human(w io.Writer, colored bool) {
	noColor := color.New()
	noColor.DisableColor()
	keys, good, bad := noColor, noColor, noColor
	if colored {
		keys = color.New(color.FgHiCyan)
		good = color.New(color.FgGreen)
		bad = color.New(color.FgRed)
	}
	problem := func(v uint64) string {
		if v == 0 {
			return good.Sprint(v)
		}
		return bad.Sprint(v)
	}
	fmt.Fprintf(w, "Received %d frames from %s\n", s.Received, s.Group)
	rows := [][]string{
		{keys.Sprint("Bytes"), fmt.Sprint(s.Bytes)},
		{keys.Sprint("In order"), good.Sprint(s.InOrder)},
		{keys.Sprint("Out of order"), problem(s.OutOfOrder)},
		{keys.Sprint("Duplicates"), problem(s.Duplicates)},
		{keys.Sprint("Malformed"), problem(s.Malformed)},
		{keys.Sprint("Truncated"), problem(s.Truncated)},
		{keys.Sprint("Decode errors"), problem(s.DecodeErrors)},
		{keys.Sprint("Kernel drops"), problem(s.KernelDrops)},
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

// JSON writes the summary as an indented JSON object.
func (s Summary) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

// YAML writes the summary as a YAML document.
func (s Summary) YAML(w io.Writer) error {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
