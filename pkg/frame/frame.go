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

// Package frame implements the text encoding of IPTV frames.
//
// A frame is a heartbeat carrying a sequence number and the wall-clock time
// at which it was sent. On the wire it is a single UTF-8 line without
// trailing newline:
//
//	IPTV Frame #42 - Timestamp: 1234.50
//
// The timestamp is rendered in seconds with two decimals, so decoding
// recovers the sequence number exactly and the timestamp up to 10ms.
package frame

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scionproto/mcastlab/pkg/private/serrors"
)

const (
	prefix    = "IPTV Frame #"
	separator = " - Timestamp: "
)

var (
	// ErrMalformed indicates a payload that is not a frame.
	ErrMalformed = errors.New("malformed frame")
	// ErrNotUTF8 indicates a payload that is not valid UTF-8 text.
	ErrNotUTF8 = errors.New("payload is not valid UTF-8")
)

// Frame is a single transmitted unit.
type Frame struct {
	Seq       uint64  `json:"seq" yaml:"seq"`
	Timestamp float64 `json:"timestamp" yaml:"timestamp"`
}

// New returns the frame with sequence number seq captured at t.
func New(seq uint64, t time.Time) Frame {
	return Frame{Seq: seq, Timestamp: Seconds(t)}
}

// Seconds returns t as fractional seconds since the Unix epoch.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Encode returns the wire representation of f.
func (f Frame) Encode() []byte {
	return f.AppendTo(nil)
}

// AppendTo appends the wire representation of f to b.
func (f Frame) AppendTo(b []byte) []byte {
	b = append(b, prefix...)
	b = strconv.AppendUint(b, f.Seq, 10)
	b = append(b, separator...)
	return strconv.AppendFloat(b, f.Timestamp, 'f', 2, 64)
}

func (f Frame) String() string {
	return string(f.Encode())
}

// Text returns the payload as text. It fails with ErrNotUTF8 if the payload
// is not valid UTF-8.
func Text(payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", serrors.Join(ErrNotUTF8, nil, "len", len(payload))
	}
	return string(payload), nil
}

// Decode parses a payload produced by Encode. The sequence number must be a
// plain decimal and the timestamp a finite decimal number. Any deviation is
// reported as ErrMalformed or ErrNotUTF8.
func Decode(payload []byte) (Frame, error) {
	s, err := Text(payload)
	if err != nil {
		return Frame{}, err
	}
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return Frame{}, serrors.Join(ErrMalformed, nil, "reason", "missing prefix")
	}
	seqText, tsText, ok := strings.Cut(rest, separator)
	if !ok {
		return Frame{}, serrors.Join(ErrMalformed, nil, "reason", "missing timestamp")
	}
	if !isDigits(seqText) {
		return Frame{}, serrors.Join(ErrMalformed, nil, "reason", "invalid sequence number",
			"seq", seqText)
	}
	seq, err := strconv.ParseUint(seqText, 10, 64)
	if err != nil {
		return Frame{}, serrors.Join(ErrMalformed, err, "seq", seqText)
	}
	if !isDecimal(tsText) {
		return Frame{}, serrors.Join(ErrMalformed, nil, "reason", "invalid timestamp",
			"timestamp", tsText)
	}
	ts, err := strconv.ParseFloat(tsText, 64)
	if err != nil || math.IsInf(ts, 0) {
		return Frame{}, serrors.Join(ErrMalformed, err, "timestamp", tsText)
	}
	return Frame{Seq: seq, Timestamp: ts}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isDecimal accepts an optional minus sign followed by digits with at most
// one decimal point.
func isDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, hasPoint := strings.Cut(s, ".")
	if !isDigits(intPart) {
		return false
	}
	return !hasPoint || isDigits(fracPart)
}
