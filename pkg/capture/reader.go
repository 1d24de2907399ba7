/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package capture

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdlab/go-pdcap/pkg/log"
)

// ReadFrames parses a JSONL frame export, one frame object per line. Blank
// lines and comment lines (# or //) are skipped; lines that fail to parse are
// skipped with a warning so one bad record does not lose a whole capture.
func ReadFrames(r io.Reader) ([]*CaptureFrame, error) {
	var frames []*CaptureFrame
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		frame := &CaptureFrame{}
		if err := json.Unmarshal([]byte(line), frame); err != nil {
			log.Warning("Skipping invalid frame record on line %d: %s", lineNum, err)
			continue
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// ReadFramesFile reads a JSONL frame export from disk
func ReadFramesFile(path string) ([]*CaptureFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadFrames(file)
}

// SortFrames orders frames by timestamp, then frame number, keeping the
// input order of exact ties. Reconstruct requires this ordering.
func SortFrames(frames []*CaptureFrame) {
	sort.SliceStable(frames, func(i, j int) bool {
		if frames[i].Timestamp != frames[j].Timestamp {
			return frames[i].Timestamp < frames[j].Timestamp
		}
		return frames[i].FrameNumber < frames[j].FrameNumber
	})
}

// WriteFrames writes frames back out as JSONL in slice order
func WriteFrames(w io.Writer, frames []*CaptureFrame) error {
	enc := json.NewEncoder(w)
	for _, f := range frames {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return nil
}
