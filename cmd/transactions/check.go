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

package transactions

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdlab/go-pdcap/pkg/capture"
)

// NewCheckCommand verifies the control-then-bulk phase ordering of a capture
func NewCheckCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the control phase ordering of a capture export",
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := capture.ReadFramesFile(file)
			if err != nil {
				return err
			}
			capture.SortFrames(frames)
			if err := capture.CheckControlPhase(frames); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d frames, control phase intact\n", len(frames))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, FileOptionName, "", "Path to the JSONL capture export")
	cmd.MarkFlagRequired(FileOptionName)

	return cmd
}
