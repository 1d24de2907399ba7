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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdlab/go-pdcap/pkg/capture"
	"github.com/pdlab/go-pdcap/pkg/config"
	"github.com/pdlab/go-pdcap/pkg/log"
)

// NewReconstructCommand groups the frames of a JSONL capture export into
// transactions and prints them as JSON
func NewReconstructCommand() *cobra.Command {
	var file, session string
	var check bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Reconstruct transactions from a capture export",
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := capture.ReadFramesFile(file)
			if err != nil {
				return err
			}
			capture.SortFrames(frames)

			if check {
				if err := capture.CheckControlPhase(frames); err != nil {
					return err
				}
			}

			transactions := capture.Reconstruct(frames)
			log.Info("Reconstructed %d transactions from %d frames", len(transactions), len(frames))

			if session != "" {
				store, err := capture.NewStore(cfg.DBPath())
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.SaveSession(session, transactions); err != nil {
					return err
				}
			}

			data, err := json.MarshalIndent(transactions, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, FileOptionName, "", "Path to the JSONL capture export")
	cmd.Flags().StringVar(&session, SessionOptionName, "", "Session name to persist transactions under")
	cmd.Flags().BoolVar(&check, CheckOptionName, false, "Fail if control frames appear after the control phase")
	cmd.MarkFlagRequired(FileOptionName)

	return cmd
}
