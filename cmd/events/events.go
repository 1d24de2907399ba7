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

package events

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdlab/go-pdcap/pkg/layers"
	"github.com/pdlab/go-pdcap/pkg/log"
)

// NewCommand extracts PD events from a hex-encoded telemetry blob
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events <hex>",
		Short: "Extract PD events from a telemetry blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			extraction := layers.ExtractEvents(blob)
			if extraction.Partial() {
				log.Warning("Extraction stopped early at offset %d: %s", extraction.Offset, extraction.Stop)
			}
			data, err := json.MarshalIndent(extraction, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	return cmd
}
