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

package decode

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdlab/go-pdcap/pkg/layers"
)

const (
	RawOptionName = "raw"
)

// NewCommand decodes a hex-encoded application packet given as the argument
func NewCommand() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode an application packet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if raw {
				rawPacket, err := layers.DecodeRawPacket(data)
				if err != nil {
					return err
				}
				return printJSON(cmd, rawPacket)
			}
			packet, err := layers.DecodePacket(data)
			if err != nil {
				return err
			}
			return printJSON(cmd, packet)
		},
	}
	cmd.Flags().BoolVar(&raw, RawOptionName, false, "Decode header only, skip logical packet chain validation")

	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
