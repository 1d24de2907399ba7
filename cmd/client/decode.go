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

package client

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdlab/go-pdcap/pkg/command"
	"github.com/pdlab/go-pdcap/pkg/config"
)

func NewDecodeCommand() *cobra.Command {
	var raw bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode an application packet server-side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			hexData := strings.TrimSpace(args[0])
			if raw {
				rawPacket, err := apiClient.DecodeRawPacket(hexData)
				if err != nil {
					return err
				}
				return printJSON(cmd, rawPacket)
			}
			packet, err := apiClient.DecodePacket(hexData)
			if err != nil {
				return err
			}
			return printJSON(cmd, packet)
		},
	}
	cmd.Flags().BoolVar(&raw, RawOptionName, false, "Decode header only, skip logical packet chain validation")

	return cmd
}
