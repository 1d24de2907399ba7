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
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/pdlab/go-pdcap/pkg/command"
	"github.com/pdlab/go-pdcap/pkg/config"
)

func NewReconstructCommand() *cobra.Command {
	var file, session string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Reconstruct transactions from a capture export server-side",
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := ioutil.ReadFile(file)
			if err != nil {
				return err
			}
			apiClient := command.NewApiClient(cfg)
			transactions, err := apiClient.Reconstruct(frames, session)
			if err != nil {
				return err
			}
			return printJSON(cmd, transactions)
		},
	}
	cmd.Flags().StringVar(&file, FileOptionName, "", "Path to the JSONL capture export")
	cmd.Flags().StringVar(&session, SessionOptionName, "", "Session name to persist transactions under")
	cmd.MarkFlagRequired(FileOptionName)

	return cmd
}
