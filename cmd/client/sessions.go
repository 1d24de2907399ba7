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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdlab/go-pdcap/pkg/command"
	"github.com/pdlab/go-pdcap/pkg/config"
)

// NewSessionsCommand lists persisted sessions, or prints the transactions
// of one session when a name is given
func NewSessionsCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "sessions [name]",
		Short: "List persisted sessions or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if len(args) == 1 {
				transactions, err := apiClient.SessionTransactions(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, transactions)
			}
			sessions, err := apiClient.Sessions()
			if err != nil {
				return err
			}
			for _, session := range sessions {
				fmt.Fprintln(cmd.OutOrStdout(), session)
			}
			return nil
		},
	}
	return cmd
}
