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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	RawOptionName     = "raw"
	FileOptionName    = "file"
	SessionOptionName = "session"
)

// NewCommand groups the subcommands talking to a running analysis server
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Send requests to a running analysis server",
	}
	cmd.AddCommand(NewDecodeCommand())
	cmd.AddCommand(NewEventsCommand())
	cmd.AddCommand(NewReconstructCommand())
	cmd.AddCommand(NewSessionsCommand())
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
