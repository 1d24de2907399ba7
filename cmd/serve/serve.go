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

package serve

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdlab/go-pdcap/pkg/capture"
	"github.com/pdlab/go-pdcap/pkg/config"
	"github.com/pdlab/go-pdcap/pkg/srv"
)

const (
	HostOptionName = "host"
	PortOptionName = "port"
)

// NewCommand starts the analysis API server
func NewCommand() *cobra.Command {
	var host string
	var port int
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start analysis API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				cfg.Host = host
			}
			if port != 0 {
				cfg.Port = port
			}
			store, err := capture.NewStore(cfg.DBPath())
			if err != nil {
				return err
			}
			defer store.Close()

			server, err := srv.NewApiServer(context.Background(), cfg, store)
			if err != nil {
				return err
			}
			return server.Run()
		},
	}
	cmd.Flags().StringVar(&host, HostOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultApiHost))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Port number to bind. E.g. %d", config.DefaultApiPort))

	return cmd
}
