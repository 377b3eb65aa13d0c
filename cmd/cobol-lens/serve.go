// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cobol-lens/internal/logging"
	"github.com/pdiddy/cobol-lens/internal/stubserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local development backend",
	Long: `Serve starts an in-memory backend that implements the upload and results
API. Its conversions are placeholders that only outline the program's
divisions; it exists for trying the client without the real service.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		maxBytes, _ := cmd.Flags().GetInt64("max-bytes")

		log, err := logging.New(cmd.ErrOrStderr(), viper.GetString("log_level"))
		if err != nil {
			return err
		}
		srv := stubserver.New(stubserver.WithLogger(log), stubserver.WithMaxBytes(maxBytes))
		return srv.ListenAndServe(cmd.Context(), addr, func(a net.Addr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving on http://%s\n", a)
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:5000", "listen address")
	serveCmd.Flags().Int64("max-bytes", stubserver.DefaultMaxBytes, "maximum upload size in bytes")

	rootCmd.AddCommand(serveCmd)
}
