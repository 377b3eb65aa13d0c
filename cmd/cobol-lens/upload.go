// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cobol-lens/internal/controller"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

// errRejected marks a file the validator turned away.
var errRejected = errors.New("file rejected")

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Submit one COBOL source for conversion",
	Long: `Upload validates the file extension (.cob or .txt), sends the file to the
backend, shows progress while the conversion runs, and then hands the results
location to the configured navigator.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	if info, err := os.Stat(path); err != nil {
		return err
	} else if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	outcomes := make(chan controller.Outcome, 1)
	c := a.newController(func(o controller.Outcome) { outcomes <- o })
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	file := types.CandidateFromPath(path)
	c.Pick(&file)

	select {
	case o := <-outcomes:
		if o.Kind == controller.OutcomeNavigated {
			return <-errc
		}
		cancel()
		<-errc
		if o.Kind == controller.OutcomeRejected {
			return fmt.Errorf("%s: %w", o.File, errRejected)
		}
		return o.Err
	case err := <-errc:
		return err
	}
}
