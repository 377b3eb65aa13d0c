// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cobol-lens/internal/controller"
	"github.com/pdiddy/cobol-lens/internal/httputil"
	"github.com/pdiddy/cobol-lens/internal/logging"
	"github.com/pdiddy/cobol-lens/internal/navigate"
	"github.com/pdiddy/cobol-lens/internal/progress"
	"github.com/pdiddy/cobol-lens/internal/secrets"
	"github.com/pdiddy/cobol-lens/internal/terminal"
	"github.com/pdiddy/cobol-lens/internal/transport"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

// loadConfig merges defaults, the config file, COBOL_LENS_* variables, and
// flags, then validates the result. The backend token comes from the
// secrets directory only.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Token = s.Get(secrets.BackendToken, cfg.Token)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// app holds the collaborators shared by the upload and watch commands.
type app struct {
	cfg    types.Config
	log    logging.Logger
	client *transport.Client
	term   *terminal.Terminal
	nav    controller.Navigator
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	client := transport.New(httputil.NewClient(cfg.HTTPConfig), cfg.HTTPConfig)
	nav, err := navigate.New(cfg.Navigate, client, client, cfg.ResultsDir, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		term:   terminal.New(cmd.ErrOrStderr(), cmd.InOrStdin(), interactive(cmd.InOrStdin())),
		nav:    nav,
	}, nil
}

// newController builds a fresh controller; each one serves a single page
// lifetime and ends with a navigation.
func (a *app) newController(onOutcome func(controller.Outcome)) *controller.Controller {
	return controller.New(controller.Options{
		View:      a.term,
		Notifier:  a.term,
		Navigator: a.nav,
		Ticker:    progress.New(a.cfg.ProgressInterval),
		Submitter: a.client,
		Logger:    a.log,
		OnOutcome: onOutcome,
	})
}

func interactive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && terminal.IsInteractive(f)
}
