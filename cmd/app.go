// ABOUTME: Wires configuration, storage, gateway, client and session for commands
// ABOUTME: One app per process; commands receive it instead of reaching for globals

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/mycask/cli/internal/client"
	"github.com/markalston/mycask/cli/internal/config"
	"github.com/markalston/mycask/cli/internal/credstore"
	"github.com/markalston/mycask/cli/internal/gateway"
	"github.com/markalston/mycask/cli/internal/logger"
	"github.com/markalston/mycask/cli/internal/session"
)

// app holds the core components shared by every command
type app struct {
	cfg     *config.Config
	store   *credstore.Layered
	api     *client.Client
	session *session.Controller

	logCloser io.Closer
}

// newApp builds the component graph. The API URL comes from the --api-url
// flag, then MYCASK_API_URL, then the default.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	logCloser, err := logger.Init(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log disabled: %v\n", err)
	}

	proxyOpt, err := gateway.WithAllProxy(cfg.AllProxy)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("MYCASK_ALL_PROXY: %w", err)
	}

	store := credstore.NewLayered(credstore.NewFileStore(cfg.ConfigDir))
	gw := gateway.New(cfg.APIURL, store, gateway.WithTimeout(cfg.HTTPTimeout), proxyOpt)
	api := client.New(gw)

	return &app{
		cfg:       cfg,
		store:     store,
		api:       api,
		session:   session.New(api, store),
		logCloser: logCloser,
	}, nil
}

// Close tears down the session and flushes the log
func (a *app) Close() {
	a.session.Close()
	a.logCloser.Close()
}

// runWithApp is the Run body shared by commands: it wires the app, installs
// signal handling and exits with the code returned by fn
func runWithApp(fn func(ctx context.Context, a *app, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}

	exitCode := fn(ctx, a, os.Stdout)
	a.Close()
	if exitCode != exitOK {
		os.Exit(exitCode)
	}
}
