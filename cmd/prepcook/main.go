package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cguess/prepcook/internal/auth"
	"github.com/cguess/prepcook/internal/config"
	"github.com/cguess/prepcook/internal/gdocs"
	"github.com/cguess/prepcook/internal/ui"
	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := newExportCmd(opts)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultPath, "YAML config file (optional)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newAuthCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// reportError prints a failed command's error, with a hint for fetch errors.
func reportError(w io.Writer, err error) {
	var fe *gdocs.FetchError
	switch {
	case errors.As(err, &fe):
		ui.Failure(w, err, "Error fetching document. "+fe.Hint())
	case errors.Is(err, auth.ErrNoToken):
		ui.Failure(w, err, "Not signed in.")
	case errors.Is(err, ui.ErrCancelled):
		fmt.Fprintln(w, "Cancelled.")
	default:
		ui.Failure(w, err, "")
	}
}

// loadConfig layers flags that were set explicitly over the config file
// and environment.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("solr") {
		cfg.SolrOutput, _ = flags.GetString("solr")
	}
	if flags.Changed("chewy") {
		cfg.ChewyOutput, _ = flags.GetString("chewy")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newDocsClient authenticates with a static token when one is configured,
// otherwise with the cached OAuth token. prompt receives the consent URL
// when interactive authorization is allowed.
func newDocsClient(ctx context.Context, cfg config.Config, log *slog.Logger, prompt io.Writer) (*gdocs.Client, error) {
	var provider auth.Provider
	if cfg.AccessToken != "" {
		provider = auth.StaticProvider{AccessToken: cfg.AccessToken}
	} else {
		provider = &auth.FileProvider{
			CredentialsFile: cfg.CredentialsFile,
			TokenFile:       cfg.TokenFile,
			Scopes:          cfg.Scopes,
			Interactive:     prompt != nil,
			Flow:            &auth.LoopbackFlow{Out: prompt, OpenBrowser: openBrowser, Timeout: 5 * time.Minute},
			Log:             log,
		}
	}

	ts, err := provider.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return gdocs.NewClient(ctx, ts, gdocs.Options{
		Endpoint:  cfg.DocsEndpoint,
		Timeout:   cfg.FetchTimeout,
		UserAgent: "prepcook",
	})
}

// openBrowser opens url in the default browser.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
