package main

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/porticus-lab/go-qr-pdf/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "qrpdf",
		Short: "Write QR codes as single-page PDF files",
		Long: `qrpdf encodes text as a QR code and writes it into a one-page PDF named
QR_Code_<content>.pdf. It can also inspect the layout of a PDF and decode
the QR code back out of a PDF or image file.

Settings come from defaults, a .env file, the YAML file given with --config
and QRPDF_* environment variables, in that order. Flags override them all.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "log format: text, json")

	root.AddCommand(
		newGenerateCmd(a),
		newInspectCmd(a),
		newDecodeCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	a.cfg = cfg
	a.logger, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	return err
}

// newLogger returns a slog logger writing to w. Text output goes through
// charmbracelet/log.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "json":
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	case "", "text":
		lvl, err := charmlog.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q", level)
		}
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			Level:           lvl,
			ReportTimestamp: true,
		})), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Printing the version must work even with a broken config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qrpdf %s\n", buildVersion())
		},
	}
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "devel"
}
