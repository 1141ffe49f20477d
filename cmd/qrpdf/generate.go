package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	qrpdf "github.com/porticus-lab/go-qr-pdf"
	"github.com/porticus-lab/go-qr-pdf/internal/config"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [flags] <content>",
		Short: "Write <content> as a QR code PDF",
		Example: `  qrpdf generate HELLO
  qrpdf generate -s 144 -o ./codes --ec H "https://example.com"
  qrpdf generate --renderer chrome --page letter --landscape HELLO`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyGenerateFlags(cmd, a.cfg); err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			opts, closer, err := generatorOptions(a)
			if err != nil {
				return err
			}
			g, err := qrpdf.New(opts...)
			if err != nil {
				if closer != nil {
					closer.Close()
				}
				return err
			}
			defer g.Close()

			res, err := g.Generate(cmd.Context(), args[0], a.cfg.Size, a.cfg.OutputDir)
			if err != nil {
				return err
			}
			a.logger.Info("qr pdf written", "path", res.Path(), "modules", res.Modules(), "bytes", res.Len())
			fmt.Fprintln(cmd.OutOrStdout(), res.Path())
			return nil
		},
	}

	f := cmd.Flags()
	f.IntP("size", "s", 0, "drawn width and height of the code in points")
	f.StringP("out", "o", "", "output directory (must exist)")
	f.String("encoder", "", "QR encoder: zxing, barcode, skip2")
	f.String("renderer", "", "PDF renderer: gopdf, chrome")
	f.String("ec", "", "error correction level: L, M, Q, H")
	f.Int("margin", 0, "quiet zone in modules")
	f.Int("resolution", 0, "raster resolution hint in pixels")
	f.Bool("verify", false, "decode the raster before writing and fail on mismatch")
	f.String("page", "", "paper size: A3, A4, A5, letter, legal, tabloid")
	f.Bool("landscape", false, "use landscape orientation")
	return cmd
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	var err error
	set := func(name string, fn func() error) {
		if err == nil && f.Changed(name) {
			err = fn()
		}
	}
	set("size", func() (e error) { cfg.Size, e = f.GetInt("size"); return })
	set("out", func() (e error) { cfg.OutputDir, e = f.GetString("out"); return })
	set("encoder", func() (e error) { cfg.Encoder, e = f.GetString("encoder"); return })
	set("renderer", func() (e error) { cfg.Renderer, e = f.GetString("renderer"); return })
	set("ec", func() (e error) { cfg.ErrorCorrection, e = f.GetString("ec"); return })
	set("margin", func() (e error) { cfg.Margin, e = f.GetInt("margin"); return })
	set("resolution", func() (e error) { cfg.Resolution, e = f.GetInt("resolution"); return })
	set("verify", func() (e error) { cfg.Verify, e = f.GetBool("verify"); return })
	set("page", func() (e error) { cfg.Page.Size, e = f.GetString("page"); return })
	set("landscape", func() error {
		landscape, e := f.GetBool("landscape")
		if landscape {
			cfg.Page.Orientation = "landscape"
		} else {
			cfg.Page.Orientation = "portrait"
		}
		return e
	})
	return err
}

// generatorOptions turns a validated config into generator options. The
// returned closer, if any, owns a renderer that must be released when the
// generator cannot be built.
func generatorOptions(a *app) ([]qrpdf.Option, io.Closer, error) {
	cfg := a.cfg
	enc, err := qrpdf.EncoderByName(cfg.Encoder)
	if err != nil {
		return nil, nil, err
	}
	level, err := qrpdf.ParseECLevel(cfg.ErrorCorrection)
	if err != nil {
		return nil, nil, err
	}
	page, err := cfg.PageConfig()
	if err != nil {
		return nil, nil, err
	}

	opts := []qrpdf.Option{
		qrpdf.WithEncoder(enc),
		qrpdf.WithErrorCorrection(level),
		qrpdf.WithMargin(cfg.Margin),
		qrpdf.WithResolution(cfg.Resolution),
		qrpdf.WithPageConfig(page),
		qrpdf.WithFileMode(os.FileMode(cfg.FileMode)),
		qrpdf.WithLogger(a.logger),
	}
	if cfg.Verify {
		opts = append(opts, qrpdf.WithVerify())
	}

	if strings.EqualFold(cfg.Renderer, qrpdf.RendererChrome) {
		var copts []qrpdf.ChromeOption
		if cfg.Chrome.Path != "" {
			copts = append(copts, qrpdf.WithChromePath(cfg.Chrome.Path))
		}
		if cfg.Chrome.NoSandbox {
			copts = append(copts, qrpdf.WithNoSandbox())
		}
		if cfg.Chrome.AutoDownload {
			copts = append(copts, qrpdf.WithAutoDownload())
		}
		if cfg.Chrome.Timeout.Duration > 0 {
			copts = append(copts, qrpdf.WithTimeout(cfg.Chrome.Timeout.Duration))
		}
		r, err := qrpdf.NewChromeRenderer(copts...)
		if err != nil {
			return nil, nil, err
		}
		return append(opts, qrpdf.WithRenderer(r)), r, nil
	}
	return append(opts, qrpdf.WithRenderer(qrpdf.GoPDFRenderer{})), nil, nil
}
