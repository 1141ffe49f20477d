package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"

	qrpdf "github.com/porticus-lab/go-qr-pdf"
)

func newDecodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file>",
		Short: "Print the text of the QR code in a PDF, PNG or JPEG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			text, err := decodeFile(data)
			if err != nil {
				return err
			}
			a.logger.Debug("qr decoded", "file", args[0], "chars", len(text))
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func decodeFile(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return qrpdf.DecodePDF(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	return qrpdf.Decode(img)
}
