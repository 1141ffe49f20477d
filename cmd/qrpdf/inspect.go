package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	qrpdf "github.com/porticus-lab/go-qr-pdf"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		pageRange string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [flags] <file.pdf>",
		Short: "Show the pages of a PDF and the images placed on them",
		Example: `  qrpdf inspect QR_Code_HELLO.pdf
  qrpdf inspect -p 1-3,5 --json report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			rep, err := qrpdf.Inspect(data)
			if err != nil {
				return err
			}

			indices, err := parsePageRange(pageRange, len(rep.Pages))
			if err != nil {
				return fmt.Errorf("invalid page range %q: %w", pageRange, err)
			}
			selected := make([]qrpdf.PageReport, 0, len(indices))
			for _, i := range indices {
				selected = append(selected, rep.Pages[i])
			}
			a.logger.Debug("pdf inspected", "file", args[0], "pages", len(rep.Pages), "selected", len(selected))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(qrpdf.Report{Version: rep.Version, Pages: selected})
			}
			printReport(out, args[0], rep, selected)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pageRange, "pages", "p", "", `page range, e.g. "1", "1-5", "1,3,5" (default: all)`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(w io.Writer, file string, rep *qrpdf.Report, pages []qrpdf.PageReport) {
	fmt.Fprintf(w, "File:    %s\n", file)
	fmt.Fprintf(w, "Version: PDF-%s\n", rep.Version)
	fmt.Fprintf(w, "Pages:   %d\n", len(rep.Pages))

	for _, p := range pages {
		fmt.Fprintf(w, "\nPage %d: %.2f x %.2f pt", p.Number, p.Width, p.Height)
		if p.Rotation != 0 {
			fmt.Fprintf(w, " (rotated %d°)", p.Rotation)
		}
		fmt.Fprintln(w)
		for _, im := range p.Images {
			fmt.Fprintf(w, "  /%s: %.2f x %.2f pt at (%.2f, %.2f), %dx%d px %s %d bpc\n",
				im.Name, im.Width, im.Height, im.X, im.Y,
				im.PixelWidth, im.PixelHeight, im.ColorSpace, im.BitsPerComponent)
		}
	}
}

// parsePageRange converts a page range string to a slice of 0-based page indices.
// Supported formats: "" (all), "3" (single page), "1-5" (range), "1,3,5" (list).
func parsePageRange(expr string, total int) ([]int, error) {
	if expr == "" {
		indices := make([]int, total)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	var indices []int
	seen := make(map[int]bool)
	add := func(p int) {
		if !seen[p] {
			indices = append(indices, p-1)
			seen[p] = true
		}
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			p, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid page number: %s", part)
			}
			if p < 1 || p > total {
				return nil, fmt.Errorf("page %d out of bounds (1-%d)", p, total)
			}
			add(p)
			continue
		}

		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", lo)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid page number: %s", hi)
		}
		if start < 1 || end > total || start > end {
			return nil, fmt.Errorf("page range %d-%d out of bounds (1-%d)", start, end, total)
		}
		for p := start; p <= end; p++ {
			add(p)
		}
	}
	return indices, nil
}
