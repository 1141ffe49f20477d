package qrpdf_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	qrpdf "github.com/porticus-lab/go-qr-pdf"
)

func Example() {
	dir, err := os.MkdirTemp("", "qrpdf")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	res, err := qrpdf.Generate(context.Background(), "HELLO", 200, dir)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(filepath.Base(res.Path()))
	// Output: QR_Code_HELLO.pdf
}

func ExampleNew() {
	g, err := qrpdf.New(
		qrpdf.WithErrorCorrection(qrpdf.ECLevelH),
		qrpdf.WithPageConfig(qrpdf.PageConfig{
			Size:        qrpdf.Letter,
			Orientation: qrpdf.Landscape,
			Margin:      qrpdf.UniformMargin(2),
		}),
		qrpdf.WithVerify(),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	res, err := g.Render(context.Background(), "https://example.com", 144)
	if err != nil {
		log.Fatal(err)
	}

	text, err := qrpdf.DecodePDF(res.Bytes())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(text)
	// Output: https://example.com
}

func ExampleFileName() {
	fmt.Println(qrpdf.FileName("a/b"))
	fmt.Println(qrpdf.FileName("Ünïcödé"))
	// Output:
	// QR_Code_a_b-c14cddc0.pdf
	// QR_Code_Ünïcödé.pdf
}

func ExampleInspect() {
	g, err := qrpdf.New()
	if err != nil {
		log.Fatal(err)
	}
	res, err := g.Render(context.Background(), "HELLO", 200)
	if err != nil {
		log.Fatal(err)
	}

	rep, err := qrpdf.Inspect(res.Bytes())
	if err != nil {
		log.Fatal(err)
	}
	img := rep.Pages[0].Images[0]
	fmt.Printf("%d page, %.0fx%.0fpt image\n", len(rep.Pages), img.Width, img.Height)
	// Output: 1 page, 200x200pt image
}
