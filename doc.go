// Package qrpdf turns a text payload into a single-page PDF holding a QR
// code.
//
// # Generating
//
// For one-off files use the package-level helper. The file is named after
// the content, so "HELLO" becomes QR_Code_HELLO.pdf inside the directory:
//
//	res, err := qrpdf.Generate(ctx, "HELLO", 200, "/tmp/out")
//	fmt.Println(res.Path()) // /tmp/out/QR_Code_HELLO.pdf
//
// For repeated use create a [Generator]:
//
//	g, err := qrpdf.New(
//	    qrpdf.WithErrorCorrection(qrpdf.ECLevelM),
//	    qrpdf.WithVerify(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close()
//
//	res, err := g.Generate(ctx, "https://example.com", 144, dir)
//	res, err  = g.Render(ctx, "in memory only", 144)
//
// The size is the drawn width and height of the code in PDF points. The
// code sits at the top-left corner of the printable area of an A4 portrait
// page with 1.27 cm margins unless [WithPageConfig] says otherwise; the
// page grows when the code does not fit.
//
// # Encoders and renderers
//
// The default [ZXingEncoder] encodes with error-correction level L, UTF-8
// and a one-module quiet zone. [BarcodeEncoder] and [Skip2Encoder] are
// drop-in alternatives. The default [GoPDFRenderer] is pure Go; the
// [ChromeRenderer] prints through headless Chrome and must be closed:
//
//	r, err := qrpdf.NewChromeRenderer(qrpdf.WithAutoDownload())
//	g, err := qrpdf.New(qrpdf.WithRenderer(r))
//	defer g.Close() // closes r
//
// # Errors
//
// Failures are returned as [*Error] and match one sentinel each:
//
//	_, err := g.Generate(ctx, text, 0, dir)
//	errors.Is(err, qrpdf.ErrInvalidArgument) // true
//
// No file is created or replaced when Generate fails.
// [Generator.GenerateOrLog] logs failures instead of returning them.
//
// # Reading back
//
// [Inspect] lists the pages of a PDF and the images placed on them, and
// [DecodePDF] reads the QR code back out of a generated file:
//
//	text, err := qrpdf.DecodePDF(data)
package qrpdf
