// qrpdf writes QR codes as single-page PDF files and reads them back.
//
// Usage:
//
//	qrpdf generate [flags] <content>
//	qrpdf inspect [flags] <file.pdf>
//	qrpdf decode <file>
//	qrpdf version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
