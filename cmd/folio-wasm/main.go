//go:build js && wasm

// Command folio-wasm runs the portfolio page behaviors in the browser.
// Build with GOOS=js GOARCH=wasm and serve the result as
// /static/folio.wasm next to wasm_exec.js.
package main

import (
	"context"
	"os"

	"github.com/conneroisu/folio/internal/dom"
	"github.com/conneroisu/folio/internal/logging"
)

func main() {
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel("info"),
		Format:    "text",
		Output:    os.Stderr,
		Component: "folio-wasm",
	})

	dom.Bind(logger)
	logger.Info(context.Background(), "Page bound")

	select {}
}
