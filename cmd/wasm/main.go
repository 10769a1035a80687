//go:build js && wasm

// Command wasm runs the cart widget in the browser. Build with
//
//	GOOS=js GOARCH=wasm go build -o cart.wasm ./cmd/wasm
package main

import (
	"context"
	"syscall/js"

	"cartwidget/internal/database/localstorage"
	"cartwidget/internal/dom/jsdom"
	"cartwidget/internal/page"
	"cartwidget/pkg/config"
	"cartwidget/pkg/lib/logger"
)

func main() {
	log, err := logger.SetupLogger(config.EnvProd)
	if err != nil {
		panic(err)
	}

	ctrl := page.New(log, localstorage.New(log), jsdom.New())

	onReady := js.FuncOf(func(this js.Value, args []js.Value) any {
		_ = ctrl.Ready(context.Background())
		return nil
	})
	onPageShow := js.FuncOf(func(this js.Value, args []js.Value) any {
		persisted := len(args) > 0 && args[0].Get("persisted").Truthy()
		_ = ctrl.PageShow(context.Background(), persisted)
		return nil
	})

	document := js.Global().Get("document")
	if document.Get("readyState").String() == "loading" {
		document.Call("addEventListener", "DOMContentLoaded", onReady)
	} else {
		_ = ctrl.Ready(context.Background())
	}
	js.Global().Get("window").Call("addEventListener", "pageshow", onPageShow)

	select {}
}
