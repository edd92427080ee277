package main

import (
	"log"

	"golang.design/x/clipboard"
)

// initClipboard reports whether the system clipboard is usable. Headless
// sessions and some platforms have none; exports still go to disk.
func initClipboard() bool {
	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
		return false
	}
	return true
}

func copyToClipboard(data []byte) {
	clipboard.Write(clipboard.FmtText, data)
}
