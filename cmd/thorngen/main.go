package main

import (
	"os"

	"github.com/vippsas/thorn/cmd/thorngen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
