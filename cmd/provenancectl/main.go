package main

import (
	"os"

	"github.com/SAP/stewardci-provenance/cmd/provenancectl/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
