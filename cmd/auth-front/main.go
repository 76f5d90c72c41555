package main

import (
	"os"
)

// BuildVersion is set at build time with -ldflags "-X main.BuildVersion=..."
var BuildVersion = "dev"

func main() {
	if err := newRootCmd(BuildVersion).Execute(); err != nil {
		os.Exit(1)
	}
}
