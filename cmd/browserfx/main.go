// Command browserfx runs browserfx programs on a headless host.
package main

import (
	"os"

	"github.com/joeycumines/go-browserfx/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
