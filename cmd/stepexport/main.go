package main

import (
	"os"

	"github.com/alexbrand/stepexport/internal/cli"
	"github.com/alexbrand/stepexport/internal/gosource"
	"github.com/alexbrand/stepexport/internal/manifest"
)

func main() {
	gosource.Register()
	manifest.Register()

	if err := cli.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
