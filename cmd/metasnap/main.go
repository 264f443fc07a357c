package main

import (
	"os"

	"github.com/tetrad-labs/metasnap/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
