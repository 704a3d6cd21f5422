package main

import (
	"os"

	"github.com/dshills/revio/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
