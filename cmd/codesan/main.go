package main

import (
	"os"

	"github.com/dshills/codesan/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
