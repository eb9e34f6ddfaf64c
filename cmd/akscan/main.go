package main

import (
	"os"

	"github.com/dshills/akscan/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
