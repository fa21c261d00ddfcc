package main

import (
	"os"

	"github.com/dmitrijs2005/gophforum/internal/client/cli"
)

func main() {
	os.Exit(cli.Execute())
}
