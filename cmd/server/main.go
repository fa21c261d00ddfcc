package main

import (
	"os"

	"github.com/dmitrijs2005/gophforum/internal/server"
)

func main() {
	os.Exit(server.Main())
}
