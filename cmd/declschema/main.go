package main

import (
	"os"

	"declschema/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
