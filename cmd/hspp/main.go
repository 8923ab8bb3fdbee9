package main

import (
	"os"

	"github.com/excurso/hspp/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
