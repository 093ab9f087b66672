package main

import (
	"os"

	"github.com/lgc202/pwless-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
