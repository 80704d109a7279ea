package main

import (
	"os"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
