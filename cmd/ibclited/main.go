package main

import (
	"os"

	"github.com/cosmos/ibc-lightcore/cmd/ibclited/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
