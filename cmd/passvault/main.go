package main

import (
	"github.com/awnumar/memguard"

	"github.com/vault-cli/passvault/internal/cli"
	"github.com/vault-cli/passvault/internal/util"
)

func main() {
	// Wipe guarded key material on Ctrl-C
	memguard.CatchInterrupt()

	err := cli.Execute()
	memguard.Purge()

	if err != nil {
		util.HandleError(err, "")
	}
}
