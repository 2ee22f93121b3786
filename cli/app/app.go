package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/statecommit/balance-mpt/cli/trie"
	"github.com/statecommit/balance-mpt/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "balance-mpt\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a balance-mpt instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "balance-mpt"
	ctl.Version = config.Version
	ctl.Usage = "Merkle Patricia trie of account balances"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, trie.NewCommands()...)
	return ctl
}
