package main

import (
	"fmt"
	"os"

	"github.com/nspcc-dev/tokendealer/common"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tokendealer"
	app.Usage = "Settlement of token transfers between the parachain, the relay chain and sibling parachains"
	app.Version = common.VersionString(common.Version)
	app.Commands = []cli.Command{
		nodeCommand(),
		deriveCommand(),
		remarkCommand(),
	}

	return app
}
