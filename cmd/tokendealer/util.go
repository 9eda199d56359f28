package main

import (
	"encoding/hex"
	"fmt"

	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/urfave/cli"
)

func deriveCommand() cli.Command {
	return cli.Command{
		Name:      "derive",
		Usage:     "Print custodial account of the relay chain or the parachain",
		UsageText: "tokendealer derive [--para <id>] [--width <bytes>]",
		Flags: []cli.Flag{
			cli.UintFlag{
				Name:  "para",
				Usage: "Parachain identifier, relay chain account is printed if omitted",
			},
			cli.IntFlag{
				Name:  "width",
				Usage: "Width of the account identifier in bytes",
				Value: codec.DefaultAccountWidth,
			},
		},
		Action: derive,
	}
}

func derive(c *cli.Context) error {
	width := c.Int("width")
	if width <= 0 || width > codec.MaxAccountWidth {
		return fmt.Errorf("invalid account width %d", width)
	}

	d := account.RelayDomain()
	if c.IsSet("para") {
		para := c.Uint("para")
		if uint64(para) > uint64(^uint32(0)) {
			return fmt.Errorf("invalid parachain identifier %d", para)
		}

		d = account.ParachainDomain(uint32(para))
	}

	acc, ok := account.DomainAccount(width, d)
	if !ok {
		return fmt.Errorf("no custodial account of %s", d)
	}

	fmt.Fprintf(c.App.Writer, "domain:  %s\nbase58:  %s\nhex:     %s\n", d, acc, hex.EncodeToString(acc))

	if _, ok = account.TryRecover(acc); !ok {
		fmt.Fprintln(c.App.Writer, "warning: account is truncated and can not be recognized")
	}

	return nil
}

func remarkCommand() cli.Command {
	return cli.Command{
		Name:      "remark",
		Usage:     "Print remark of the relay chain transfer carrying the asset",
		UsageText: "tokendealer remark --asset <native|id>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "asset",
				Usage: "Asset identifier or 'native'",
				Value: "native",
			},
		},
		Action: remark,
	}
}

func remark(c *cli.Context) error {
	a, err := asset.Parse(c.String("asset"))
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, codec.EncodeRemark(a))

	return nil
}
