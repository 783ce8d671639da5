package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	dbbadger "github.com/AztecProtocol/gregoswap-sub001/internal/infrastructure/storage/db/badger"
)

var network = cli.Command{
	Name:  "network",
	Usage: "Print or change the active network",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "directory holding the app state",
			Value: gregoswapDataDir,
		},
	},
	Action: networkAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set the active network to <network_id>",
			Action: networkSetAction,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "datadir",
					Usage: "directory holding the app state",
					Value: gregoswapDataDir,
				},
			},
		},
	},
}

func networkAction(c *cli.Context) error {
	repoManager, err := dbbadger.NewRepoManager(
		filepath.Join(c.String("datadir"), "db"), nil,
	)
	if err != nil {
		return err
	}
	defer repoManager.Close()

	networkId, err := repoManager.SettingsRepository().
		GetActiveNetworkId(context.Background())
	if err != nil {
		return err
	}
	if networkId == "" {
		fmt.Println("no active network set")
		return nil
	}

	fmt.Println(networkId)
	return nil
}

func networkSetAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("network_id is missing")
	}
	networkId := c.Args().Get(0)

	repoManager, err := dbbadger.NewRepoManager(
		filepath.Join(c.String("datadir"), "db"), nil,
	)
	if err != nil {
		return err
	}
	defer repoManager.Close()

	if err := repoManager.SettingsRepository().
		SetActiveNetworkId(context.Background(), networkId); err != nil {
		return err
	}

	fmt.Printf("active network set to %s\n", networkId)
	return nil
}
