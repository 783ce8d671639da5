package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	nodeUrlFlag = cli.StringFlag{
		Name:  "node_url",
		Usage: "http(s) url of the network node",
		Value: "http://localhost:8080",
	}

	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "identifier of the network to operate on",
		Value: "sandbox",
	}
)

var configCmd = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the gregoswap CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:   "set",
			Usage:  "set a <key> <value> in the local state",
			Action: configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&nodeUrlFlag,
				&networkFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	for key, value := range state {
		fmt.Println(key + ": " + value)
	}

	return nil
}

func configInitAction(c *cli.Context) error {
	err := setState(map[string]string{
		"node_url": c.String("node_url"),
		"network":  c.String("network"),
	})
	if err != nil {
		return err
	}

	fmt.Println("CLI state initialized")
	return nil
}

func configSetAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("key and value are missing")
	}

	key := c.Args().Get(0)
	value := c.Args().Get(1)

	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)
	return nil
}

func getNodeUrl() (string, error) {
	state, err := getState()
	if err != nil {
		return "", err
	}
	nodeUrl, ok := state["node_url"]
	if !ok || nodeUrl == "" {
		return "", errors.New("node_url is not set: try 'config init'")
	}
	return nodeUrl, nil
}

func getNetwork() (string, error) {
	state, err := getState()
	if err != nil {
		return "", err
	}
	networkId, ok := state["network"]
	if !ok || networkId == "" {
		return "", errors.New("network is not set: try 'config init'")
	}
	return networkId, nil
}
