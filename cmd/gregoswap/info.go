package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/AztecProtocol/gregoswap-sub001/internal/infrastructure/sdk/aztec"
)

var info = cli.Command{
	Name:   "info",
	Usage:  "print chain and version info of the configured node",
	Action: infoAction,
}

func infoAction(c *cli.Context) error {
	nodeUrl, err := getNodeUrl()
	if err != nil {
		return err
	}

	svc, err := aztec.NewService(nodeUrl, time.Second)
	if err != nil {
		return err
	}

	nodeInfo, err := svc.GetNodeInfo(context.Background())
	if err != nil {
		return err
	}

	printRespJSON(nodeInfo)
	return nil
}
