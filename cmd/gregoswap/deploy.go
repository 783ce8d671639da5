package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/AztecProtocol/gregoswap-sub001/internal/infrastructure/sdk/aztec"
)

var deploy = cli.Command{
	Name:  "deploy",
	Usage: "deploy the contracts and write the network config file",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "out",
			Usage: "directory where the network config file is written",
			Value: "deployments",
		},
		&cli.DurationFlag{
			Name:  "tx_poll_interval",
			Usage: "interval between two transaction receipt polls",
			Value: time.Second,
		},
	},
	Action: deployAction,
}

type networkConfig struct {
	Id            string `json:"id"`
	NodeUrl       string `json:"nodeUrl"`
	ChainId       string `json:"chainId"`
	RollupVersion uint32 `json:"rollupVersion"`
	Contracts     struct {
		GregoCoin        string `json:"gregoCoin"`
		GregoCoinPremium string `json:"gregoCoinPremium"`
		Amm              string `json:"amm"`
		Pop              string `json:"pop"`
	} `json:"contracts"`
	Deployer struct {
		Address string `json:"address"`
	} `json:"deployer"`
	DeployedAt int64 `json:"deployedAt"`
}

func deployAction(c *cli.Context) error {
	nodeUrl, err := getNodeUrl()
	if err != nil {
		return err
	}
	networkId, err := getNetwork()
	if err != nil {
		return err
	}

	svc, err := aztec.NewService(nodeUrl, c.Duration("tx_poll_interval"))
	if err != nil {
		return fmt.Errorf("connecting to node: %w", err)
	}

	ctx := context.Background()
	deployer := svc.EmbeddedWallet().Address()

	info, err := svc.GetNodeInfo(ctx)
	if err != nil {
		return err
	}

	// The tokens and the faucet are independent and deploy in parallel; the
	// amm needs both token addresses first.
	var gregoCoin, gregoCoinPremium, pop string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		gregoCoin, err = svc.Deploy(gctx, "GregoCoin", []interface{}{deployer})
		return
	})
	g.Go(func() (err error) {
		gregoCoinPremium, err = svc.Deploy(gctx, "GregoCoinPremium", []interface{}{deployer})
		return
	})
	g.Go(func() (err error) {
		pop, err = svc.Deploy(gctx, "GregoPop", []interface{}{deployer})
		return
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("deploying contracts: %w", err)
	}

	amm, err := svc.Deploy(ctx, "GregoSwapAmm", []interface{}{
		gregoCoin, gregoCoinPremium,
	})
	if err != nil {
		return fmt.Errorf("deploying amm: %w", err)
	}

	cfg := networkConfig{
		Id:            networkId,
		NodeUrl:       nodeUrl,
		ChainId:       info.ChainId,
		RollupVersion: info.RollupVersion,
		DeployedAt:    time.Now().Unix(),
	}
	cfg.Contracts.GregoCoin = gregoCoin
	cfg.Contracts.GregoCoinPremium = gregoCoinPremium
	cfg.Contracts.Amm = amm
	cfg.Contracts.Pop = pop
	cfg.Deployer.Address = deployer

	outDir := c.String("out")
	if err := os.MkdirAll(outDir, os.ModeDir|0755); err != nil {
		return err
	}
	outPath := filepath.Join(outDir, fmt.Sprintf("%s.json", networkId))

	buf, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, buf, 0644); err != nil {
		return fmt.Errorf("writing network config: %w", err)
	}

	printRespJSON(cfg)
	fmt.Printf("network config written to %s\n", outPath)
	return nil
}
