package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/AztecProtocol/gregoswap-sub001/internal/config"
	"github.com/AztecProtocol/gregoswap-sub001/internal/core/application"
	"github.com/AztecProtocol/gregoswap-sub001/internal/infrastructure/sdk/aztec"
	dbbadger "github.com/AztecProtocol/gregoswap-sub001/internal/infrastructure/storage/db/badger"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	addresses, err := loadContractAddresses()
	if err != nil {
		log.WithError(err).Fatal("error loading network config")
	}

	repoManager, err := dbbadger.NewRepoManager(
		filepath.Join(config.GetDatadir(), config.DbLocation), nil,
	)
	if err != nil {
		log.WithError(err).Fatal("error opening app db")
	}
	defer repoManager.Close()

	sdkService, err := aztec.NewService(
		config.GetString(config.NodeUrlKey),
		config.GetDuration(config.TxPollIntervalKey),
	)
	if err != nil {
		log.WithError(err).Fatal("error connecting to node")
	}

	walletSvc := application.NewWalletService(
		sdkService, config.GetDuration(config.DiscoveryTimeoutKey),
	)
	contractsSvc := application.NewContractsService(sdkService, addresses)
	balancesSvc := application.NewBalancesService(contractsSvc, walletSvc)
	swapSvc := application.NewSwapService(
		contractsSvc, balancesSvc, walletSvc,
		config.GetDuration(config.RatePollIntervalKey),
		config.GetDuration(config.SwapResetDelayKey),
	)
	onboardingSvc := application.NewOnboardingService(
		walletSvc, contractsSvc, balancesSvc, repoManager,
	)
	onboardingSvc.SetSwapExecutor(swapSvc)
	swapSvc.SetOnboarding(onboardingSvc)

	onboardingSvc.Start()
	defer onboardingSvc.Stop()
	swapSvc.StartPolling()
	defer swapSvc.StopPolling()

	log.Debug("starting app")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Debug("exiting")
}

func loadContractAddresses() (application.ContractAddresses, error) {
	addresses := application.ContractAddresses{}

	path := config.GetString(config.NetworkConfigKey)
	if len(path) <= 0 {
		return addresses, fmt.Errorf("missing %s", config.NetworkConfigKey)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return addresses, err
	}

	parsed := struct {
		Contracts application.ContractAddresses `json:"contracts"`
	}{}
	if err := json.Unmarshal(buf, &parsed); err != nil {
		return addresses, err
	}
	return parsed.Contracts, nil
}
