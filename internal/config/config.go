package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// NodeUrlKey is the http(s) url of the network node to connect to
	NodeUrlKey = "NODE_URL"
	// NetworkIdKey is the identifier of the network to operate on
	NetworkIdKey = "NETWORK_ID"
	// DatadirKey is the local data directory to store the internal state of the app
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// RatePollIntervalKey is the interval between two exchange-rate polls
	RatePollIntervalKey = "RATE_POLL_INTERVAL"
	// DiscoveryTimeoutKey is how long a wallet discovery session stays open
	DiscoveryTimeoutKey = "DISCOVERY_TIMEOUT"
	// SwapResetDelayKey is how long a settled swap stays on screen before the form resets
	SwapResetDelayKey = "SWAP_RESET_DELAY"
	// TxPollIntervalKey is the interval between two transaction receipt polls
	TxPollIntervalKey = "TX_POLL_INTERVAL"
	// NetworkConfigKey is the path of the network config file written by 'gregoswap deploy'
	NetworkConfigKey = "NETWORK_CONFIG"

	DbLocation = "db"
)

var vip *viper.Viper

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("GREGOSWAP")
	vip.AutomaticEnv()

	vip.SetDefault(NodeUrlKey, "http://localhost:8080")
	vip.SetDefault(NetworkIdKey, "sandbox")
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DatadirKey, defaultDatadir())
	vip.SetDefault(RatePollIntervalKey, 10*time.Second)
	vip.SetDefault(DiscoveryTimeoutKey, 30*time.Second)
	vip.SetDefault(SwapResetDelayKey, 5*time.Second)
	vip.SetDefault(TxPollIntervalKey, time.Second)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	nodeUrl := GetString(NodeUrlKey)
	if len(nodeUrl) <= 0 {
		return fmt.Errorf("missing node url")
	}

	if GetDuration(RatePollIntervalKey) <= 0 {
		return fmt.Errorf("%s must be a positive duration", RatePollIntervalKey)
	}
	if GetDuration(TxPollIntervalKey) <= 0 {
		return fmt.Errorf("%s must be a positive duration", TxPollIntervalKey)
	}

	return nil
}

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gregoswap"
	}
	return filepath.Join(home, ".gregoswap")
}

func initDatadir() error {
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
