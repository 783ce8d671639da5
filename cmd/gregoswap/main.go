package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

var (
	gregoswapDataDir = appDataDir()
	statePath        = path.Join(gregoswapDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "gregoswap CLI"
	app.Usage = "Command line interface for gregoswap deployments"
	app.Commands = append(
		app.Commands,
		&configCmd,
		&deploy,
		&network,
		&info,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func appDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gregoswap"
	}
	return filepath.Join(home, ".gregoswap")
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	json.Unmarshal(file, &data)

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(gregoswapDataDir); os.IsNotExist(err) {
		os.Mkdir(gregoswapDataDir, os.ModeDir|0755)
	}

	if _, err := os.Stat(statePath); os.IsNotExist(err) {
		if err := os.WriteFile(statePath, []byte("{}"), 0644); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		return err
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func printRespJSON(resp interface{}) {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to encode response: ", err)
		return
	}

	fmt.Println(string(jsonStr))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[gregoswap] %v\n", err)
	os.Exit(1)
}
