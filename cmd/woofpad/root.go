package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/rovshanmuradov/woofpad/internal/client"
	"github.com/rovshanmuradov/woofpad/internal/config"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

type globalFlags struct {
	configPath string
	endpoint   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "woofpad",
		Short:         "Token launch venue: bonding curves, a limit order book and AMM graduation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.endpoint, "endpoint", "", "server URL, overrides client.endpoint")

	root.AddCommand(
		newServeCmd(flags),
		newExecCmd(flags),
		newSwapCmd(flags),
		newQueryCmd(flags),
		newExportCmd(flags),
		newConfigCmd(flags),
	)
	return root
}

func (f *globalFlags) load() (*config.Config, error) {
	return config.LoadConfig(f.configPath)
}

func (f *globalFlags) client() (*client.Client, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}
	endpoint := cfg.Client.Endpoint
	if f.endpoint != "" {
		endpoint = f.endpoint
	}
	return client.New(endpoint,
		client.WithRetries(cfg.Client.Retries),
		client.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
	), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var coinPattern = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/._-]*)$`)

// parseCoins reads "150uhuahua,20woof1abc" into coins.
func parseCoins(raw string) (types.Coins, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out types.Coins
	for _, part := range strings.Split(raw, ",") {
		m := coinPattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, fmt.Errorf("invalid coin %q, want <amount><denom>", part)
		}
		amount, ok := math.NewIntFromString(m[1])
		if !ok {
			return nil, fmt.Errorf("invalid amount in %q", part)
		}
		out = append(out, types.NewCoin(m[2], amount))
	}
	return out, nil
}
