/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Seednode/roulette/games/roulette"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind    string
	port    int
	prefix  string
	profile bool
	tlsCert string
	tlsKey  string
	verbose bool
	version bool
	seed    uint64
	maxName int
	game    roulette.Config
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxName < 1 {
		return fmt.Errorf("invalid max username length (must be at least 1): %d", c.maxName)
	}
	return c.game.Validate()
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ROULETTE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "roulette",
		Short:         "A push-your-luck party game: take points from the shared stock, but don't take the last one.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := roulette.DefaultConfig()

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: ROULETTE_BIND)")
	fs.IntVar(&cfg.game.JoinBonus, "join-bonus", defaults.JoinBonus, "points added to the stock when a new player joins (env: ROULETTE_JOIN_BONUS)")
	fs.IntVar(&cfg.maxName, "max-name-length", 24, "maximum username length (env: ROULETTE_MAX_NAME_LENGTH)")
	fs.IntVar(&cfg.game.Penalty, "penalty", defaults.Penalty, "points lost by whoever empties the stock (env: ROULETTE_PENALTY)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: ROULETTE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: ROULETTE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: ROULETTE_PROFILE)")
	fs.IntVar(&cfg.game.ResetMax, "reset-max", defaults.ResetMax, "largest per-player multiplier when the stock is refilled (env: ROULETTE_RESET_MAX)")
	fs.IntVar(&cfg.game.ResetMin, "reset-min", defaults.ResetMin, "smallest per-player multiplier when the stock is refilled (env: ROULETTE_RESET_MIN)")
	fs.Uint64Var(&cfg.seed, "seed", 0, "seed for the random number generator, 0 for a random seed (env: ROULETTE_SEED)")
	fs.IntVar(&cfg.game.StockMax, "stock-max", defaults.StockMax, "largest initial stock (env: ROULETTE_STOCK_MAX)")
	fs.IntVar(&cfg.game.StockMin, "stock-min", defaults.StockMin, "smallest initial stock (env: ROULETTE_STOCK_MIN)")
	fs.BoolVar(&cfg.game.StrictTurns, "strict-turns", defaults.StrictTurns, "only accept withdrawals from the active player (env: ROULETTE_STRICT_TURNS)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: ROULETTE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: ROULETTE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: ROULETTE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: ROULETTE_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("roulette v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
