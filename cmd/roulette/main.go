// roulette is a terminal front-end for the gacha roulette games.
//
// Usage:
//
//	roulette [flags]                 Play (default command)
//	roulette play [flags]            Play interactively
//	roulette sim [flags]             Monte Carlo the rarity table
//	roulette odds [flags]            Print base and effective odds
//	roulette games [flags]           List available variants
//
// Settings come from the environment (ROULETTE_*) and an optional .env file;
// flags override both.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/xtding233/gacha-roulette/configs"
	"github.com/xtding233/gacha-roulette/internal/catalog"
	"github.com/xtding233/gacha-roulette/internal/config"
	"github.com/xtding233/gacha-roulette/internal/gacha"
	"github.com/xtding233/gacha-roulette/internal/game"
	"github.com/xtding233/gacha-roulette/internal/logging"
)

// app carries what every command needs.
type app struct {
	cfg    config.Config
	loader *game.Loader
	log    *zap.Logger
	out    io.Writer
}

func main() {
	cmd, args := "play", os.Args[1:]
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "play":
		err = runPlay(args)
	case "sim":
		err = runSim(args)
	case "odds":
		err = runOdds(args)
	case "games":
		err = runGames(args)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: roulette [command] [flags]

Commands:
  play    play interactively (default)
  sim     Monte Carlo the rarity table
  odds    print base and effective odds
  games   list available variants

Common flags:
  -variant, -season, -config-dir, -state, -seed, -log-level, -env`)
}

// commonFlags registers the settings shared by every command on set.
func commonFlags(set *flag.FlagSet) (*config.Config, *string) {
	cfg := config.Default()
	envFile := set.String("env", "", "dotenv file to load (default .env)")
	set.StringVar(&cfg.Variant, "variant", "", "game variant")
	set.StringVar(&cfg.Season, "season", "", "season overlay")
	set.StringVar(&cfg.ConfigDir, "config-dir", "", "directory with games/*.yaml (overrides embedded catalogs)")
	set.StringVar(&cfg.StateFile, "state", "", "state file")
	set.StringVar(&cfg.LogLevel, "log-level", "", "log level")
	set.Uint64Var(&cfg.Seed, "seed", 0, "RNG seed (0 = crypto randomness)")
	return &cfg, envFile
}

// newApp merges env config with the flags that were actually set.
func newApp(set *flag.FlagSet, flags *config.Config, envFile string) (*app, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	set.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "variant":
			cfg.Variant = flags.Variant
		case "season":
			cfg.Season = flags.Season
		case "config-dir":
			cfg.ConfigDir = flags.ConfigDir
		case "state":
			cfg.StateFile = flags.StateFile
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "seed":
			cfg.Seed = flags.Seed
		}
	})

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	var fsys fs.FS = configs.FS
	if cfg.ConfigDir != "" {
		fsys = os.DirFS(cfg.ConfigDir)
	}
	return &app{cfg: cfg, loader: game.NewLoader(fsys), log: log, out: os.Stdout}, nil
}

func (a *app) variant() (*catalog.Variant, error) {
	return a.loader.Load(a.cfg.Variant, a.cfg.Season)
}

func (a *app) rng() gacha.RandomSource {
	if a.cfg.Seed != 0 {
		return gacha.NewSeededRNG(a.cfg.Seed)
	}
	return gacha.DefaultRNG()
}

func runGames(args []string) error {
	set := flag.NewFlagSet("games", flag.ContinueOnError)
	flags, envFile := commonFlags(set)
	if err := set.Parse(args); err != nil {
		return err
	}
	a, err := newApp(set, flags, *envFile)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	names, err := a.loader.Games()
	if err != nil {
		return err
	}
	for _, name := range names {
		v, err := a.loader.Load(name, "")
		if err != nil {
			fmt.Fprintf(a.out, "%-10s invalid: %v\n", name, err)
			continue
		}
		fmt.Fprintf(a.out, "%-10s %d rarities, %d entries, spin %s %s, events %s\n",
			name, len(v.Weights), len(v.Entries), v.SpinCost, v.PrimaryName, v.EventPolicy)
	}
	return nil
}
