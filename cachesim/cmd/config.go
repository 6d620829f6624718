package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/cachesim/mem/coherence"
)

// EnvPrefix starts the name of every environment variable that provides a
// flag default. The flag --l1-size is read from CACHESIM_L1_SIZE.
const EnvPrefix = "CACHESIM_"

const defaultEnvFile = ".env"

type runOptions struct {
	cfg coherence.Config

	traces  []string
	envFile string

	record bool
	dbName string

	monitor     bool
	monitorPort int
	openBrowser bool

	logEvents bool
	verbose   bool
	json      bool
}

func addConfigFlags(flags *pflag.FlagSet, cfg *coherence.Config) {
	*cfg = coherence.DefaultConfig()

	flags.IntVar(&cfg.L1Size, "l1-size", cfg.L1Size, "Lines of each L1 cache.")
	flags.IntVar(&cfg.L1Latency, "l1-latency", cfg.L1Latency,
		"Cycles charged for each L1 miss.")
	flags.IntVar(&cfg.L2Size, "l2-size", cfg.L2Size, "Lines of each L2 cache.")
	flags.IntVar(&cfg.L2Latency, "l2-latency", cfg.L2Latency,
		"Cycles charged for each L2 miss.")
	flags.IntVar(&cfg.L3Size, "l3-size", cfg.L3Size, "Lines of the shared L3.")
	flags.IntVar(&cfg.L3Latency, "l3-latency", cfg.L3Latency,
		"Cycles charged for each L3 miss.")
	flags.IntVar(&cfg.WaysPerSet, "ways", cfg.WaysPerSet,
		"Associativity of every cache.")
	flags.BoolVar(&cfg.WriteBack, "write-back", cfg.WriteBack,
		"Write modified lines back when they leave a core. "+
			"With --write-back=false every store is written through.")
	flags.Int64Var(&cfg.FirstTierMemoryBoundary, "memory-boundary",
		cfg.FirstTierMemoryBoundary,
		"First address served by the second memory tier.")
	flags.IntVar(&cfg.FirstTierMemoryLatency, "memory-latency-1",
		cfg.FirstTierMemoryLatency, "Cycles of the first memory tier.")
	flags.IntVar(&cfg.SecondTierMemoryLatency, "memory-latency-2",
		cfg.SecondTierMemoryLatency, "Cycles of the second memory tier.")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed,
		"Seed of the random replacement.")
}

func envName(flagName string) string {
	return EnvPrefix +
		strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// loadEnvFile reads an env file into the process environment. A missing
// default file is not an error; a missing explicit file is.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load env file %s: %w", path, err)
}

// applyEnv gives every flag that was not set on the command line the value
// of its environment variable, if any.
func applyEnv(cmd *cobra.Command) error {
	var errs []error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}

		value, ok := os.LookupEnv(envName(f.Name))
		if !ok {
			return
		}

		if err := cmd.Flags().Set(f.Name, value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envName(f.Name), err))
		}
	})

	return errors.Join(errs...)
}
