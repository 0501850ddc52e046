package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/UnownHash/Noctowl/datasets"
	"github.com/UnownHash/Noctowl/layers"
	"github.com/UnownHash/Noctowl/map_config"
	"github.com/UnownHash/Noctowl/render"
	"github.com/UnownHash/Noctowl/runner"
	"github.com/UnownHash/Noctowl/stats_collector"
	"github.com/UnownHash/Noctowl/version"
)

const (
	DEFAULT_CONFIG_FILENAME = "./configs/noctowl.toml"
)

func usage(flagSet *flag.FlagSet, output io.Writer) {
	fmt.Fprintf(output, "** A wild Noctowl has appeared. Version %s **\n", version.APP_VERSION)
	fmt.Fprintf(output, "Usage: %s [-help] [-debug] [-f configfile] [-c jobsfile]\n", os.Args[0])
	fmt.Fprint(output, "\n")
	fmt.Fprintf(output, "%s draws one dark themed map image per entry of the jobs file.\n", os.Args[0])
	fmt.Fprint(output, "\n")
	fmt.Fprint(output, "Input data is read from the paths in these environment variables ")
	fmt.Fprint(output, "(an .env file is read first if present):\n")
	fmt.Fprint(output, "\n")
	for _, name := range datasets.EnvVars {
		fmt.Fprintf(output, "  %s\n", name)
	}
	fmt.Fprint(output, "\n")

	fmt.Fprint(output, "Options:\n")
	flagSet.SetOutput(output)
	flagSet.PrintDefaults()

	fmt.Fprint(output, "\nExamples:\n")
	fmt.Fprintf(output, "%s\n", os.Args[0])
	fmt.Fprintf(output, "%s -debug -c config/asia.yaml\n", os.Args[0])
	fmt.Fprint(output, "\n")
}

func main() {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	helpFlag := flagSet.Bool("help", false, "help!")
	debugFlag := flagSet.Bool("debug", false, "override config and turn on debug logging")
	flagSet.BoolVar(helpFlag, "h", false, "help!")
	configFileFlag := flagSet.String("f", DEFAULT_CONFIG_FILENAME, "config file to use")
	jobsFileFlag := flagSet.String("c", "", "jobs file to render (overrides 'jobs_file' from the config)")

	err := flagSet.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s", err)
		usage(flagSet, os.Stderr)
		os.Exit(2)
	}

	if *helpFlag {
		usage(flagSet, os.Stdout)
		os.Exit(0)
	}

	if flagSet.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected argument(s): %v\n", flagSet.Args())
		fmt.Fprintf(os.Stderr, "Try %s -help for help.\n", os.Args[0])
		os.Exit(2)
	}

	// the default settings file is optional, an explicit one is not
	configFilename := *configFileFlag
	cfg, err := LoadConfig(configFilename, configFilename == DEFAULT_CONFIG_FILENAME)
	if err != nil {
		log.Fatal(err)
	}

	if *debugFlag {
		cfg.Logging.Debug = true
	}
	if *jobsFileFlag != "" {
		cfg.JobsFile = *jobsFileFlag
	}

	logger := cfg.CreateLogger(true)
	logger.Infof("STARTUP: Version %s. Config loaded.", version.APP_VERSION)

	if err := datasets.LoadEnvFile(cfg.EnvFile); err != nil {
		logger.Fatalf("STARTUP: failed to read env file: %v", err)
	}

	jobs, err := map_config.LoadFile(cfg.JobsFile)
	if err != nil {
		logger.Fatalf("STARTUP: failed to load jobs from '%s': %v", cfg.JobsFile, err)
	}
	logger.Infof("STARTUP: %d map job(s) loaded from '%s'", len(jobs), cfg.JobsFile)

	statsCollector := stats_collector.GetStatsCollector(cfg)
	logger.Infof("STARTUP: Using %s stats collector", statsCollector.Name())

	loader := layers.NewLoader(logger)
	renderer := render.NewRenderer(logger, loader, cfg.Render)
	mapRunner := runner.NewMapRunner(logger, renderer, statsCollector, datasets.LoadPaths)

	var wg sync.WaitGroup

	ctx, cancelFn := context.WithCancel(context.Background())

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancelFn()

		sig_ch := make(chan os.Signal, 1)
		signal.Notify(sig_ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			// finished
		case sig := <-sig_ch:
			logger.Infof("received signal '%s', stopping after the current map", sig.String())
		}
	}()

	_, err = mapRunner.RenderAll(ctx, jobs)

	cancelFn()
	wg.Wait()

	if err != nil {
		var failedErr *runner.FailedMapsError
		if errors.As(err, &failedErr) {
			logger.Errorf("%v", err)
			os.Exit(1)
		}
		logger.Fatalf("stopped: %v", err)
	}

	logger.Infof("Done.")
}
