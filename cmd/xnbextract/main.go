package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/mogaika/xnbtool/config"
	"github.com/mogaika/xnbtool/extract"
	"github.com/mogaika/xnbtool/utils/logger"
)

func main() {
	var in, out, configPath, logLevel, logFile string
	var overwrite, debug bool
	flag.StringVar(&in, "in", "", "XNB file or directory to extract")
	flag.StringVar(&out, "out", "", "Directory to extract to")
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.BoolVar(&overwrite, "overwrite", false, "Replace existing outputs")
	flag.BoolVar(&debug, "debug", false, "Write a dump of every decoded file")
	flag.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	flag.StringVar(&logFile, "log-file", "", "Also log into this file")
	flag.Parse()

	if in == "" || out == "" {
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "overwrite":
			cfg.Overwrite = overwrite
		case "debug":
			cfg.Debug = debug
		case "log-level":
			cfg.Logging.Level = logLevel
		case "log-file":
			cfg.Logging.LogFile = logFile
		}
	})

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := extract.New(cfg, logger.Log).Run(ctx, in, out)
	logger.Sugar.Infof("Done: %v", summary)
	if err != nil {
		logger.Log.Error("Extraction had errors", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
