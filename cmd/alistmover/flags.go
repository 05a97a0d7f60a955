package main

import "flag"

type AppFlags struct {
	GlobalConfigFile string
	SourcePath       string
	DestPath         string
	IntervalSeconds  int
}

func ParseFlags() AppFlags {
	globalConfigFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("c", "", "Alias for -config")

	sourcePath := flag.String("source", "", "Remote source directory to watch (overrides config file if set)")
	destPath := flag.String("dest", "", "Remote destination directory for finished files (overrides config file if set)")
	intervalSeconds := flag.Int("interval", 0, "Polling interval in seconds (overrides config file if set)")

	flag.Parse()

	flags := AppFlags{
		SourcePath:      *sourcePath,
		DestPath:        *destPath,
		IntervalSeconds: *intervalSeconds,
	}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	return flags
}
