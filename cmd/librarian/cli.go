package main

import (
	"flag"
	"os"
)

// configFlags holds the application configuration from command-line flags
type configFlags struct {
	configFile  string // Path to config file
	serverURL   string // Librarian server URL
	serverToken string // Librarian API token
	statusPort  string // Status server port
	logLevel    string // Log level override
	help        bool   // Show help
	version     bool   // Show version
}

// parseFlags parses command-line flags and returns the configuration
func parseFlags() *configFlags {
	var cfg configFlags

	flag.StringVar(&cfg.configFile, "config", "", "Path to config file (YAML)")
	flag.StringVar(&cfg.serverURL, "server-url", "", "Librarian server URL")
	flag.StringVar(&cfg.serverToken, "server-token", "", "Librarian API token")
	flag.StringVar(&cfg.statusPort, "port", "", "Status server port")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.help, "help", false, "Show help")
	flag.BoolVar(&cfg.version, "version", false, "Show version")

	flag.Parse()

	// Flags override environment, which overrides the config file
	setEnvFromFlag(cfg.serverURL, "LIBRARIAN_SERVER_URL")
	setEnvFromFlag(cfg.serverToken, "LIBRARIAN_SERVER_TOKEN")
	setEnvFromFlag(cfg.statusPort, "STATUS_PORT")
	setEnvFromFlag(cfg.logLevel, "LOG_LEVEL")

	return &cfg
}

// setEnvFromFlag sets an environment variable if the flag value is not empty
func setEnvFromFlag(value, envVar string) {
	if value != "" {
		os.Setenv(envVar, value)
	}
}
