// Command stubns is a scriptable DNS test responder. It loads a data
// file of canned match-and-reply entries and answers queries over UDP
// and TCP with the first entry that matches, so DNS clients and
// resolvers can be tested against precisely controlled wire responses.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jroosing/stubns/internal/config"
	"github.com/jroosing/stubns/internal/datafile"
	"github.com/jroosing/stubns/internal/logging"
	"github.com/jroosing/stubns/internal/server"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-p port] <datafile>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  -p	listen on the specified port, default %d.\n", config.DefaultPort)
	fmt.Fprintf(os.Stderr, "The program answers queries with canned replies from the datafile.\n")
	os.Exit(1)
}

func main() {
	var (
		port       = flag.Int("p", 0, "Override listen port (UDP and TCP)")
		configPath = flag.String("config", "", "Path to YAML configuration file (or set STUBNS_CONFIG)")
		noTCP      = flag.Bool("no-tcp", false, "Disable the TCP listener")
		withAPI    = flag.Bool("api", false, "Enable the admin HTTP API")
		queryLog   = flag.String("querylog", "", "Record received queries to the given SQLite file")
		jsonLogs   = flag.Bool("json-logs", false, "Enable JSON structured logging")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
	}
	dataPath := flag.Arg(0)

	cfg, err := config.Load(config.ResolveConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *noTCP {
		cfg.Server.EnableTCP = false
	}
	if *withAPI {
		cfg.API.Enabled = true
	}
	if *queryLog != "" {
		cfg.QueryLog.Enabled = true
		cfg.QueryLog.Path = *queryLog
	}
	if *jsonLogs {
		cfg.Logging.Structured = true
		cfg.Logging.StructuredFormat = "json"
	}
	if *debug {
		cfg.Logging.Level = "DEBUG"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
	})

	// The data file is parsed before any socket opens; a malformed file
	// terminates the process here.
	file, err := datafile.LoadFile(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger.Info("datafile loaded", "path", dataPath, "entries", file.Completed)
	if file.Dangling {
		logger.Warn("final entry has no ENTRY_END; keeping it", "path", dataPath)
	}

	runner := server.NewRunner(logger)
	if err := runner.Run(cfg, file); err != nil {
		fmt.Fprintf(os.Stderr, "server exited with error: %v\n", err)
		os.Exit(1)
	}
}
