package main

import (
	"fmt"
	"log"
	"os"

	"github.com/skywatch/frame-sentinel/internal/catalog"
	"github.com/skywatch/frame-sentinel/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("frame-sentinel %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("frame-sentinel - MCP server for multi-temporal differential frame detection")
			fmt.Println()
			fmt.Println("Usage: frame-sentinel [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  FRAME_SENTINEL_LOG_LEVEL=debug    Enable debug logging")
			fmt.Println("  FRAME_SENTINEL_DB=<path>          SQLite catalog for run history (optional)")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	logLevel := os.Getenv("FRAME_SENTINEL_LOG_LEVEL")
	if logLevel == "debug" {
		log.Printf("Frame Sentinel v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	var store *catalog.Store
	if dbPath := os.Getenv("FRAME_SENTINEL_DB"); dbPath != "" {
		var err error
		store, err = catalog.Open(dbPath)
		if err != nil {
			log.Fatalf("Failed to open catalog %s: %v", dbPath, err)
		}
		defer store.Close()
		if logLevel == "debug" {
			log.Printf("Catalog enabled at %s", dbPath)
		}
	}

	srv := server.New(store)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
