// Command vhostmgr manages nginx virtual hosts and their certificates.
//
//	vhostmgr list
//	vhostmgr stats
//	vhostmgr add <domain> [true|false]
//	vhostmgr delete <domain>
//	vhostmgr install_ssl <domain> [true|false]
//	vhostmgr prepare_ssl <domain>
//	vhostmgr seed
//
// The outcome is printed to stdout as a single JSON object; logs go to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"vhostmgr/internal/config"
	"vhostmgr/internal/logger"
	"vhostmgr/internal/manager"
)

// output is the JSON printed for list and stats and for usage errors
type output struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one action and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	enc := json.NewEncoder(stdout)

	if len(args) < 1 {
		enc.Encode(output{Message: "No action specified"})
		return 1
	}

	action := args[0]
	switch action {
	case "list", "stats", "seed":
	case "add", "delete", "install_ssl", "prepare_ssl":
		if len(args) < 2 {
			enc.Encode(output{Message: "Domain name required"})
			return 1
		}
	default:
		enc.Encode(output{Message: fmt.Sprintf("Unknown action: %s", action)})
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		enc.Encode(output{Message: fmt.Sprintf("Error: %v", err)})
		return 1
	}

	if action == "seed" && cfg.Backend != config.BackendSandbox {
		enc.Encode(output{Message: "Seeding is only available with the sandbox backend"})
		return 1
	}

	log := logger.New(cfg.Log, stderr)
	mgr, closeFn, err := manager.Build(ctx, cfg, log, nil)
	if err != nil {
		log.WithError(err).Error("failed to initialize")
		enc.Encode(output{Message: fmt.Sprintf("Error: %v", err)})
		return 1
	}
	defer closeFn()

	switch action {
	case "list":
		records, err := mgr.ListDomains(ctx)
		if err != nil {
			enc.Encode(output{Message: fmt.Sprintf("Error: %v", err)})
			return 1
		}
		if records == nil {
			records = []manager.DomainRecord{}
		}
		enc.Encode(output{Success: true, Message: fmt.Sprintf("Found %d domains", len(records)), Data: records})

	case "stats":
		stats, err := mgr.GetStats(ctx)
		if err != nil {
			enc.Encode(output{Message: fmt.Sprintf("Error: %v", err)})
			return 1
		}
		enc.Encode(output{Success: true, Message: "Statistics computed", Data: stats})

	case "add":
		enc.Encode(mgr.AddDomain(ctx, args[1], flag(args, 2)))

	case "delete":
		enc.Encode(mgr.DeleteDomain(ctx, args[1]))

	case "install_ssl":
		enc.Encode(mgr.InstallSSL(ctx, args[1], flag(args, 2)))

	case "prepare_ssl":
		enc.Encode(mgr.PrepareSSL(ctx, args[1]))

	case "seed":
		enc.Encode(mgr.Seed(ctx))
	}

	return 0
}

// flag reads an optional true/false positional argument
func flag(args []string, i int) bool {
	return len(args) > i && strings.EqualFold(args[i], "true")
}
