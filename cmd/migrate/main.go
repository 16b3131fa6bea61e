package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/halwiz/storefront/internal/config"
	"github.com/halwiz/storefront/migrations"
	"github.com/halwiz/storefront/pkg/logging"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [up|down|status]\n", os.Args[0])
	}
	flag.Parse()

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", "migrate")

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_open_failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch cmd {
	case "up":
		err = migrations.Up(ctx, conn)
	case "down":
		err = migrations.Down(ctx, conn)
	case "status":
		err = migrations.Status(ctx, conn)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("migrate_failed", "cmd", cmd, "error", err)
		os.Exit(1)
	}
	logger.Info("migrate_done", "cmd", cmd)
}
