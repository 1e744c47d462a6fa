package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/appdotbuilder/pc-part-shop/internal/config"
	"github.com/appdotbuilder/pc-part-shop/internal/db"
	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/seed"
)

func main() {
	extra := flag.Int("customers", 10, "number of extra demo customers")
	password := flag.String("password", seed.DefaultPassword, "password for every seeded account")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db init failed", "error", err)
		os.Exit(1)
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		logger.Error("db migrate failed", "error", err)
		os.Exit(1)
	}

	sum, err := seed.Run(ctx, gdb, seed.Options{Password: *password, ExtraCustomers: *extra})
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Entity", "Created", "Existing")
	for _, r := range sum {
		if err := table.Append([]string{r.Entity, strconv.Itoa(r.Created), strconv.Itoa(r.Existing)}); err != nil {
			logger.Error("render summary", "error", err)
			os.Exit(1)
		}
	}
	if err := table.Render(); err != nil {
		logger.Error("render summary", "error", err)
		os.Exit(1)
	}
	fmt.Printf("admin login: %s / %s\n", seed.AdminEmail, *password)
}
