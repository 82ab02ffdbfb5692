package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/config"
	"github.com/pomoyka/pomoyka-client/internal/database"
	"github.com/pomoyka/pomoyka-client/internal/utils"
)

// Wipes the client's token store. Needed after TOKEN_STORE_KEY changes,
// since values sealed with the old key can no longer be opened.
func main() {
	var driverFlag, dsnFlag string
	flag.StringVar(&driverFlag, "driver", "", "token store driver, sqlite or postgres (overrides TOKEN_STORE_DRIVER)")
	flag.StringVar(&dsnFlag, "dsn", "", "token store DSN (overrides TOKEN_STORE_DSN)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	storeCfg := cfg.Store
	if driverFlag != "" {
		storeCfg.Driver = driverFlag
	}
	if dsnFlag != "" {
		storeCfg.DSN = dsnFlag
	}
	if storeCfg.Driver == "memory" {
		fmt.Println("Token store driver is memory, nothing to clear.")
		return
	}

	db, err := database.NewConnection(storeCfg)
	if err != nil {
		log.Fatalf("failed to open token store: %v", err)
	}
	defer db.Close()

	// Purging never opens a sealed value, so any key will do when the real one is lost
	key := storeCfg.Key
	if key == "" {
		key = "clear-session"
	}
	sealer, err := utils.NewSealer(key)
	if err != nil {
		log.Fatalf("failed to initialize sealer: %v", err)
	}
	repo := database.NewTokenRepository(db, sealer)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Connected to %s token store. Clearing stored session...\n", storeCfg.Driver)

	removed, err := repo.Purge(ctx)
	if err != nil {
		log.Fatalf("failed to clear token store: %v", err)
	}
	fmt.Printf("Removed %d stored entries.\n", removed)

	count, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("failed to verify token store: %v", err)
	}
	fmt.Printf("Post-clear entry count: %d\n", count)
}
