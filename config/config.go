package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	TelegramToken  string
	AdminIDs       []int64
	ProductsDBPath string
}

// Load reads the configuration from the environment (.env is picked up
// when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		ProductsDBPath: "data/products.db",
	}

	if dbPath := os.Getenv("PRODUCTS_DB_PATH"); dbPath != "" {
		config.ProductsDBPath = dbPath
	}

	adminIDs, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	config.AdminIDs = adminIDs

	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is empty")
	}
	if len(config.AdminIDs) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS environment variable is empty")
	}

	return config, nil
}

// parseAdminIDs parses a comma-separated list of Telegram user IDs.
func parseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS contains invalid entry %q: %v", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
