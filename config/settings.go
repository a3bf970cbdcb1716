package config

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Membership economics settings.
//
// Env:
// - SHARE_PRICE: currency units per share (default 3000)
// - ECONOMICS_BACKGROUND_BATCH: page size for the dividend fulfillment
//   run (default 20)

const (
	defaultSharePrice     = 3000
	defaultEconomicsBatch = 20
)

func SharePrice() decimal.Decimal {
	v := strings.TrimSpace(os.Getenv("SHARE_PRICE"))
	if v == "" {
		return decimal.NewFromInt(defaultSharePrice)
	}
	price, err := decimal.NewFromString(v)
	if err != nil || !price.IsPositive() {
		return decimal.NewFromInt(defaultSharePrice)
	}
	return price
}

func EconomicsBatchSize() int {
	n := intFromEnv("ECONOMICS_BACKGROUND_BATCH", defaultEconomicsBatch)
	if n <= 0 {
		return defaultEconomicsBatch
	}
	return n
}
