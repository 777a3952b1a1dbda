// Package featureflags gates optional subsystems behind environment
// variables so a deployment can run the bare catalog API alone.
package featureflags

import (
	"os"
	"strings"
)

// Flags known to the inventory server. Everything here defaults to off.
const (
	// FlagInventoryFeed exposes the websocket stream of product change
	// events at /ws/inventory.
	FlagInventoryFeed = "inventory_feed"

	// FlagLowStockMonitor starts the background worker that scans for
	// products below the stock threshold.
	FlagLowStockMonitor = "low_stock_monitor"
)

// Enabled reports whether the flag is switched on through the
// environment. A flag named "inventory_feed" is read from
// FLAG_INVENTORY_FEED; "1", "true", "yes" and "on" count as enabled.
func Enabled(name string) bool {
	switch strings.ToLower(os.Getenv("FLAG_" + strings.ToUpper(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
