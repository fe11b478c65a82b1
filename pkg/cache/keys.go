package cache

import (
	"fmt"
	"time"

	"arbscan/pkg/types"
)

// Key namespaces and TTLs used by the scanning pipeline.
const (
	MarketsTTL       = 120 * time.Second
	OpportunitiesTTL = 120 * time.Second
	ScanResultsTTL   = time.Hour
)

// MarketsKey is the snapshot key for one platform's normalized markets.
func MarketsKey(platform types.Platform) string {
	return fmt.Sprintf("markets:%s", platform)
}

// OpportunitiesLatestKey holds the most recent profitable opportunities.
const OpportunitiesLatestKey = "opportunities:latest"

// ScanResultsKey is the timestamped archive key for one scan result.
func ScanResultsKey(epochMs int64) string {
	return fmt.Sprintf("scan:results:%d", epochMs)
}

// AlertSentKey is the cooldown marker for one alerted market pair.
func AlertSentKey(idA, idB string) string {
	return fmt.Sprintf("alert:sent:%s:%s", idA, idB)
}
