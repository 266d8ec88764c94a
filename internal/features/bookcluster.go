package features

import (
	"sort"

	"github.com/premovescan/premovescan/internal/domain"
)

type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// BookClusterResult is the merged-cluster summary within a price band on
// one side of the book.
type BookClusterResult struct {
	TotalUSD         float64
	LargestClusterUSD float64
	ClusterPrice     float64
	Quality          domain.Quality
}

// bucketWidthPct is the clustering bucket width as a fraction of price; book
// levels within the same bucket are merged into one cluster. The extractor
// is pure and deterministic; this constant is the chosen clustering
// granularity.
const bucketWidthPct = 0.002

// BookCluster merges order book levels across all exchanges within the top
// windowPct of price on the given side, returning total notional, the
// largest single cluster's notional, and that cluster's representative
// price.
func BookCluster(book map[string]domain.BookPerExchange, side Side, price, windowPct float64) BookClusterResult {
	if price <= 0 {
		return BookClusterResult{Quality: domain.QualityLow}
	}
	lowBound := price * (1 - windowPct)
	highBound := price * (1 + windowPct)

	type bucketKey = int64
	buckets := make(map[bucketKey]float64)

	exchangeCount := 0
	for _, per := range book {
		levels := per.Bids
		if side == SideAsk {
			levels = per.Asks
		}
		if len(levels) == 0 {
			continue
		}
		exchangeCount++
		for _, lvl := range levels {
			inBand := (side == SideBid && lvl.Price >= lowBound && lvl.Price <= price) ||
				(side == SideAsk && lvl.Price <= highBound && lvl.Price >= price)
			if !inBand {
				continue
			}
			bucket := bucketKey(lvl.Price / (price * bucketWidthPct))
			buckets[bucket] += lvl.USD
		}
	}

	var total float64
	var largest float64
	var largestBucket bucketKey
	keys := make([]bucketKey, 0, len(buckets))
	for k, usd := range buckets {
		keys = append(keys, k)
		total += usd
		if usd > largest {
			largest = usd
			largestBucket = k
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	clusterPrice := float64(largestBucket) * price * bucketWidthPct

	q := domain.QualityHigh
	if exchangeCount == 0 {
		q = domain.QualityLow
	} else if exchangeCount == 1 {
		q = domain.QualityMed
	}
	return BookClusterResult{TotalUSD: total, LargestClusterUSD: largest, ClusterPrice: clusterPrice, Quality: q}
}

// MedianRecentClusterUSD returns the median largest-cluster USD across a
// short history of BookClusterResult snapshots, used by the smart-levels
// engine's book-support stop candidate.
func MedianRecentClusterUSD(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
