package features

import (
	"github.com/premovescan/premovescan/internal/domain"
)

// Bundle is the full set of computed features for one symbol at scan time,
// the shared input to all nine signal evaluators.
type Bundle struct {
	Symbol string

	PriceNow   float64
	Price6hAgo float64
	Price24hAgo float64
	Price72hAgo float64
	Price7dAgo float64

	ATR      ATRResult
	BBW      BBWResult
	VWAP24h  float64
	SwingLow24h float64

	OINow     float64
	OI72hAgo  float64

	FundingRateMean24h float64 // signed mean rate across exchanges, last 24h
	FundingPersistence72h float64 // fraction of last 72h periods negative

	LSRatioMean float64 // mean long/short ratio across exchanges

	Vol24h     float64
	VolPrev24h float64
	Vol72hMean float64 // mean 24h volume over the last 72h, same units as Vol24h
	Vol7dMean  float64

	ExchangeVol24h map[string]float64 // per-exchange 24h volume, for cross-exchange signal

	BidCluster10pc BookClusterResult // depth imbalance uses +/-10%
	AskCluster10pc BookClusterResult
	BidCluster15pc BookClusterResult // liquidation leverage / stop selection use +/-15%
	AskCluster15pc BookClusterResult
	RecentBidClusterUSD []float64 // history of largest bid-cluster USD, for stop candidate

	PriceHigh30d float64 // high of last 30d, used by the liquidation-leverage proxy
	PriceLow30d  float64

	Quality domain.Quality
}
