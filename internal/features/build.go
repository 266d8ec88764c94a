package features

import "github.com/premovescan/premovescan/internal/domain"

const (
	atrPeriod = 14
	bbwPeriod = 20
)

// Build assembles a Bundle from the raw series a scan cycle has on hand:
// ascending hourly candles, ascending OI/funding/LS points, the latest
// ticker, and the latest book snapshot. Every series may be shorter than
// its ideal lookback; callers get best-effort values with quality
// downgraded accordingly, never an error.
func Build(symbol string, candles []domain.Candle, oi []domain.OIPoint, funding []domain.FundingPoint, ls []domain.LSPoint, tickers []domain.Ticker, book *domain.BookSnapshot, recentBidClusterUSD []float64) Bundle {
	b := Bundle{Symbol: symbol, Quality: domain.QualityHigh, RecentBidClusterUSD: recentBidClusterUSD}

	if len(candles) > 0 {
		last := candles[len(candles)-1]
		b.PriceNow = last.Close
		b.Price6hAgo = candleCloseBack(candles, 6)
		b.Price24hAgo = candleCloseBack(candles, 24)
		b.Price72hAgo = candleCloseBack(candles, 72)
		b.Price7dAgo = candleCloseBack(candles, 168)

		b.ATR = ATR(candles, atrPeriod)
		b.BBW = BBW(candles, bbwPeriod)
		if vwap, ok := VWAP(candles, 24); ok {
			b.VWAP24h = vwap
		}
		if swing, ok := SwingLow(candles, 24); ok {
			b.SwingLow24h = swing
		}
		b.Vol24h = VolumeSum(candles, 24)
		b.VolPrev24h = windowVolume(candles, 48, 24)
		b.Vol72hMean = meanVolume(candles, 72) * 24
		b.Vol7dMean = meanVolume(candles, 168)
		b.PriceHigh30d, b.PriceLow30d = highLow(candles, 720)
	} else {
		b.Quality = domain.QualityLow
	}
	if !b.ATR.Valid {
		b.Quality = b.Quality.Worse(domain.QualityLow)
	}

	if len(oi) > 0 {
		b.OINow = oi[len(oi)-1].Total()
		if back := oiBack(oi, 72); back != nil {
			b.OI72hAgo = back.Total()
		}
	} else {
		b.Quality = b.Quality.Worse(domain.QualityLow)
	}

	if len(funding) > 0 {
		b.FundingRateMean24h = meanFundingRate(funding, 24)
		b.FundingPersistence72h = fundingPersistence(funding, 72)
	} else {
		b.Quality = b.Quality.Worse(domain.QualityLow)
	}

	if len(ls) > 0 {
		latest := ls[len(ls)-1]
		b.LSRatioMean = meanOf(latest.RatioByExchange)
	} else {
		b.Quality = b.Quality.Worse(domain.QualityLow)
	}

	if len(tickers) > 0 {
		t := tickers[len(tickers)-1]
		if b.PriceNow == 0 {
			b.PriceNow = t.Price
		}
		b.ExchangeVol24h = t.PerExchange
	}

	if book != nil {
		b.BidCluster10pc = BookCluster(book.PerExchange, SideBid, b.PriceNow, 0.10)
		b.AskCluster10pc = BookCluster(book.PerExchange, SideAsk, b.PriceNow, 0.10)
		b.BidCluster15pc = BookCluster(book.PerExchange, SideBid, b.PriceNow, 0.15)
		b.AskCluster15pc = BookCluster(book.PerExchange, SideAsk, b.PriceNow, 0.15)
	} else {
		b.Quality = b.Quality.Worse(domain.QualityLow)
	}

	return b
}

func candleCloseBack(candles []domain.Candle, back int) float64 {
	idx := len(candles) - 1 - back
	if idx < 0 {
		return 0
	}
	return candles[idx].Close
}

func windowVolume(candles []domain.Candle, backStart, length int) float64 {
	end := len(candles) - backStart + length
	start := end - length
	if start < 0 {
		start = 0
	}
	if end > len(candles) {
		end = len(candles)
	}
	if start >= end {
		return 0
	}
	var sum float64
	for _, c := range candles[start:end] {
		sum += c.Volume
	}
	return sum
}

func meanVolume(candles []domain.Candle, window int) float64 {
	start := 0
	if len(candles) > window {
		start = len(candles) - window
	}
	slice := candles[start:]
	if len(slice) == 0 {
		return 0
	}
	var sum float64
	for _, c := range slice {
		sum += c.Volume
	}
	return sum / float64(len(slice))
}

func highLow(candles []domain.Candle, window int) (float64, float64) {
	start := 0
	if len(candles) > window {
		start = len(candles) - window
	}
	slice := candles[start:]
	if len(slice) == 0 {
		return 0, 0
	}
	high, low := slice[0].High, slice[0].Low
	for _, c := range slice[1:] {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	return high, low
}

func oiBack(oi []domain.OIPoint, back int) *domain.OIPoint {
	idx := len(oi) - 1 - back
	if idx < 0 {
		return nil
	}
	return &oi[idx]
}

func meanFundingRate(funding []domain.FundingPoint, window int) float64 {
	start := 0
	if len(funding) > window {
		start = len(funding) - window
	}
	slice := funding[start:]
	if len(slice) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, p := range slice {
		for _, r := range p.RateByExchange {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// fundingPersistence returns the fraction of the last `window` funding
// points whose mean rate across exchanges was negative.
func fundingPersistence(funding []domain.FundingPoint, window int) float64 {
	start := 0
	if len(funding) > window {
		start = len(funding) - window
	}
	slice := funding[start:]
	if len(slice) == 0 {
		return 0
	}
	var negCount int
	for _, p := range slice {
		if meanOf(p.RateByExchange) < 0 {
			negCount++
		}
	}
	return float64(negCount) / float64(len(slice))
}

func meanOf(m map[string]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum / float64(len(m))
}
