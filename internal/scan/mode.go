package scan

import (
	"context"

	"github.com/premovescan/premovescan/internal/store"
)

// Mode is a symbol's per-cycle data-fetch policy.
type Mode string

const (
	ModeBootstrap   Mode = "BOOTSTRAP"
	ModeIncremental Mode = "INCREMENTAL"
)

// bootstrapCandleLimit is large enough to backfill the full candle
// retention window in one fetch; incrementalCandleLimit only tops up the
// most recent bar(s), relying on the Store for the rest of history.
const (
	bootstrapCandleLimit   = 500
	incrementalCandleLimit = 3
)

// decideMode inspects Store sample counts against the same per-kind
// minimums the Store itself retains (store.RetentionOf): a symbol short
// of any floor still needs a full bootstrap fetch.
func decideMode(ctx context.Context, s *store.Store, symbol string) (Mode, error) {
	kinds := []store.Kind{store.KindCandle, store.KindOI, store.KindFunding, store.KindLS}
	for _, k := range kinds {
		n, err := s.Count(ctx, symbol, k)
		if err != nil {
			return ModeBootstrap, err
		}
		if n < store.RetentionOf(k) {
			return ModeBootstrap, nil
		}
	}
	return ModeIncremental, nil
}

func candleLimitFor(mode Mode) int {
	if mode == ModeBootstrap {
		return bootstrapCandleLimit
	}
	return incrementalCandleLimit
}
