package store

import (
	"context"
	"encoding/json"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/errs"
)

// Typed accessors over the raw JSON-payload series table. Downstream code
// (features, signals, levels) only ever sees these concrete types.

func (s *Store) AppendCandle(ctx context.Context, symbol string, c domain.Candle) error {
	return s.Append(ctx, symbol, KindCandle, c.T, c)
}

func (s *Store) AppendOI(ctx context.Context, symbol string, p domain.OIPoint) error {
	return s.Append(ctx, symbol, KindOI, p.T, p)
}

func (s *Store) AppendFunding(ctx context.Context, symbol string, p domain.FundingPoint) error {
	return s.Append(ctx, symbol, KindFunding, p.T, p)
}

func (s *Store) AppendLS(ctx context.Context, symbol string, p domain.LSPoint) error {
	return s.Append(ctx, symbol, KindLS, p.T, p)
}

func (s *Store) AppendTicker(ctx context.Context, symbol string, t domain.Ticker) error {
	return s.Append(ctx, symbol, KindTicker, t.T, t)
}

func (s *Store) AppendBook(ctx context.Context, symbol string, b domain.BookSnapshot) error {
	// Book snapshots are ephemeral: keep only the latest under a fixed key.
	return s.Append(ctx, symbol, KindBook, 0, b)
}

func unmarshalAll[T any](s *Store, ctx context.Context, symbol string, kind Kind, n int) ([]T, error) {
	var out []T
	err := s.Latest(ctx, symbol, kind, n, func(t int64, payload []byte) error {
		var v T
		if err := json.Unmarshal(payload, &v); err != nil {
			return errs.Wrap(errs.Internal, symbol, "unmarshal "+string(kind), err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func (s *Store) LatestCandles(ctx context.Context, symbol string, n int) ([]domain.Candle, error) {
	return unmarshalAll[domain.Candle](s, ctx, symbol, KindCandle, n)
}

func (s *Store) LatestOI(ctx context.Context, symbol string, n int) ([]domain.OIPoint, error) {
	return unmarshalAll[domain.OIPoint](s, ctx, symbol, KindOI, n)
}

func (s *Store) LatestFunding(ctx context.Context, symbol string, n int) ([]domain.FundingPoint, error) {
	return unmarshalAll[domain.FundingPoint](s, ctx, symbol, KindFunding, n)
}

func (s *Store) LatestLS(ctx context.Context, symbol string, n int) ([]domain.LSPoint, error) {
	return unmarshalAll[domain.LSPoint](s, ctx, symbol, KindLS, n)
}

func (s *Store) LatestTickers(ctx context.Context, symbol string, n int) ([]domain.Ticker, error) {
	return unmarshalAll[domain.Ticker](s, ctx, symbol, KindTicker, n)
}

func (s *Store) LatestBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error) {
	books, err := unmarshalAll[domain.BookSnapshot](s, ctx, symbol, KindBook, 1)
	if err != nil || len(books) == 0 {
		return nil, err
	}
	return &books[0], nil
}
