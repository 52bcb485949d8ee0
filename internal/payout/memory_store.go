package payout

import (
	"context"
	"sync"

	"newsdash/internal/model"
)

// MemoryRateStore keeps rates in process memory. It is used when no
// database is configured.
type MemoryRateStore struct {
	mu    sync.RWMutex
	rates []model.PayoutRate
}

func NewMemoryRateStore() *MemoryRateStore {
	return &MemoryRateStore{rates: model.DefaultPayoutRates()}
}

func (s *MemoryRateStore) LoadRates(ctx context.Context) ([]model.PayoutRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PayoutRate, len(s.rates))
	copy(out, s.rates)
	return out, nil
}

func (s *MemoryRateStore) SaveRate(ctx context.Context, rate model.PayoutRate) error {
	if err := ValidateRate(rate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.rates {
		if r.Type == rate.Type {
			s.rates[i] = rate
			return nil
		}
	}
	s.rates = append(s.rates, rate)
	return nil
}

func (s *MemoryRateStore) ResetRates(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rates = model.DefaultPayoutRates()
	return nil
}
