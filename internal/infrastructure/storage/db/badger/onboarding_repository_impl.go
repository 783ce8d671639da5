package dbbadger

import (
	"context"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

type onboardingRepositoryImpl struct {
	store *badgerhold.Store
}

func newOnboardingRepositoryImpl(store *badgerhold.Store) ports.OnboardingRepository {
	return onboardingRepositoryImpl{store}
}

func (r onboardingRepositoryImpl) MarkCompleted(
	ctx context.Context, address string,
) error {
	marker := ports.OnboardingMarker{
		Address:     address,
		CompletedAt: time.Now().Unix(),
	}
	if err := r.store.Insert(address, &marker); err != nil {
		if err != badgerhold.ErrKeyExists {
			return err
		}
	}
	return nil
}

func (r onboardingRepositoryImpl) IsCompleted(
	ctx context.Context, address string,
) (bool, error) {
	var marker ports.OnboardingMarker
	if err := r.store.Get(address, &marker); err != nil {
		if err == badgerhold.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
