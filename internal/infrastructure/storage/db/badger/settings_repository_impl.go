package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

const settingsKey = "settings"

type settingsRepositoryImpl struct {
	store *badgerhold.Store
}

func newSettingsRepositoryImpl(store *badgerhold.Store) ports.SettingsRepository {
	return settingsRepositoryImpl{store}
}

func (r settingsRepositoryImpl) GetActiveNetworkId(
	ctx context.Context,
) (string, error) {
	var settings ports.Settings
	if err := r.store.Get(settingsKey, &settings); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return settings.ActiveNetworkId, nil
}

func (r settingsRepositoryImpl) SetActiveNetworkId(
	ctx context.Context, networkId string,
) error {
	settings := ports.Settings{
		Key:             settingsKey,
		ActiveNetworkId: networkId,
	}
	return r.store.Upsert(settingsKey, &settings)
}
