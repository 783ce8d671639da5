// Package dbbadger persists the app preferences and the per-address
// onboarding markers on a badger store.
package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

type repoManager struct {
	store *badgerhold.Store

	onboardingRepository ports.OnboardingRepository
	settingsRepository   ports.SettingsRepository
}

// NewRepoManager opens (or creates if not exists) the badger store under the
// given data dir. An empty dir opens an in-memory store, used by tests.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "app")
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening app db: %w", err)
	}

	return &repoManager{
		store:                store,
		onboardingRepository: newOnboardingRepositoryImpl(store),
		settingsRepository:   newSettingsRepositoryImpl(store),
	}, nil
}

func (d *repoManager) OnboardingRepository() ports.OnboardingRepository {
	return d.onboardingRepository
}

func (d *repoManager) SettingsRepository() ports.SettingsRepository {
	return d.settingsRepository
}

func (d *repoManager) Close() {
	d.store.Close()
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	var buff bytes.Buffer
	de := json.NewDecoder(&buff)

	_, err := buff.Write(data)
	if err != nil {
		return err
	}

	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (db *badgerhold.Store, err error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if len(dbDir) <= 0 {
		opts.InMemory = true
	}

	db, err = badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})

	return
}
