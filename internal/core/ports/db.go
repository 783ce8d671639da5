package ports

import "context"

// OnboardingMarker is the single durable flag recording that an address has
// completed the onboarding flow.
type OnboardingMarker struct {
	Address     string `badgerhold:"key"`
	CompletedAt int64
}

// OnboardingRepository persists the per-address completion markers.
type OnboardingRepository interface {
	MarkCompleted(ctx context.Context, address string) error
	IsCompleted(ctx context.Context, address string) (bool, error)
}

// Settings is the durable user preference record.
type Settings struct {
	Key             string `badgerhold:"key"`
	ActiveNetworkId string
}

// SettingsRepository persists the active network preference.
type SettingsRepository interface {
	GetActiveNetworkId(ctx context.Context) (string, error)
	SetActiveNetworkId(ctx context.Context, networkId string) error
}

// RepoManager gives access to all repositories and manages the underlying
// store lifecycle.
type RepoManager interface {
	OnboardingRepository() OnboardingRepository
	SettingsRepository() SettingsRepository
	Close()
}
