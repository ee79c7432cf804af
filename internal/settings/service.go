package settings

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-komisi/internal/cache"
	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/db"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/events"
)

// Store captures the settings queries.
type Store interface {
	EnsureSettings(ctx context.Context, restPercentage float64) (dbgen.CommissionSetting, error)
	GetSettings(ctx context.Context) (dbgen.CommissionSetting, error)
	UpdateRestPercentage(ctx context.Context, restPercentage float64) (dbgen.CommissionSetting, error)
	SetPassphraseHash(ctx context.Context, passphraseHash pgtype.Text) (dbgen.CommissionSetting, error)
}

// settingsAggregateID identifies the singleton settings row in domain events.
var settingsAggregateID = pgtype.UUID{Bytes: [16]byte{15: 1}, Valid: true}

// Settings is the public view of the commission settings. The passphrase hash never leaves the service.
type Settings struct {
	RestPercentage float64   `json:"restPercentage"`
	PassphraseSet  bool      `json:"passphraseSet"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UpdateInput is the PUT /settings payload.
type UpdateInput struct {
	RestPercentage *float64 `json:"restPercentage" validate:"required,gte=0,lte=100"`
}

// Service reads and writes the settings row, caching the public view in Redis.
type Service struct {
	Q           Store
	Cache       *cache.JSON
	Events      events.Publisher
	Logger      zerolog.Logger
	DefaultRest float64
}

// EnsureDefaults creates the settings row when it does not exist yet.
func (s *Service) EnsureDefaults(ctx context.Context) (Settings, error) {
	row, err := s.Q.EnsureSettings(ctx, s.DefaultRest)
	if err != nil {
		return Settings{}, err
	}
	return fromModel(row), nil
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	var cached Settings
	if ok, err := s.Cache.Get(ctx, cache.KeySettings, &cached); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache read failed")
	} else if ok {
		return cached, nil
	}
	row, err := s.Q.GetSettings(ctx)
	if err != nil {
		if !db.IsNotFound(err) {
			return Settings{}, err
		}
		row, err = s.Q.EnsureSettings(ctx, s.DefaultRest)
		if err != nil {
			return Settings{}, err
		}
	}
	out := fromModel(row)
	s.store(ctx, out)
	return out, nil
}

// RestPercentage returns the current default rest percentage for new invoices.
func (s *Service) RestPercentage(ctx context.Context) (float64, error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return cur.RestPercentage, nil
}

// Update validates and persists a new rest percentage.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Settings, error) {
	if err := common.Validate(in); err != nil {
		return Settings{}, err
	}
	if _, err := s.EnsureDefaults(ctx); err != nil {
		return Settings{}, err
	}
	row, err := s.Q.UpdateRestPercentage(ctx, *in.RestPercentage)
	if err != nil {
		return Settings{}, err
	}
	out := fromModel(row)
	s.store(ctx, out)
	events.Publish(ctx, s.Events, s.Logger, events.TopicSettingsUpdated, settingsAggregateID, map[string]any{
		"restPercentage": out.RestPercentage,
	})
	return out, nil
}

// PassphraseHash returns the stored gate hash, or "" when none has been set.
func (s *Service) PassphraseHash(ctx context.Context) (string, error) {
	row, err := s.Q.GetSettings(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	if !row.PassphraseHash.Valid {
		return "", nil
	}
	return row.PassphraseHash.String, nil
}

// SetPassphraseHash replaces the gate hash.
func (s *Service) SetPassphraseHash(ctx context.Context, hash string) error {
	if _, err := s.EnsureDefaults(ctx); err != nil {
		return err
	}
	row, err := s.Q.SetPassphraseHash(ctx, db.Text(hash))
	if err != nil {
		return err
	}
	s.store(ctx, fromModel(row))
	return nil
}

func (s *Service) store(ctx context.Context, v Settings) {
	if err := s.Cache.Set(ctx, cache.KeySettings, v); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache write failed")
	}
}

func fromModel(row dbgen.CommissionSetting) Settings {
	return Settings{
		RestPercentage: row.RestPercentage,
		PassphraseSet:  row.PassphraseHash.Valid && row.PassphraseHash.String != "",
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
