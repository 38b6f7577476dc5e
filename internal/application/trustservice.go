package application

import (
	"context"
	"log/slog"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
	"github.com/rubygems/configure-trusted-publisher/internal/domain/port/driven"
)

// TrustedPublisherService creates trusted publishers idempotently. It depends
// only on the TrustedPublisherStore port.
type TrustedPublisherService struct {
	store driven.TrustedPublisherStore
}

// NewTrustedPublisherService creates a new TrustedPublisherService.
func NewTrustedPublisherService(store driven.TrustedPublisherStore) *TrustedPublisherService {
	return &TrustedPublisherService{store: store}
}

// Configure creates spec for gem unless an equivalent publisher exists, in
// which case it returns a *model.ConflictError and writes nothing.
//
// The check and the create are separate requests; a publisher configured
// concurrently between them is not detected here and the registry decides.
func (s *TrustedPublisherService) Configure(ctx context.Context, gem string, spec model.TrustedPublisherSpec) error {
	existing, err := s.store.List(ctx, gem)
	if err != nil {
		return err
	}

	if match, ok := model.FindMatch(existing, spec); ok {
		slog.Info("equivalent trusted publisher exists", "gem", gem, "name", match.Name())
		return &model.ConflictError{Gem: gem, ExistingName: match.Name()}
	}

	slog.Debug("creating trusted publisher", "gem", gem, "existing", len(existing))
	return s.store.Create(ctx, gem, spec)
}
