package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cortexbuild/platform/internal/core/domain"
	"github.com/cortexbuild/platform/internal/core/ports"
)

// AuditService persists auth events for the activity trail. When no
// repository is configured (demo mode) events are emitted to the log only.
type AuditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

func (s *AuditService) Process(ctx context.Context, event domain.AuditEvent) error {
	s.log.Info().
		Str("actor", event.Actor).
		Str("action", string(event.Action)).
		Str("outcome", event.Outcome).
		Str("remote_addr", event.RemoteAddr).
		Msg("auth event")

	if s.repo == nil {
		return nil
	}
	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("persist audit event: %w", err)
	}
	return nil
}
