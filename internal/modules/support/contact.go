// README: Contact-form submissions.
package support

import (
	"context"
	"fmt"
	"log/slog"
)

type ContactService struct {
	store Store
	log   *slog.Logger
}

func NewContactService(store Store, log *slog.Logger) *ContactService {
	return &ContactService{store: store, log: log}
}

// Submit stores a contact-form message. Name, email, and message are
// required; phone is optional.
func (s *ContactService) Submit(ctx context.Context, m ContactMessage) error {
	if m.Name == "" || m.Email == "" || m.Message == "" {
		return fmt.Errorf("%w: name, email, and message are required", ErrBadRequest)
	}
	if err := s.store.CreateContactMessage(ctx, m); err != nil {
		s.log.Error("contact submission failed", "err", err)
		return ErrUnavailable
	}
	s.log.Info("contact message received", "email", m.Email)
	return nil
}
