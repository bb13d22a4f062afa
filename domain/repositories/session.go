package repositories

import (
	"context"

	"github.com/prasraka/docvoice/domain/entities"
)

// SessionRepository defines access to per-user session state.
type SessionRepository interface {
	Create(ctx context.Context) (*entities.Session, error)
	Get(ctx context.Context, id string) (*entities.Session, error)
	Save(ctx context.Context, session *entities.Session) error
	// Delete removes a session. Deleting an unknown ID is not an
	// error, so reset stays idempotent.
	Delete(ctx context.Context, id string) error
}
