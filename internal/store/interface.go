package store

import (
	"context"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/domain"
)

// MessageStore is the persistence gateway. The relay only depends on the
// success/failure signal; the storage format is the store's business.
type MessageStore interface {
	Append(ctx context.Context, msg *domain.Message) error
	Close() error
}
