package repository

import (
	"context"
	"errors"

	"github.com/smartboa/sbsbs/internal/models"
)

var (
	// ErrNotFound indicates that a requested detection was not found
	ErrNotFound = errors.New("detection not found")
	// ErrDuplicate indicates that a detection with the same id is already stored
	ErrDuplicate = errors.New("detection already exists")
)

// DetectionRepository stores detection records. Stored records are never
// modified; List returns them in insertion order.
type DetectionRepository interface {
	Append(ctx context.Context, record *models.DetectionRecord) error
	Get(ctx context.Context, id string) (*models.DetectionRecord, error)
	List(ctx context.Context) ([]*models.DetectionRecord, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
