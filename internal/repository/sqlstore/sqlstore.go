package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/smartboa/sbsbs/internal/database"
	"github.com/smartboa/sbsbs/internal/errors"
	"github.com/smartboa/sbsbs/internal/models"
	"github.com/smartboa/sbsbs/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

var schemas = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS detections (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			phone_number TEXT NOT NULL,
			detected_at TIMESTAMPTZ NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			humidity DOUBLE PRECISION NOT NULL,
			weight DOUBLE PRECISION NOT NULL,
			rfid TEXT NOT NULL,
			skink_rfids TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_detected_at ON detections(detected_at DESC)`,
	},
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS detections (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			phone_number TEXT NOT NULL,
			detected_at TIMESTAMP NOT NULL,
			temperature REAL NOT NULL,
			humidity REAL NOT NULL,
			weight REAL NOT NULL,
			rfid TEXT NOT NULL,
			skink_rfids TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_detected_at ON detections(detected_at DESC)`,
	},
}

const selectColumns = `id, phone_number, detected_at, temperature, humidity, weight, rfid, skink_rfids`

// Repo stores detections in a SQL table through sqlx
type Repo struct {
	db database.DB
}

// New creates the detections schema if needed and returns the repository
func New(db database.DB) (*Repo, error) {
	repo := &Repo{db: db}
	if err := repo.initializeSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repo) initializeSchema() error {
	queries, ok := schemas[r.db.Dialect()]
	if !ok {
		return errors.NewInternalError("unsupported sql dialect "+r.db.Dialect(), nil)
	}
	for _, query := range queries {
		if _, err := r.db.GetDB().Exec(query); err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}
	return nil
}

func (r *Repo) Append(ctx context.Context, record *models.DetectionRecord) error {
	query := `
		INSERT INTO detections (
			id, phone_number, detected_at, temperature, humidity, weight, rfid, skink_rfids
		) VALUES (
			:id, :phone_number, :detected_at, :temperature, :humidity, :weight, :rfid, :skink_rfids
		)
		ON CONFLICT (id) DO NOTHING`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, record)
	if err != nil {
		return errors.NewDatabaseError("failed to insert detection", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewValidationError("detection "+record.ID+" already stored", repository.ErrDuplicate)
	}

	nuts.L.Debugf("[SQLStore] Inserted detection %s", record.ID)
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.DetectionRecord, error) {
	record := &models.DetectionRecord{}
	query := r.db.GetDB().Rebind(`SELECT ` + selectColumns + ` FROM detections WHERE id = ?`)

	err := r.db.GetDB().GetContext(ctx, record, query, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("detection "+id+" not found", repository.ErrNotFound)
		}
		return nil, errors.NewDatabaseError("failed to get detection", err)
	}
	record.Time = record.Time.UTC()
	return record, nil
}

func (r *Repo) List(ctx context.Context) ([]*models.DetectionRecord, error) {
	records := []*models.DetectionRecord{}
	query := `SELECT ` + selectColumns + ` FROM detections ORDER BY seq ASC`

	if err := r.db.GetDB().SelectContext(ctx, &records, query); err != nil {
		return nil, errors.NewDatabaseError("failed to list detections", err)
	}
	for _, rec := range records {
		rec.Time = rec.Time.UTC()
	}
	return records, nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetDB().GetContext(ctx, &count, `SELECT COUNT(*) FROM detections`); err != nil {
		return 0, errors.NewDatabaseError("failed to count detections", err)
	}
	return count, nil
}

func (r *Repo) Close() error {
	if err := r.db.Close(); err != nil {
		return errors.NewDatabaseError("failed to close database", err)
	}
	return nil
}
