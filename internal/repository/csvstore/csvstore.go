package csvstore

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/smartboa/sbsbs/internal/errors"
	"github.com/smartboa/sbsbs/internal/models"
	"github.com/smartboa/sbsbs/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultDirPermissions  = 0755
	defaultFilePermissions = 0644
)

// Config holds configuration for the CSV storage file
type Config struct {
	Path string
}

// Repo keeps detections in an append-only CSV file, one record per line
type Repo struct {
	config Config
	mu     sync.Mutex
	ids    map[string]struct{}
}

// New opens the storage file, creating it and its directory when missing
func New(config Config) (*Repo, error) {
	if err := createDirectoryIfNotExists(filepath.Dir(config.Path)); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(config.Path, os.O_CREATE|os.O_RDONLY, defaultFilePermissions)
	if err != nil {
		return nil, errors.NewStorageError("failed to open storage file", err)
	}
	f.Close()

	r := &Repo{config: config, ids: make(map[string]struct{})}
	records, err := r.readAll()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		r.ids[rec.ID] = struct{}{}
	}
	nuts.L.Infof("[CSVStore] Opened %s with %d detections", config.Path, len(records))
	return r, nil
}

func (r *Repo) Append(ctx context.Context, record *models.DetectionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids[record.ID]; exists {
		return errors.NewValidationError("detection "+record.ID+" already stored", repository.ErrDuplicate)
	}

	f, err := os.OpenFile(r.config.Path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, defaultFilePermissions)
	if err != nil {
		return errors.NewStorageError("failed to open storage file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(record.ToRow()); err != nil {
		return errors.NewStorageError("failed to append detection", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewStorageError("failed to flush detection", err)
	}

	r.ids[record.ID] = struct{}{}
	nuts.L.Debugf("[CSVStore] Appended detection %s", record.ID)
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.DetectionRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errors.NewNotFoundError("detection "+id+" not found", repository.ErrNotFound)
}

func (r *Repo) List(ctx context.Context) ([]*models.DetectionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAll()
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids), nil
}

func (r *Repo) Close() error {
	return nil
}

// readAll parses the storage file. Malformed lines are logged and skipped.
func (r *Repo) readAll() ([]*models.DetectionRecord, error) {
	f, err := os.Open(r.config.Path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open storage file", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	records := []*models.DetectionRecord{}
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			nuts.L.Warnf("[CSVStore] Skipping unreadable line %d of %s: %v", line, r.config.Path, err)
			continue
		}
		rec, err := models.ParseRow(row)
		if err != nil {
			nuts.L.Warnf("[CSVStore] Skipping malformed line %d of %s: %v", line, r.config.Path, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func createDirectoryIfNotExists(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, defaultDirPermissions); err != nil {
			return errors.NewStorageError("failed to create directory", err)
		}
	}
	return nil
}
