package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

const BackendFile = "file"

// FileAdapter keeps each kind as a JSON array in <dir>/<kind>.json. Every
// mutation rewrites the whole file. The mutex only orders writers inside this
// process; separate processes sharing the directory are last-writer-wins.
type FileAdapter struct {
	dir string
	mu  sync.Mutex
}

func NewFileAdapter(dir string) *FileAdapter {
	return &FileAdapter{dir: dir}
}

func (f *FileAdapter) Path(kind domain.Kind) string {
	return filepath.Join(f.dir, string(kind)+".json")
}

func (f *FileAdapter) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load(kind)
}

func (f *FileAdapter) Get(ctx context.Context, kind domain.Kind, id string) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load(kind)
	if err != nil {
		return nil, err
	}

	idx := indexOf(records, id)
	if idx == -1 {
		return nil, domain.ErrNotFound
	}
	return records[idx], nil
}

func (f *FileAdapter) Insert(ctx context.Context, kind domain.Kind, record domain.Record) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load(kind)
	if err != nil {
		return nil, err
	}

	if indexOf(records, record.ID()) != -1 {
		return nil, domain.ErrConflict
	}

	records = append(records, record)
	if err := f.save(kind, records); err != nil {
		return nil, err
	}
	return record, nil
}

func (f *FileAdapter) Update(ctx context.Context, kind domain.Kind, id string, patch domain.Record) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load(kind)
	if err != nil {
		return nil, err
	}

	idx := indexOf(records, id)
	if idx == -1 {
		return nil, domain.ErrNotFound
	}

	records[idx] = records[idx].Merge(patch)
	if err := f.save(kind, records); err != nil {
		return nil, err
	}
	return records[idx], nil
}

func (f *FileAdapter) Remove(ctx context.Context, kind domain.Kind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load(kind)
	if err != nil {
		return err
	}

	idx := indexOf(records, id)
	if idx == -1 {
		return domain.ErrNotFound
	}

	records = append(records[:idx], records[idx+1:]...)
	return f.save(kind, records)
}

func (f *FileAdapter) Backend() string { return BackendFile }

func (f *FileAdapter) Live() bool { return false }

func (f *FileAdapter) Close(ctx context.Context) error { return nil }

// load treats a missing or empty file as an empty collection.
func (f *FileAdapter) load(kind domain.Kind) ([]domain.Record, error) {
	data, err := os.ReadFile(f.Path(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", kind, err)
	}
	if len(data) == 0 {
		return []domain.Record{}, nil
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s file: %w", kind, err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func (f *FileAdapter) save(kind domain.Kind, records []domain.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s file: %w", kind, err)
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, string(kind)+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s file: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s file: %w", kind, err)
	}

	if err := os.Rename(tmp.Name(), f.Path(kind)); err != nil {
		return fmt.Errorf("replace %s file: %w", kind, err)
	}
	return nil
}

func indexOf(records []domain.Record, id string) int {
	if id == "" {
		return -1
	}
	for i, r := range records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}
