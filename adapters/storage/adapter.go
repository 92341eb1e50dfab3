// Package storage persists estimation runs so they can be listed and compared.
// Supports file and in-memory backends.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"memarea/core/types"
	"memarea/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// Save stores a run
	Save(ctx context.Context, run *StoredRun) error

	// Get retrieves a run by ID
	Get(ctx context.Context, id string) (*StoredRun, error)

	// List lists runs, newest first
	List(ctx context.Context, filter *ListFilter) ([]*StoredRun, error)

	// Delete removes a run
	Delete(ctx context.Context, id string) error

	// GetLatest gets the latest run for a project
	GetLatest(ctx context.Context, projectID string) (*StoredRun, error)

	// Compare compares two runs configuration by configuration
	Compare(ctx context.Context, oldID, newID string) (*CompareResult, error)

	// Close closes the store
	Close() error
}

// StoredRun is one persisted batch
type StoredRun struct {
	// ID is the batch run ID
	ID string `json:"id"`

	// ProjectID groups runs
	ProjectID string `json:"project_id"`

	// Catalog is the catalog path the run used
	Catalog string `json:"catalog,omitempty"`

	// Scale is the area scale factor applied
	Scale decimal.Decimal `json:"scale"`

	// TotalArea sums every report
	TotalArea decimal.Decimal `json:"total_area"`

	Reports  []*types.Report `json:"reports"`
	Failures []string        `json:"failures,omitempty"`

	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewStoredRun summarizes reports into a run record
func NewStoredRun(id, project string, reports []*types.Report) *StoredRun {
	total := decimal.Zero
	for _, r := range reports {
		total = total.Add(r.Total())
	}
	return &StoredRun{
		ID:        id,
		ProjectID: project,
		Scale:     decimal.NewFromInt(1),
		TotalArea: total,
		Reports:   reports,
	}
}

// areas maps configuration name to total area
func (r *StoredRun) areas() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.Reports))
	for _, rep := range r.Reports {
		out[rep.Configuration] = rep.Total()
	}
	return out
}

// ListFilter filters run listing
type ListFilter struct {
	ProjectID string
	Since     time.Time
	Until     time.Time
	Limit     int
	Offset    int
}

func (f *ListFilter) match(r *StoredRun) bool {
	if f == nil {
		return true
	}
	if f.ProjectID != "" && r.ProjectID != f.ProjectID {
		return false
	}
	if !f.Since.IsZero() && r.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.CreatedAt.After(f.Until) {
		return false
	}
	return true
}

func (f *ListFilter) page(runs []*StoredRun) []*StoredRun {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if f == nil {
		return runs
	}
	if f.Offset > 0 {
		if f.Offset >= len(runs) {
			return nil
		}
		runs = runs[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(runs) {
		runs = runs[:f.Limit]
	}
	return runs
}

// ConfigDelta is the area change of one configuration
type ConfigDelta struct {
	Configuration string          `json:"configuration"`
	OldArea       decimal.Decimal `json:"old_area"`
	NewArea       decimal.Decimal `json:"new_area"`
	Delta         decimal.Decimal `json:"delta"`
}

// CompareResult is a comparison between two runs
type CompareResult struct {
	OldID        string          `json:"old_id"`
	NewID        string          `json:"new_id"`
	OldArea      decimal.Decimal `json:"old_area"`
	NewArea      decimal.Decimal `json:"new_area"`
	Delta        decimal.Decimal `json:"delta"`
	DeltaPercent float64         `json:"delta_percent"`

	// Added and Removed carry only NewArea or OldArea respectively
	Added   []ConfigDelta `json:"added,omitempty"`
	Removed []ConfigDelta `json:"removed,omitempty"`
	Changed []ConfigDelta `json:"changed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Compare diffs two runs
func Compare(oldRun, newRun *StoredRun) *CompareResult {
	res := &CompareResult{
		OldID:     oldRun.ID,
		NewID:     newRun.ID,
		OldArea:   oldRun.TotalArea,
		NewArea:   newRun.TotalArea,
		Delta:     newRun.TotalArea.Sub(oldRun.TotalArea),
		CreatedAt: time.Now(),
	}
	if oldRun.TotalArea.IsPositive() {
		res.DeltaPercent = res.Delta.Div(oldRun.TotalArea).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	oldAreas, newAreas := oldRun.areas(), newRun.areas()
	for _, rep := range newRun.Reports {
		name := rep.Configuration
		newArea := newAreas[name]
		oldArea, existed := oldAreas[name]
		switch {
		case !existed:
			res.Added = append(res.Added, ConfigDelta{Configuration: name, NewArea: newArea, Delta: newArea})
		case !oldArea.Equal(newArea):
			res.Changed = append(res.Changed, ConfigDelta{Configuration: name, OldArea: oldArea, NewArea: newArea, Delta: newArea.Sub(oldArea)})
		}
	}
	for _, rep := range oldRun.Reports {
		if _, ok := newAreas[rep.Configuration]; !ok {
			old := oldAreas[rep.Configuration]
			res.Removed = append(res.Removed, ConfigDelta{Configuration: rep.Configuration, OldArea: old, Delta: old.Neg()})
		}
	}
	return res
}

func notFound(id string) error {
	return errors.Newf(errors.TypeInput, "run not found: %s", id).WithContext("run_id", id)
}

// FileStore is a file-based storage backend: <base>/<project>/<id>.json
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) Save(ctx context.Context, run *StoredRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.ProjectID == "" {
		run.ProjectID = "default"
	}

	projectDir := filepath.Join(s.basePath, run.ProjectID)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, run.ID+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*StoredRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Name(), id+".json"))
		if err != nil {
			continue
		}
		var run StoredRun
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		return &run, nil
	}

	return nil, notFound(id)
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*StoredRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []*StoredRun
	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var run StoredRun
		if err := json.Unmarshal(data, &run); err != nil {
			return nil
		}
		if filter.match(&run) {
			runs = append(runs, &run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return filter.page(runs), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return fmt.Errorf("failed to read storage: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		filePath := filepath.Join(s.basePath, entry.Name(), id+".json")
		if _, err := os.Stat(filePath); err == nil {
			return os.Remove(filePath)
		}
	}

	return notFound(id)
}

func (s *FileStore) GetLatest(ctx context.Context, projectID string) (*StoredRun, error) {
	runs, err := s.List(ctx, &ListFilter{ProjectID: projectID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.Newf(errors.TypeInput, "no runs for project: %s", projectID)
	}
	return runs[0], nil
}

func (s *FileStore) Compare(ctx context.Context, oldID, newID string) (*CompareResult, error) {
	oldRun, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, fmt.Errorf("failed to get old run: %w", err)
	}
	newRun, err := s.Get(ctx, newID)
	if err != nil {
		return nil, fmt.Errorf("failed to get new run: %w", err)
	}
	return Compare(oldRun, newRun), nil
}

func (s *FileStore) Close() error {
	return nil
}

// MemoryStore is an in-memory storage backend
type MemoryStore struct {
	runs map[string]*StoredRun
	mu   sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*StoredRun),
	}
}

func (s *MemoryStore) Save(ctx context.Context, run *StoredRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.ProjectID == "" {
		run.ProjectID = "default"
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*StoredRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, notFound(id)
	}
	return run, nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*StoredRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []*StoredRun
	for _, run := range s.runs {
		if filter.match(run) {
			runs = append(runs, run)
		}
	}
	return filter.page(runs), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, id)
	return nil
}

func (s *MemoryStore) GetLatest(ctx context.Context, projectID string) (*StoredRun, error) {
	runs, _ := s.List(ctx, &ListFilter{ProjectID: projectID, Limit: 1})
	if len(runs) == 0 {
		return nil, errors.Newf(errors.TypeInput, "no runs for project: %s", projectID)
	}
	return runs[0], nil
}

func (s *MemoryStore) Compare(ctx context.Context, oldID, newID string) (*CompareResult, error) {
	oldRun, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newRun, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}
	return Compare(oldRun, newRun), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// StoreFactory creates stores by backend type
func StoreFactory(backend Backend, config map[string]string) (Store, error) {
	switch backend {
	case BackendFile:
		path := config["path"]
		if path == "" {
			path = ".memarea"
		}
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.Newf(errors.TypeNotSupported, "unsupported backend: %s", backend)
	}
}

// Ensure interfaces are implemented
var (
	_ Store     = (*FileStore)(nil)
	_ Store     = (*MemoryStore)(nil)
	_ io.Closer = (*FileStore)(nil)
)
