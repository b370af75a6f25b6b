package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	reportsFileMode = 0o600
	reportsDirMode  = 0o700
	tempFilePattern = ".reports-*.toml.tmp"
)

// Repository keeps the latest report per address in one TOML file.
type Repository struct {
	reportsPath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ReportRepository = (*Repository)(nil)

func NewRepository(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("reports path is empty")
	}
	reportsPath, err := normalizeReportsPath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{reportsPath: reportsPath, mu: lockForPath(reportsPath)}, nil
}

func (r *Repository) Path() string {
	return r.reportsPath
}

// Save replaces the stored report for the same address, matched case-insensitively.
func (r *Repository) Save(ctx context.Context, report domain.AccountReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(report.Address) == "" {
		return errors.New("report address is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(report)
	updated := false
	for i := range file.Reports {
		if strings.EqualFold(file.Reports[i].Address, encoded.Address) {
			file.Reports[i] = encoded
			updated = true
			break
		}
	}

	if !updated {
		file.Reports = append(file.Reports, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) GetByAddress(ctx context.Context, address string) (domain.AccountReport, error) {
	if err := ctx.Err(); err != nil {
		return domain.AccountReport{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.AccountReport{}, err
	}

	for _, entry := range file.Reports {
		if strings.EqualFold(entry.Address, address) {
			return fromSchema(entry), nil
		}
	}

	return domain.AccountReport{}, fmt.Errorf("%w: %s", domain.ErrReportNotFound, domain.ShortAddress(address))
}

// List returns every stored report, oldest pass first.
func (r *Repository) List(ctx context.Context) ([]domain.AccountReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	reports := make([]domain.AccountReport, 0, len(file.Reports))
	for _, entry := range file.Reports {
		reports = append(reports, fromSchema(entry))
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].StartedAt.Before(reports[j].StartedAt)
	})

	return reports, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.reportsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read reports file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode reports file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeReportsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve reports path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.reportsPath), reportsDirMode); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode reports file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.reportsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp reports file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp reports file: %w", err)
	}

	if err := tempFile.Chmod(reportsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp reports file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp reports file: %w", err)
	}

	if err := os.Rename(tempName, r.reportsPath); err != nil {
		return fmt.Errorf("replace reports file: %w", err)
	}

	cleanup = false
	return nil
}

func toSchema(report domain.AccountReport) reportSchema {
	tasks := make([]taskSchema, 0, len(report.Tasks))
	for _, task := range report.Tasks {
		tasks = append(tasks, taskSchema{ID: task.ActivityID, Title: task.Title, Claimed: task.Claimed})
	}

	return reportSchema{
		Address:    report.Address,
		Name:       report.DisplayName,
		Points:     report.Points,
		CheckIn:    string(report.CheckIn),
		Proxy:      report.Proxy,
		Claimed:    report.Claimed,
		Tasks:      tasks,
		Failure:    report.Failure,
		StartedAt:  formatTime(report.StartedAt),
		FinishedAt: formatTime(report.FinishedAt),
	}
}

func fromSchema(entry reportSchema) domain.AccountReport {
	var tasks []domain.TaskOutcome
	for _, task := range entry.Tasks {
		tasks = append(tasks, domain.TaskOutcome{ActivityID: task.ID, Title: task.Title, Claimed: task.Claimed})
	}

	return domain.AccountReport{
		Address:     entry.Address,
		DisplayName: entry.Name,
		Points:      entry.Points,
		CheckIn:     domain.CheckInStatus(entry.CheckIn),
		Proxy:       entry.Proxy,
		Claimed:     entry.Claimed,
		Tasks:       tasks,
		Failure:     entry.Failure,
		StartedAt:   parseTime(entry.StartedAt),
		FinishedAt:  parseTime(entry.FinishedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed.UTC()
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
