package importer

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"

	maxRunErrorLength = 1024
)

// ImportRun is one row of the import ledger.
type ImportRun struct {
	RunID      string         `json:"run_id" gorm:"primaryKey;type:varchar(26)"`
	Status     string         `json:"status" gorm:"type:varchar(16);not null;index:ix_import_runs_status"`
	Dir        string         `json:"dir" gorm:"type:varchar(512);not null;default:''"`
	StartedAt  time.Time      `json:"started_at" gorm:"not null;index:ix_import_runs_started_at"`
	FinishedAt *time.Time     `json:"finished_at"`
	Stats      datatypes.JSON `json:"stats"`
	Error      string         `json:"error,omitempty" gorm:"type:text;not null;default:''"`
}

func (ImportRun) TableName() string { return "import_runs" }

// RunStore persists the import ledger.
type RunStore struct {
	db *gorm.DB
}

func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

func NewRunID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

func (s *RunStore) Start(ctx context.Context, runID, dir string, startedAt time.Time) (*ImportRun, error) {
	run := &ImportRun{
		RunID:     runID,
		Status:    RunStatusProcessing,
		Dir:       dir,
		StartedAt: startedAt,
		Stats:     datatypes.JSON("{}"),
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// Finish records the terminal status. runErr, when set, marks the run failed.
func (s *RunStore) Finish(ctx context.Context, runID string, finishedAt time.Time, stats any, runErr error) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	status, message := RunStatusCompleted, ""
	if runErr != nil {
		status, message = RunStatusFailed, truncate(runErr.Error(), maxRunErrorLength)
	}
	return s.db.WithContext(ctx).Exec(
		`UPDATE import_runs SET status = ?, finished_at = ?, stats = ?, error = ? WHERE run_id = ?`,
		status,
		finishedAt,
		datatypes.JSON(raw),
		message,
		runID,
	).Error
}

func (s *RunStore) Recent(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []ImportRun
	err := s.db.WithContext(ctx).Order("started_at DESC").Order("run_id DESC").Limit(limit).Find(&runs).Error
	if runs == nil {
		runs = []ImportRun{}
	}
	return runs, err
}

func (s *RunStore) Find(ctx context.Context, runID string) (*ImportRun, error) {
	var runs []ImportRun
	if err := s.db.WithContext(ctx).Where("run_id = ?", runID).Limit(1).Find(&runs).Error; err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
