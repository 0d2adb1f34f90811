package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/internal/repository"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
	"github.com/noah-isme/studysync-api/pkg/jobs"
)

var testMonday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type homeworkRepoStub struct {
	items      []models.Homework
	lastFilter models.HomeworkFilter
}

func (r *homeworkRepoStub) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
	r.lastFilter = filter
	return r.items, len(r.items), nil
}

func (r *homeworkRepoStub) ListByStudent(ctx context.Context, studentID string) ([]models.Homework, error) {
	var out []models.Homework
	for _, hw := range r.items {
		if hw.StudentID == studentID {
			out = append(out, hw)
		}
	}
	return out, nil
}

func (r *homeworkRepoStub) FindByID(ctx context.Context, studentID, id string) (*models.Homework, error) {
	for _, hw := range r.items {
		if hw.ID == id && hw.StudentID == studentID {
			found := hw
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *homeworkRepoStub) Create(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = fmt.Sprintf("hw-%d", len(r.items)+1)
	}
	r.items = append(r.items, *hw)
	return nil
}

func (r *homeworkRepoStub) Update(ctx context.Context, hw *models.Homework) error {
	for i := range r.items {
		if r.items[i].ID == hw.ID && r.items[i].StudentID == hw.StudentID {
			r.items[i] = *hw
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *homeworkRepoStub) Delete(ctx context.Context, studentID, id string) error {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].StudentID == studentID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type commitmentRepoStub struct {
	items []models.Commitment
	err   error
}

func (r *commitmentRepoStub) ListByStudent(ctx context.Context, studentID string) ([]models.Commitment, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.Commitment
	for _, c := range r.items {
		if c.StudentID == studentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *commitmentRepoStub) CreateBatch(ctx context.Context, items []models.Commitment) error {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("c-%d", len(r.items)+1)
		}
		r.items = append(r.items, items[i])
	}
	return nil
}

func (r *commitmentRepoStub) Delete(ctx context.Context, studentID, id string) error {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].StudentID == studentID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type preferenceRepoStub struct {
	pref *models.Preferences
	err  error
}

func (r *preferenceRepoStub) GetByStudent(ctx context.Context, studentID string) (*models.Preferences, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.pref == nil || r.pref.StudentID != studentID {
		return nil, sql.ErrNoRows
	}
	return r.pref, nil
}

func (r *preferenceRepoStub) Upsert(ctx context.Context, pref *models.Preferences) error {
	r.pref = pref
	return nil
}

type scheduleRepoStub struct {
	run        *models.ScheduleRun
	entries    []models.ScheduleEntry
	renamed    map[string]string
	deleted    []string
	replaceErr error
}

func (r *scheduleRepoStub) ReplaceForStudent(ctx context.Context, run *models.ScheduleRun, entries []models.ScheduleEntry) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	if run.ID == "" {
		run.ID = "run-1"
	}
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	}
	run.EntryCount = len(entries)
	for i := range entries {
		entries[i].RunID = run.ID
		entries[i].StudentID = run.StudentID
	}
	r.run = run
	r.entries = append([]models.ScheduleEntry(nil), entries...)
	return nil
}

func (r *scheduleRepoStub) LatestRun(ctx context.Context, studentID string) (*models.ScheduleRun, error) {
	if r.run == nil || r.run.StudentID != studentID {
		return nil, sql.ErrNoRows
	}
	return r.run, nil
}

func (r *scheduleRepoStub) ListEntries(ctx context.Context, studentID string) ([]models.ScheduleEntry, error) {
	out := make([]models.ScheduleEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *scheduleRepoStub) DeleteByHomework(ctx context.Context, studentID, homeworkID string) error {
	r.deleted = append(r.deleted, homeworkID)
	kept := r.entries[:0]
	for _, e := range r.entries {
		if !(e.StudentID == studentID && e.HomeworkID == homeworkID) {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

func (r *scheduleRepoStub) RenameHomework(ctx context.Context, studentID, homeworkID, name string) error {
	if r.renamed == nil {
		r.renamed = map[string]string{}
	}
	r.renamed[homeworkID] = name
	for i := range r.entries {
		if r.entries[i].StudentID == studentID && r.entries[i].HomeworkID == homeworkID {
			r.entries[i].Homework = name
		}
	}
	return nil
}

type cacheRepoStub struct {
	values  map[string][]byte
	deleted []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: map[string][]byte{}}
}

func (r *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := r.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.values[key] = raw
	return nil
}

func (r *cacheRepoStub) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(r.values, key)
		r.deleted = append(r.deleted, key)
	}
	return nil
}

type ledgerStub struct {
	delivered map[string]map[string]bool
	recorded  [][]string
}

func newLedgerStub() *ledgerStub {
	return &ledgerStub{delivered: map[string]map[string]bool{}}
}

func (l *ledgerStub) Exported(ctx context.Context, studentID string, uids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, uid := range uids {
		if l.delivered[studentID][uid] {
			out[uid] = true
		}
	}
	return out, nil
}

func (l *ledgerStub) Record(ctx context.Context, studentID string, uids []string, at time.Time) error {
	if l.delivered[studentID] == nil {
		l.delivered[studentID] = map[string]bool{}
	}
	for _, uid := range uids {
		l.delivered[studentID][uid] = true
	}
	l.recorded = append(l.recorded, uids)
	return nil
}

func (l *ledgerStub) Reset(ctx context.Context, studentID string) error {
	delete(l.delivered, studentID)
	return nil
}

type exportRepoStub struct {
	jobs map[string]*models.ExportJob
	seq  int
}

func newExportRepoStub() *exportRepoStub {
	return &exportRepoStub{jobs: map[string]*models.ExportJob{}}
}

func (r *exportRepoStub) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		r.seq++
		job.ID = fmt.Sprintf("exp-%d", r.seq)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *exportRepoStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (r *exportRepoStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.EventCount != nil {
		job.EventCount = *params.EventCount
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *exportRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var queued []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *exportRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	var finished []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			finished = append(finished, *job)
		}
	}
	return finished, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}
