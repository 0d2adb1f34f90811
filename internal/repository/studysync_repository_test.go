package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studysync-api/internal/models"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var (
	homeworkCols = []string{"id", "student_id", "name", "hours", "deadline", "block_size", "color", "created_at", "updated_at"}
	due          = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
)

func TestHomeworkRepositoryCreateAndFind(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHomeworkRepository(db)

	mock.ExpectExec("INSERT INTO homework").
		WithArgs(sqlmock.AnyArg(), "student-1", "Essay", 4.0, due, 2.0, "#3b82f6", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	hw := &models.Homework{StudentID: "student-1", Name: "Essay", Hours: 4, BlockSize: 2, Deadline: due, Color: "#3b82f6"}
	require.NoError(t, repo.Create(context.Background(), hw))
	assert.NotEmpty(t, hw.ID)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM homework WHERE id = \\$1 AND student_id = \\$2").
		WithArgs(hw.ID, "student-1").
		WillReturnRows(sqlmock.NewRows(homeworkCols).AddRow(hw.ID, "student-1", "Essay", 4.0, due, 2.0, "#3b82f6", now, now))

	found, err := repo.FindByID(context.Background(), "student-1", hw.ID)
	require.NoError(t, err)
	assert.Equal(t, "Essay", found.Name)
	assert.Equal(t, 2.0, found.BlockSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomeworkRepositoryListAppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHomeworkRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM homework WHERE student_id = \\$1 AND deadline <= \\$2 AND LOWER\\(name\\) LIKE \\$3 ORDER BY name DESC").
		WithArgs("student-1", due, "%essay%").
		WillReturnRows(sqlmock.NewRows(homeworkCols).AddRow("hw-1", "student-1", "Essay", 4.0, due, 2.0, "", now, now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM homework WHERE student_id = \\$1").
		WithArgs("student-1", due, "%essay%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.HomeworkFilter{
		StudentID: "student-1",
		DueTo:     &due,
		Search:    "Essay",
		SortBy:    "name",
		SortOrder: "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "hw-1", items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHomeworkRepositoryDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHomeworkRepository(db)

	mock.ExpectExec("DELETE FROM homework").WithArgs("hw-x", "student-1").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "student-1", "hw-x")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitmentRepositoryCreateBatchUsesTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommitmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO commitments").
		WithArgs(sqlmock.AnyArg(), "student-1", models.Monday, "09:00", "10:30", "Calculus", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO commitments").
		WithArgs(sqlmock.AnyArg(), "student-1", models.Wednesday, "09:00", "10:30", "Calculus", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	items := []models.Commitment{
		{StudentID: "student-1", Day: models.Monday, StartTime: "09:00", EndTime: "10:30", Description: "Calculus"},
		{StudentID: "student-1", Day: models.Wednesday, StartTime: "09:00", EndTime: "10:30", Description: "Calculus"},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), items))
	assert.NotEmpty(t, items[0].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitmentRepositoryCreateBatchRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommitmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO commitments").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []models.Commitment{{StudentID: "student-1", Day: models.Friday, StartTime: "09:00", EndTime: "10:00"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryUpsertAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPreferenceRepository(db)
	buffer := 15

	mock.ExpectExec("INSERT INTO preferences").
		WithArgs("student-1", "09:00", "21:00", 15, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Upsert(context.Background(), &models.Preferences{
		StudentID: "student-1", StartTime: "09:00", EndTime: "21:00", BufferMinutes: &buffer,
	}))

	mock.ExpectQuery("SELECT student_id, start_time, end_time, buffer_minutes, breaks, updated_at FROM preferences").
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "start_time", "end_time", "buffer_minutes", "breaks", "updated_at"}).
			AddRow("student-1", "09:00", "21:00", 15, []byte(`[{"name":"Lunch","start_time":"12:00","end_time":"13:00"}]`), time.Now()))

	pref, err := repo.GetByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.NotNil(t, pref.BufferMinutes)
	assert.Equal(t, 15, *pref.BufferMinutes)
	require.Len(t, pref.Breaks, 1)
	assert.Equal(t, "Lunch", pref.Breaks[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceForStudent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM schedule_entries WHERE student_id = \\$1").WithArgs("student-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM schedule_runs WHERE student_id = \\$1").WithArgs("student-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO schedule_runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	run := &models.ScheduleRun{StudentID: "student-1", Today: due}
	entries := []models.ScheduleEntry{
		{HomeworkID: "hw-1", Homework: "Essay", Day: models.Wednesday, StartTime: 8, Duration: 2, Date: due},
		{HomeworkID: "hw-1", Homework: "Essay", Day: models.Thursday, StartTime: 8, Duration: 2, Date: due.AddDate(0, 0, 1)},
	}
	require.NoError(t, repo.ReplaceForStudent(context.Background(), run, entries))
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.EntryCount)
	for _, e := range entries {
		assert.Equal(t, run.ID, e.RunID)
		assert.Equal(t, "student-1", e.StudentID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceWithoutEntries(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM schedule_entries").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM schedule_runs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schedule_runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceForStudent(context.Background(), &models.ScheduleRun{StudentID: "student-1"}, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryLatestRunDecodesJSON(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewScheduleRepository(db)

	mock.ExpectQuery("FROM schedule_runs WHERE student_id = \\$1").
		WithArgs("student-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "today", "warnings", "outcomes", "entry_count", "generated_at"}).
			AddRow("run-1", "student-1", due,
				[]byte(`[{"kind":"partial","homework_id":"hw-1","homework":"Essay","needed":10,"scheduled":5,"remaining":5}]`),
				[]byte(`[]`), 1, time.Now()))

	run, err := repo.LatestRun(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, run.Warnings, 1)
	assert.Equal(t, models.WarningPartial, run.Warnings[0].Kind)
	assert.Equal(t, 5.0, *run.Warnings[0].Remaining)
	assert.Empty(t, run.Outcomes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryUpdateBuildsPartialSet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)
	status := models.ExportStatusFinished
	count := 4

	mock.ExpectExec("UPDATE export_jobs SET status = \\$1, event_count = \\$2 WHERE id = \\$3").
		WithArgs(status, count, "exp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "exp-1", UpdateExportJobParams{Status: &status, EventCount: &count}))
	require.NoError(t, repo.Update(context.Background(), "exp-1", UpdateExportJobParams{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryCreateDefaults(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	mock.ExpectExec("INSERT INTO export_jobs").
		WithArgs(sqlmock.AnyArg(), "student-1", sqlmock.AnyArg(), models.ExportStatusQueued, 0, nil, sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ExportJob{StudentID: "student-1", Params: models.ExportJobParams{Format: models.ExportFormatICS}}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.Equal(t, models.ExportStatusQueued, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRepositoryListQueuedDecodesParams(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "student_id", "params", "status", "event_count", "result_url", "created_at", "finished_at", "error_message"}).
		AddRow("exp-1", "student-1", []byte(`{"format":"pdf","includeCommitments":true,"onlyNew":false}`), "QUEUED", 0, nil, created, nil, nil)
	mock.ExpectQuery("FROM export_jobs WHERE status = 'QUEUED'").WithArgs(50).WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.ExportFormatPDF, jobs[0].Params.Format)
	assert.True(t, jobs[0].Params.IncludeCommitments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportLedgerRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportLedgerRepository(db)

	mock.ExpectQuery("SELECT uid FROM exported_events WHERE student_id = \\$1 AND uid = ANY\\(\\$2\\)").
		WithArgs("student-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"uid"}).AddRow("a@studysync.app"))

	seen, err := repo.Exported(context.Background(), "student-1", []string{"a@studysync.app", "b@studysync.app"})
	require.NoError(t, err)
	assert.True(t, seen["a@studysync.app"])
	assert.False(t, seen["b@studysync.app"])

	mock.ExpectExec("INSERT INTO exported_events").
		WithArgs("student-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Record(context.Background(), "student-1", []string{"b@studysync.app"}, time.Now()))

	empty, err := repo.Exported(context.Background(), "student-1", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest map[string]string

	assert.False(t, repo.Enabled())
	assert.True(t, errors.Is(repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(context.Background(), "k", "v", time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
	assert.NoError(t, repo.Ping(context.Background()))
	assert.NoError(t, repo.Close())
}
