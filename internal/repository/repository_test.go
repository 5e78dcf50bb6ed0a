package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightdocs/bol-extractor/constants"
	"github.com/freightdocs/bol-extractor/internal/bol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := Connect(Config{Driver: "sqlite", DSN: ":memory:"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, Migrate(conn, testLogger()))
	return conn
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "oracle", DSN: "whatever"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestJobLifecycle(t *testing.T) {
	conn := newTestDB(t)
	jobs := NewJobRepository(conn, testLogger())
	ctx := context.Background()

	job, err := jobs.Create(ctx, "/inbox/manifest-001.pdf", constants.ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusQueued), job.Status)
	assert.Equal(t, "/inbox/manifest-001.pdf", job.SourcePath)
	assert.Equal(t, "auto", job.Mode)
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.FinishedAt)

	fetched, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, fetched.ID)
	assert.Equal(t, string(constants.JobStatusQueued), fetched.Status)
	assert.WithinDuration(t, time.Now().UTC(), fetched.CreatedAt, time.Minute)

	require.NoError(t, jobs.MarkRunning(ctx, job.ID))
	fetched, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusRunning), fetched.Status)
	require.NotNil(t, fetched.StartedAt)
	assert.Nil(t, fetched.FinishedAt)

	require.NoError(t, jobs.MarkDone(ctx, job.ID))
	fetched, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusDone), fetched.Status)
	require.NotNil(t, fetched.FinishedAt)
	assert.Nil(t, fetched.ErrorMessage)
}

func TestJobFailureKeepsMessage(t *testing.T) {
	conn := newTestDB(t)
	jobs := NewJobRepository(conn, testLogger())
	ctx := context.Background()

	job, err := jobs.Create(ctx, "/inbox/broken.pdf", constants.ModeOCR)
	require.NoError(t, err)
	require.NoError(t, jobs.MarkRunning(ctx, job.ID))
	require.NoError(t, jobs.MarkFailed(ctx, job.ID, "ocr engine unavailable"))

	fetched, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), fetched.Status)
	require.NotNil(t, fetched.ErrorMessage)
	assert.Equal(t, "ocr engine unavailable", *fetched.ErrorMessage)
	assert.NotNil(t, fetched.FinishedAt)
}

func TestJobNotFound(t *testing.T) {
	conn := newTestDB(t)
	jobs := NewJobRepository(conn, testLogger())
	ctx := context.Background()

	_, err := jobs.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)

	assert.ErrorIs(t, jobs.MarkDone(ctx, uuid.New()), ErrJobNotFound)
	assert.ErrorIs(t, jobs.MarkFailed(ctx, uuid.New(), "nope"), ErrJobNotFound)
}

func TestSaveAndFetchRecord(t *testing.T) {
	conn := newTestDB(t)
	jobs := NewJobRepository(conn, testLogger())
	records := NewRecordRepository(conn, testLogger())
	ctx := context.Background()

	job, err := jobs.Create(ctx, "/inbox/manifest-002.pdf", constants.ModeAuto)
	require.NoError(t, err)

	number := "MEDUP1966175"
	seal := "FX31150"
	rec := bol.NewRecord("manifest-002.pdf")
	rec.BOLNumber = &number
	rec.Containers = []bol.Container{{
		ContainerNumber: "TRHU7586290",
		SealNumber:      &seal,
		Context:         "TRHU7586290 40' HIGH CUBE Seal Number: FX31150",
	}}

	stored, err := records.Save(ctx, job.ID, rec)
	require.NoError(t, err)
	assert.Equal(t, job.ID, stored.JobID)
	assert.Equal(t, "manifest-002.pdf", stored.Filename)
	require.NotNil(t, stored.BOLNumber)
	assert.Equal(t, number, *stored.BOLNumber)

	fetched, err := records.GetByJobID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, fetched.ID)

	decoded, err := fetched.Record()
	require.NoError(t, err)
	require.NotNil(t, decoded.BOLNumber)
	assert.Equal(t, number, *decoded.BOLNumber)
	require.Len(t, decoded.Containers, 1)
	assert.Equal(t, "TRHU7586290", decoded.Containers[0].ContainerNumber)
	require.NotNil(t, decoded.Containers[0].SealNumber)
	assert.Equal(t, seal, *decoded.Containers[0].SealNumber)
	assert.Equal(t, string(constants.DocTypeBillOfLading), decoded.DocumentType)
}

func TestRecordNotFound(t *testing.T) {
	conn := newTestDB(t)
	records := NewRecordRepository(conn, testLogger())

	_, err := records.GetByJobID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestListByBOLNumber(t *testing.T) {
	conn := newTestDB(t)
	jobs := NewJobRepository(conn, testLogger())
	records := NewRecordRepository(conn, testLogger())
	ctx := context.Background()

	number := "HLCUX443210"
	var filenames []string
	for _, name := range []string{"first.pdf", "second.pdf"} {
		job, err := jobs.Create(ctx, "/inbox/"+name, constants.ModeDirect)
		require.NoError(t, err)

		rec := bol.NewRecord(name)
		rec.BOLNumber = &number
		_, err = records.Save(ctx, job.ID, rec)
		require.NoError(t, err)
		filenames = append(filenames, name)
	}

	// A record without a BOL number must not show up in the listing.
	job, err := jobs.Create(ctx, "/inbox/blank.pdf", constants.ModeDirect)
	require.NoError(t, err)
	_, err = records.Save(ctx, job.ID, bol.NewRecord("blank.pdf"))
	require.NoError(t, err)

	found, err := records.ListByBOLNumber(ctx, number)
	require.NoError(t, err)
	require.Len(t, found, 2)

	var got []string
	for _, s := range found {
		got = append(got, s.Filename)
	}
	assert.ElementsMatch(t, filenames, got)
}
