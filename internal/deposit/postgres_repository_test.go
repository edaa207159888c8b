package deposit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*PostgresRepository, func()) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewPostgresRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func testRecord(attemptID string) *Record {
	return &Record{
		ID:          uuid.New(),
		AttemptID:   attemptID,
		PaymentID:   "PAY-" + attemptID,
		CustomerID:  "CUST-1",
		AmountCents: 150000,
		Currency:    "USD",
		Kind:        KindDeposit,
	}
}

func TestRecordCharge_Success(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	err := repo.RecordCharge(ctx, testRecord("attempt-1"))
	require.NoError(t, err)

	rec, err := repo.GetByAttemptID(ctx, "attempt-1")
	require.NoError(t, err)
	assert.Equal(t, "PAY-attempt-1", rec.PaymentID)
	assert.Equal(t, int64(150000), rec.AmountCents)
	assert.Equal(t, KindDeposit, rec.Kind)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestRecordCharge_DuplicateAttemptID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	err := repo.RecordCharge(ctx, testRecord("attempt-dup"))
	require.NoError(t, err)

	err = repo.RecordCharge(ctx, testRecord("attempt-dup"))
	assert.ErrorIs(t, err, ErrDuplicateAttempt)

	// The duplicate must not have queued a second outbox event
	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestGetByAttemptID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByAttemptID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordCharge_QueuesOutboxEvent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	rec := testRecord("attempt-outbox")
	rec.Kind = KindRemainder
	require.NoError(t, repo.RecordCharge(ctx, rec))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "attempt-outbox", events[0].AggregateID)
	assert.Equal(t, "remainder.recorded", events[0].EventType)
	assert.Contains(t, string(events[0].Payload), `"payment_id":"PAY-attempt-outbox"`)
}

func TestMarkEventAsProcessed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.RecordCharge(ctx, testRecord("attempt-mark")))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGetUnprocessedEvents_RespectsLimit(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.RecordCharge(ctx, testRecord("attempt-"+id)))
	}

	events, err := repo.GetUnprocessedEvents(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
	// Oldest first
	assert.Equal(t, "attempt-a", events[0].AggregateID)
	assert.Equal(t, "attempt-b", events[1].AggregateID)
}

func TestRecordCharge_ContextCancellation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(10 * time.Millisecond) // Ensure context is cancelled

	err := repo.RecordCharge(ctx, testRecord("attempt-ctx"))
	assert.Error(t, err)
}
