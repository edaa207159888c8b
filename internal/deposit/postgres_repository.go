package deposit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// RecordCharge inserts the record and its outbox event in one transaction,
// so a recorded charge always has a pending staff notification.
func (r *PostgresRepository) RecordCharge(ctx context.Context, rec *Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	insertRecord := `INSERT INTO charges (id, attempt_id, payment_id, customer_id, amount_cents, currency, kind, created_at)
	                 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, insertErr := tx.ExecContext(ctx, insertRecord,
		rec.ID,
		rec.AttemptID,
		rec.PaymentID,
		rec.CustomerID,
		rec.AmountCents,
		rec.Currency,
		rec.Kind)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateAttempt
		}
		return fmt.Errorf("insert charge: %w", insertErr)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"attempt_id":   rec.AttemptID,
		"payment_id":   rec.PaymentID,
		"customer_id":  rec.CustomerID,
		"amount_cents": rec.AmountCents,
		"currency":     rec.Currency,
		"kind":         rec.Kind,
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	eventType := "deposit.recorded"
	if rec.Kind == KindRemainder {
		eventType = "remainder.recorded"
	}

	insertEvent := `INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
	                VALUES ($1, $2, $3, NOW())`
	if _, err := tx.ExecContext(ctx, insertEvent, rec.AttemptID, eventType, payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetByAttemptID(ctx context.Context, attemptID string) (*Record, error) {
	query := `SELECT id, attempt_id, payment_id, customer_id, amount_cents, currency, kind, created_at
	          FROM charges WHERE attempt_id = $1`

	var rec Record
	err := r.db.QueryRowContext(ctx, query, attemptID).Scan(
		&rec.ID,
		&rec.AttemptID,
		&rec.PaymentID,
		&rec.CustomerID,
		&rec.AmountCents,
		&rec.Currency,
		&rec.Kind,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query charge by attempt id: %w", err)
	}
	return &rec, nil
}

func (r *PostgresRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox_events WHERE NOT processed ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		e := &OutboxEvent{}
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *PostgresRepository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox_events SET processed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
