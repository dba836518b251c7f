package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/adilmn/social-support-ai/internal/core/domain"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ApplicationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS applications (
	id TEXT PRIMARY KEY,
	form JSONB NOT NULL,
	document_paths JSONB NOT NULL DEFAULT '{}'::jsonb,
	status TEXT NOT NULL,
	error_message TEXT,
	outcome JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	formJSON, err := json.Marshal(app.Form)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}
	pathsJSON, err := json.Marshal(app.DocumentPaths)
	if err != nil {
		return fmt.Errorf("marshal document paths: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO applications (
	id, form, document_paths, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		app.ID, formJSON, pathsJSON, string(app.Status), app.Error, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, form, document_paths, status, error_message, outcome, created_at, updated_at
FROM applications
WHERE id = $1
`, id)

	var (
		app        domain.Application
		formRaw    []byte
		pathsRaw   []byte
		status     string
		errMsg     sql.NullString
		outcomeRaw []byte
	)

	err := row.Scan(&app.ID, &formRaw, &pathsRaw, &status, &errMsg, &outcomeRaw, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrApplicationNotFound, "get application", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	if err := json.Unmarshal(formRaw, &app.Form); err != nil {
		return nil, fmt.Errorf("unmarshal form: %w", err)
	}
	if err := json.Unmarshal(pathsRaw, &app.DocumentPaths); err != nil {
		return nil, fmt.Errorf("unmarshal document paths: %w", err)
	}
	if len(outcomeRaw) > 0 {
		var outcome domain.CaseOutcome
		if err := json.Unmarshal(outcomeRaw, &outcome); err != nil {
			return nil, fmt.Errorf("unmarshal outcome: %w", err)
		}
		app.Outcome = &outcome
	}
	app.Status = domain.ApplicationStatus(status)
	app.Error = errMsg.String
	return &app, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE applications
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return requireRowAffected(res, "update status", id)
}

func (r *ApplicationRepository) SaveOutcome(ctx context.Context, id string, outcome domain.CaseOutcome) error {
	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE applications
SET outcome = $2, updated_at = $3
WHERE id = $1
`, id, outcomeJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save outcome: %w", err)
	}
	return requireRowAffected(res, "save outcome", id)
}

func requireRowAffected(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrApplicationNotFound, operation, fmt.Errorf("id %s", id))
	}
	return nil
}
