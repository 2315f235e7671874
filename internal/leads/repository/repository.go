package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = domain.ErrNotFound

const (
	// sequenceUniqueConstraint is deferred, so a violation can surface at commit.
	sequenceUniqueConstraint = "rac_deals_base_sequence_key"

	workerPoolLockKey     = "rac_workers:pool"
	sequenceGlobalLockKey = "rac_deals:sequence"
	sequenceBaseLockKey   = "rac_deals:sequence:"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InTx runs fn in a read-committed transaction. A unique violation on the
// deal sequence constraint, raised by a statement or by the deferred check at
// commit, is reported as domain.ErrSequenceConflict.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	err := db.WithTx(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &queries{q: tx})
	})
	if db.IsUniqueViolation(err, sequenceUniqueConstraint) {
		return fmt.Errorf("%w: %v", domain.ErrSequenceConflict, err)
	}
	return err
}

// queries implements Tx over any DBTX.
type queries struct {
	q db.DBTX
}

// =====================================
// Workers
// =====================================

func (s *queries) LockWorkerPool(ctx context.Context) error {
	return db.AdvisoryXactLock(ctx, s.q, workerPoolLockKey)
}

func (s *queries) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, name, email, assigned_count, last_assigned_at, created_at
		FROM RAC_workers
		ORDER BY last_assigned_at ASC NULLS FIRST, assigned_count ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workers := make([]domain.Worker, 0)
	for rows.Next() {
		var w domain.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.Email, &w.AssignedCount, &w.LastAssignedAt, &w.CreatedAt); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return workers, nil
}

func (s *queries) InsertWorkers(ctx context.Context, seeds []domain.WorkerSeed) error {
	for _, seed := range seeds {
		if _, err := s.q.Exec(ctx, `
			INSERT INTO RAC_workers (name, email)
			VALUES ($1, $2)
			ON CONFLICT (email) DO NOTHING
		`, seed.Name, seed.Email); err != nil {
			return fmt.Errorf("seed worker %s: %w", seed.Email, err)
		}
	}
	return nil
}

func (s *queries) MarkWorkerAssigned(ctx context.Context, id uuid.UUID) (domain.Worker, error) {
	var w domain.Worker
	err := s.q.QueryRow(ctx, `
		UPDATE RAC_workers
		SET assigned_count = assigned_count + 1, last_assigned_at = clock_timestamp()
		WHERE id = $1
		RETURNING id, name, email, assigned_count, last_assigned_at, created_at
	`, id).Scan(&w.ID, &w.Name, &w.Email, &w.AssignedCount, &w.LastAssignedAt, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Worker{}, ErrNotFound
	}
	return w, err
}

// =====================================
// Sequences
// =====================================

func (s *queries) LockSequenceBase(ctx context.Context, baseKey string) error {
	if err := db.AdvisoryXactLockShared(ctx, s.q, sequenceGlobalLockKey); err != nil {
		return err
	}
	return db.AdvisoryXactLock(ctx, s.q, sequenceBaseLockKey+baseKey)
}

func (s *queries) LockAllSequences(ctx context.Context) error {
	return db.AdvisoryXactLock(ctx, s.q, sequenceGlobalLockKey)
}

// ListDealTitles returns candidate titles for baseKey. Callers still filter
// with the suffix pattern.
func (s *queries) ListDealTitles(ctx context.Context, baseKey string) ([]string, error) {
	rows, err := s.q.Query(ctx, `
		SELECT title
		FROM RAC_deals
		WHERE title = $1
		   OR (left(title, length($1)) = $1 AND length(title) = length($1) + 5)
	`, baseKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make([]string, 0)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return titles, nil
}

func (s *queries) ListSequenceNumbers(ctx context.Context, baseKey string) ([]int, error) {
	rows, err := s.q.Query(ctx, `
		SELECT sequence_number
		FROM RAC_deals
		WHERE base_key = $1
	`, baseKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	numbers := make([]int, 0)
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return numbers, nil
}

func (s *queries) ListDealIdentifiers(ctx context.Context) ([]domain.Deal, error) {
	rows, err := s.q.Query(ctx, `
		SELECT d.id, d.title, d.base_key, d.sequence_number, COALESCE(c.email, ''), d.created_at
		FROM RAC_deals d
		LEFT JOIN RAC_contacts c ON c.id = d.contact_id
		ORDER BY d.created_at ASC, d.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := make([]domain.Deal, 0)
	for rows.Next() {
		var d domain.Deal
		if err := rows.Scan(&d.ID, &d.Title, &d.BaseKey, &d.SequenceNumber, &d.ContactEmail, &d.CreatedAt); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return deals, nil
}

func (s *queries) UpdateDealIdentifier(ctx context.Context, id uuid.UUID, title, baseKey string, sequence int) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE RAC_deals
		SET title = $2, base_key = $3, sequence_number = $4, updated_at = now()
		WHERE id = $1
	`, id, title, baseKey, sequence)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =====================================
// Leads
// =====================================

const leadColumns = `id, name, company, email, phone, domain, source, status, score, grade, is_hot, owner_id, created_at, updated_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	var grade string
	err := row.Scan(&l.ID, &l.Name, &l.Company, &l.Email, &l.Phone, &l.Domain, &l.Source, &l.Status,
		&l.Score, &grade, &l.IsHot, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	l.Grade = domain.Grade(grade)
	return l, err
}

func (s *queries) GetLeadForUpdate(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return scanLead(s.q.QueryRow(ctx, `SELECT `+leadColumns+` FROM RAC_leads WHERE id = $1 FOR UPDATE`, id))
}

func (s *queries) InsertLead(ctx context.Context, params InsertLeadParams) (domain.Lead, error) {
	return scanLead(s.q.QueryRow(ctx, `
		INSERT INTO RAC_leads (name, company, email, phone, domain, source, status, score, grade, is_hot, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+leadColumns,
		params.Name, params.Company, params.Email, params.Phone, params.Domain, params.Source,
		params.Status, params.Score, string(params.Grade), params.IsHot, params.OwnerID))
}

func (s *queries) DeleteLead(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM RAC_leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =====================================
// Accounts
// =====================================

const accountColumns = `id, name, domain, is_customer, score, created_at`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Name, &a.Domain, &a.IsCustomer, &a.Score, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	return a, err
}

// UpsertAccountByName returns the account with exactly this name, creating it
// when missing. An existing account only picks up domainName if it had none.
func (s *queries) UpsertAccountByName(ctx context.Context, name, domainName string) (domain.Account, error) {
	return scanAccount(s.q.QueryRow(ctx, `
		INSERT INTO RAC_accounts (name, domain)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET domain = CASE WHEN RAC_accounts.domain = '' THEN EXCLUDED.domain ELSE RAC_accounts.domain END,
		    updated_at = now()
		RETURNING `+accountColumns,
		name, domainName))
}

func (s *queries) GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return scanAccount(s.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM RAC_accounts WHERE id = $1`, id))
}

func (s *queries) UpdateAccountScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := s.q.Exec(ctx, `UPDATE RAC_accounts SET score = $2, updated_at = now() WHERE id = $1`, id, score)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// =====================================
// Contacts, deals, tasks
// =====================================

func (s *queries) InsertContact(ctx context.Context, params InsertContactParams) (domain.Contact, error) {
	var c domain.Contact
	err := s.q.QueryRow(ctx, `
		INSERT INTO RAC_contacts (account_id, name, email, phone, company, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, account_id, name, email, phone, company, owner_id, created_at
	`, params.AccountID, params.Name, params.Email, params.Phone, params.Company, params.OwnerID).
		Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.OwnerID, &c.CreatedAt)
	return c, err
}

func (s *queries) InsertDeal(ctx context.Context, params InsertDealParams) (domain.Deal, error) {
	stage := params.Stage
	if stage == "" {
		stage = domain.InitialPipelineStage
	}

	var d domain.Deal
	var grade string
	var createdAt time.Time
	err := s.q.QueryRow(ctx, `
		INSERT INTO RAC_deals (title, base_key, sequence_number, value, stage, score, grade, is_hot, owner_id, contact_id, account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, title, base_key, sequence_number, value, stage, score, grade, is_hot, owner_id, contact_id, account_id, created_at
	`, params.Title, params.BaseKey, params.SequenceNumber, params.Value, stage, params.Score,
		string(params.Grade), params.IsHot, params.OwnerID, params.ContactID, params.AccountID).
		Scan(&d.ID, &d.Title, &d.BaseKey, &d.SequenceNumber, &d.Value, &d.Stage, &d.Score, &grade,
			&d.IsHot, &d.OwnerID, &d.ContactID, &d.AccountID, &createdAt)
	if err != nil {
		return domain.Deal{}, err
	}
	d.Grade = domain.Grade(grade)
	d.CreatedAt = createdAt
	return d, nil
}

func (s *queries) RestampAccountDeals(ctx context.Context, accountID uuid.UUID, score int, grade domain.Grade, isHot bool) (int, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE RAC_deals
		SET score = $2, grade = $3, is_hot = $4, updated_at = now()
		WHERE account_id = $1
	`, accountID, score, string(grade), isHot)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *queries) ReparentLeadTasks(ctx context.Context, leadID, dealID uuid.UUID) (int, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE RAC_tasks
		SET deal_id = $2, lead_id = NULL
		WHERE lead_id = $1
	`, leadID, dealID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
