/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL for clients, subscriptions, payments,
 * pause intervals, diet plan days, and follow-ups.
 *
 * Ledger mutations that the engine treats as read-modify-write (payment,
 * pause, resume) are implemented as single guarded statements or short
 * transactions whose UPDATE carries the expected status in its WHERE clause.
 * A guard that matches no row reports ErrStateConflict instead of silently
 * re-applying the change, which closes the double-resume end-date race.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutrivibes/engagement-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateClient inserts a new roster entry and returns the stored row.
func (r *PostgresRepository) CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	var created domain.Client
	query := `
        INSERT INTO clients (id, dietician_id, full_name, phone, status, program_start_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, dietician_id, full_name, phone, status, program_start_date, created_at, updated_at
    `
	id := client.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	err := r.db.QueryRow(ctx, query,
		id, client.DieticianID, client.FullName, client.Phone, client.Status, client.ProgramStartDate,
	).Scan(
		&created.ID, &created.DieticianID, &created.FullName, &created.Phone,
		&created.Status, &created.ProgramStartDate, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindClientByID retrieves a client by id.
func (r *PostgresRepository) FindClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	query := `
        SELECT id, dietician_id, full_name, phone, status, program_start_date, created_at, updated_at
        FROM clients
        WHERE id = $1
    `
	err := r.db.QueryRow(ctx, query, id).Scan(
		&client.ID, &client.DieticianID, &client.FullName, &client.Phone,
		&client.Status, &client.ProgramStartDate, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// UpdateClient persists the mutable roster fields of a client.
func (r *PostgresRepository) UpdateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	var updated domain.Client
	query := `
        UPDATE clients
        SET full_name = $2, phone = $3, status = $4, program_start_date = $5, updated_at = NOW()
        WHERE id = $1
        RETURNING id, dietician_id, full_name, phone, status, program_start_date, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		client.ID, client.FullName, client.Phone, client.Status, client.ProgramStartDate,
	).Scan(
		&updated.ID, &updated.DieticianID, &updated.FullName, &updated.Phone,
		&updated.Status, &updated.ProgramStartDate, &updated.CreatedAt, &updated.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// SoftDeleteClient flips a client's status to DELETED, preserving all rows.
func (r *PostgresRepository) SoftDeleteClient(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE clients SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, domain.ClientDeleted,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// HardDeleteClient removes a client and cascades over every dependent record
// in one transaction: follow-ups, pause intervals, payments, subscriptions,
// then the roster row itself.
func (r *PostgresRepository) HardDeleteClient(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM follow_ups WHERE client_id = $1`, id); err != nil {
		return fmt.Errorf("delete follow-ups: %w", err)
	}
	if _, err := tx.Exec(ctx, `
        DELETE FROM subscription_pauses
        WHERE subscription_id IN (SELECT id FROM subscriptions WHERE client_id = $1)`, id); err != nil {
		return fmt.Errorf("delete pause intervals: %w", err)
	}
	if _, err := tx.Exec(ctx, `
        DELETE FROM subscription_payments
        WHERE subscription_id IN (SELECT id FROM subscriptions WHERE client_id = $1)`, id); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE client_id = $1`, id); err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}

	return tx.Commit(ctx)
}

// CountClientsByStatus returns the dashboard roster counts for a dietician.
// Deleted clients are reported under Expired; New counts clients in status
// NEW created at or after newSince.
func (r *PostgresRepository) CountClientsByStatus(ctx context.Context, dieticianID uuid.UUID, newSince time.Time) (domain.ClientStatusCounts, error) {
	var counts domain.ClientStatusCounts
	query := `
        SELECT
            COUNT(*) FILTER (WHERE status = 'ACTIVE'),
            COUNT(*) FILTER (WHERE status = 'PAUSED'),
            COUNT(*) FILTER (WHERE status = 'LEAD'),
            COUNT(*) FILTER (WHERE status = 'DELETED'),
            COUNT(*) FILTER (WHERE status = 'NEW' AND created_at >= $2)
        FROM clients
        WHERE dietician_id = $1
    `
	err := r.db.QueryRow(ctx, query, dieticianID, newSince).Scan(
		&counts.Active, &counts.Paused, &counts.Lead, &counts.Expired, &counts.New,
	)
	if err != nil {
		return domain.ClientStatusCounts{}, err
	}
	return counts, nil
}

// ListActiveClients returns every ACTIVE client for a dietician.
func (r *PostgresRepository) ListActiveClients(ctx context.Context, dieticianID uuid.UUID) ([]domain.Client, error) {
	query := `
        SELECT id, dietician_id, full_name, phone, status, program_start_date, created_at, updated_at
        FROM clients
        WHERE dietician_id = $1 AND status = 'ACTIVE'
        ORDER BY full_name
    `
	rows, err := r.db.Query(ctx, query, dieticianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(
			&c.ID, &c.DieticianID, &c.FullName, &c.Phone,
			&c.Status, &c.ProgramStartDate, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// CreateSubscriptionExpiringActive expires every ACTIVE subscription for the
// client and inserts the new one, all in a single transaction so a concurrent
// assign cannot leave two live billing periods behind.
func (r *PostgresRepository) CreateSubscriptionExpiringActive(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        UPDATE subscriptions
        SET status = $2, updated_at = NOW()
        WHERE client_id = $1 AND status = $3`,
		sub.ClientID, domain.SubscriptionExpired, domain.SubscriptionActive,
	)
	if err != nil {
		return nil, fmt.Errorf("expire active subscriptions: %w", err)
	}

	var created domain.Subscription
	err = tx.QueryRow(ctx, `
        INSERT INTO subscriptions (id, client_id, plan_name, start_date, end_date, total_amount, amount_paid, status)
        VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
        RETURNING id, client_id, plan_name, start_date, end_date, total_amount, amount_paid, status, created_at, updated_at`,
		uuid.New(), sub.ClientID, sub.PlanName, sub.StartDate, sub.EndDate, sub.TotalAmount, domain.SubscriptionPendingPayment,
	).Scan(
		&created.ID, &created.ClientID, &created.PlanName, &created.StartDate, &created.EndDate,
		&created.TotalAmount, &created.AmountPaid, &created.Status, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

const subscriptionColumns = `id, client_id, plan_name, start_date, end_date, total_amount, amount_paid, status, created_at, updated_at`

func scanSubscription(row pgx.Row, sub *domain.Subscription) error {
	return row.Scan(
		&sub.ID, &sub.ClientID, &sub.PlanName, &sub.StartDate, &sub.EndDate,
		&sub.TotalAmount, &sub.AmountPaid, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt,
	)
}

// FindSubscriptionByID retrieves a subscription with its payments and pauses.
func (r *PostgresRepository) FindSubscriptionByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := scanSubscription(r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id), &sub)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if err := r.loadSubscriptionDetails(ctx, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// LatestSubscriptionByClientID returns the client's most recent subscription
// by end date, or ErrSubscriptionNotFound when the client has none.
func (r *PostgresRepository) LatestSubscriptionByClientID(ctx context.Context, clientID uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := scanSubscription(r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE client_id = $1 ORDER BY end_date DESC LIMIT 1`,
		clientID), &sub)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if err := r.loadSubscriptionDetails(ctx, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *PostgresRepository) loadSubscriptionDetails(ctx context.Context, sub *domain.Subscription) error {
	rows, err := r.db.Query(ctx, `
        SELECT id, subscription_id, paid_at, amount, method, note
        FROM subscription_payments
        WHERE subscription_id = $1
        ORDER BY paid_at`, sub.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.PaymentRecord
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &p.PaidAt, &p.Amount, &p.Method, &p.Note); err != nil {
			return err
		}
		sub.Payments = append(sub.Payments, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	pauseRows, err := r.db.Query(ctx, `
        SELECT id, subscription_id, start_date, end_date, reason
        FROM subscription_pauses
        WHERE subscription_id = $1
        ORDER BY start_date`, sub.ID)
	if err != nil {
		return err
	}
	defer pauseRows.Close()
	for pauseRows.Next() {
		var p domain.PauseInterval
		if err := pauseRows.Scan(&p.ID, &p.SubscriptionID, &p.StartDate, &p.EndDate, &p.Reason); err != nil {
			return err
		}
		sub.Pauses = append(sub.Pauses, p)
	}
	return pauseRows.Err()
}

// ApplyPayment appends a payment record and bumps the subscription's paid
// amount in one transaction. The status flip out of PENDING_PAYMENT happens
// inside the UPDATE itself so two concurrent payments cannot both observe the
// pre-payment status. AmountPaid is deliberately not clamped against the
// total and a fully paid subscription is not auto-completed.
func (r *PostgresRepository) ApplyPayment(ctx context.Context, params ApplyPaymentParams) (*domain.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var sub domain.Subscription
	err = scanSubscription(tx.QueryRow(ctx, `
        UPDATE subscriptions
        SET amount_paid = amount_paid + $2,
            status = CASE WHEN status = 'PENDING_PAYMENT' AND $2 > 0 THEN 'ACTIVE' ELSE status END,
            updated_at = NOW()
        WHERE id = $1
        RETURNING `+subscriptionColumns,
		params.SubscriptionID, params.Amount), &sub)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO subscription_payments (id, subscription_id, paid_at, amount, method, note)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), params.SubscriptionID, params.PaidAt, params.Amount, params.Method, params.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	if err := r.loadSubscriptionDetails(ctx, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// PauseSubscription flips an ACTIVE subscription to PAUSED and opens a new
// pause interval. The status guard in the UPDATE makes pause-when-paused (or
// two concurrent pauses) a no-match, reported as ErrStateConflict.
func (r *PostgresRepository) PauseSubscription(ctx context.Context, subscriptionID uuid.UUID, pauseDay time.Time, reason *string) (*domain.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var sub domain.Subscription
	err = scanSubscription(tx.QueryRow(ctx, `
        UPDATE subscriptions
        SET status = 'PAUSED', updated_at = NOW()
        WHERE id = $1 AND status = 'ACTIVE'
        RETURNING `+subscriptionColumns,
		subscriptionID), &sub)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrStateConflict
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO subscription_pauses (id, subscription_id, start_date, reason)
        VALUES ($1, $2, $3, $4)`,
		uuid.New(), subscriptionID, pauseDay, reason,
	)
	if err != nil {
		return nil, fmt.Errorf("open pause interval: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	if err := r.loadSubscriptionDetails(ctx, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ResumeSubscription closes the open pause interval and moves the
// subscription back to ACTIVE, extending its end date by extendByDays. The
// status guard ensures that of two near-simultaneous resumes only one can
// apply the extension; the loser matches no row and gets ErrStateConflict.
func (r *PostgresRepository) ResumeSubscription(ctx context.Context, subscriptionID uuid.UUID, resumeDay time.Time, extendByDays int) (*domain.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var sub domain.Subscription
	err = scanSubscription(tx.QueryRow(ctx, `
        UPDATE subscriptions
        SET status = 'ACTIVE',
            end_date = end_date + make_interval(days => $2),
            updated_at = NOW()
        WHERE id = $1 AND status = 'PAUSED'
        RETURNING `+subscriptionColumns,
		subscriptionID, extendByDays), &sub)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrStateConflict
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE subscription_pauses
        SET end_date = $2
        WHERE subscription_id = $1 AND end_date IS NULL`,
		subscriptionID, resumeDay,
	)
	if err != nil {
		return nil, fmt.Errorf("close pause interval: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	if err := r.loadSubscriptionDetails(ctx, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListPublishedDietDays returns every PUBLISHED diet day for the given
// clients inside [from, to]. One range query serves the whole batch; the
// classifier groups the rows by client in memory.
func (r *PostgresRepository) ListPublishedDietDays(ctx context.Context, clientIDs []uuid.UUID, from, to time.Time) ([]domain.DietDay, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}
	query := `
        SELECT client_id, day_date, status
        FROM diet_plan_days
        WHERE client_id = ANY($1) AND day_date BETWEEN $2 AND $3 AND status = 'PUBLISHED'
    `
	rows, err := r.db.Query(ctx, query, clientIDs, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []domain.DietDay
	for rows.Next() {
		var d domain.DietDay
		if err := rows.Scan(&d.ClientID, &d.Date, &d.Status); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ReplacePendingFollowUps deletes every Pending follow-up for the client and
// inserts the fresh batch in one transaction. Completed and Rescheduled rows
// are never touched.
func (r *PostgresRepository) ReplacePendingFollowUps(ctx context.Context, clientID uuid.UUID, items []domain.FollowUp) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM follow_ups WHERE client_id = $1 AND status = $2`,
		clientID, domain.FollowUpPending,
	)
	if err != nil {
		return fmt.Errorf("delete pending follow-ups: %w", err)
	}

	for _, item := range items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		_, err = tx.Exec(ctx, `
            INSERT INTO follow_ups (id, client_id, dietician_id, follow_up_date, time_of_day, category, status)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, item.ClientID, item.DieticianID, item.Date, item.TimeOfDay, item.Category, item.Status,
		)
		if err != nil {
			return fmt.Errorf("insert follow-up: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListDueFollowUps returns the dietician's Pending follow-ups dated on the
// given day, excluding any whose client has been deleted. Severity is filled
// in by the aggregator.
func (r *PostgresRepository) ListDueFollowUps(ctx context.Context, dieticianID uuid.UUID, day time.Time) ([]domain.DueFollowUp, error) {
	query := `
        SELECT f.id, f.client_id, f.dietician_id, f.follow_up_date, f.time_of_day, f.category, f.status, c.full_name
        FROM follow_ups f
        JOIN clients c ON c.id = f.client_id
        WHERE f.dietician_id = $1
          AND f.follow_up_date = $2
          AND f.status = $3
          AND c.status <> $4
        ORDER BY f.time_of_day, c.full_name
    `
	rows, err := r.db.Query(ctx, query, dieticianID, day, domain.FollowUpPending, domain.ClientDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []domain.DueFollowUp
	for rows.Next() {
		var d domain.DueFollowUp
		if err := rows.Scan(
			&d.ID, &d.ClientID, &d.DieticianID, &d.Date, &d.TimeOfDay, &d.Category, &d.Status, &d.ClientName,
		); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}
