package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, b domain.Booking) error {
	days, err := json.Marshal(b.Days)
	if err != nil {
		return fmt.Errorf("marshal day plans: %w", err)
	}
	var transport any
	if b.Transport != nil {
		tb, err := json.Marshal(b.Transport)
		if err != nil {
			return fmt.Errorf("marshal transport: %w", err)
		}
		transport = string(tb)
	}
	_, err = r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.Owner,
		b.Destination.ID,
		b.Guests,
		b.Stay.Start,
		b.Stay.End,
		string(days),
		transport,
		b.TotalCost,
		string(b.Status),
		b.CreatedAt,
	)
	return err
}

func (r *Repo) Get(ctx context.Context, id string) (domain.Booking, error) {
	row := r.db.QueryRowContext(ctx, getBookingSQL, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, err
}

func (r *Repo) ListByOwner(ctx context.Context, owner string) ([]domain.Booking, error) {
	return r.list(ctx, listByOwnerSQL, owner)
}

func (r *Repo) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return r.list(ctx, listAllSQL)
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus is deliberately blind to the previous value: the service layer
// already loaded the row and validated the transition. MySQL reports zero
// affected rows for a no-op value change, so RowsAffected is not a liveness
// signal here.
func (r *Repo) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	_, err := r.db.ExecContext(ctx, updateStatusSQL, string(status), id)
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteBookingSQL, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (domain.Booking, error) {
	var (
		b          domain.Booking
		destID     string
		daysJSON   []byte
		transport  sql.NullString
		statusText string
	)
	if err := row.Scan(
		&b.ID,
		&b.Owner,
		&destID,
		&b.Guests,
		&b.Stay.Start,
		&b.Stay.End,
		&daysJSON,
		&transport,
		&b.TotalCost,
		&statusText,
		&b.CreatedAt,
	); err != nil {
		return domain.Booking{}, err
	}

	b.Destination = domain.CatalogRef{Kind: domain.KindDestination, ID: destID}
	b.Status = domain.BookingStatus(statusText)
	if err := json.Unmarshal(daysJSON, &b.Days); err != nil {
		return domain.Booking{}, fmt.Errorf("unmarshal day plans for %s: %w", b.ID, err)
	}
	if transport.Valid && transport.String != "" {
		var t domain.TransportSelection
		if err := json.Unmarshal([]byte(transport.String), &t); err != nil {
			return domain.Booking{}, fmt.Errorf("unmarshal transport for %s: %w", b.ID, err)
		}
		b.Transport = &t
	}
	return b, nil
}
