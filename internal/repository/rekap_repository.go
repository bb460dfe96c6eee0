package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stemsi/tagihan-dashboard/internal/model"
)

const insertRekapSQL = `INSERT INTO rekap_snapshots
	(generation, reason, fetched_at, total_bills, paid_bills, unpaid_bills,
	 total_arrears, monthly_revenue, kas_balance)
	VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric)
	ON CONFLICT (generation) DO NOTHING`

// RekapRepository stores the summary of every successful snapshot refresh.
type RekapRepository struct {
	pool *pgxpool.Pool
}

// NewRekapRepository creates a new RekapRepository.
func NewRekapRepository(pool *pgxpool.Pool) *RekapRepository {
	return &RekapRepository{pool: pool}
}

func rekapArgs(r model.Rekap) []any {
	return []any{
		r.Generation, r.Reason, r.FetchedAt,
		r.TotalBills, r.PaidBills, r.UnpaidBills,
		r.TotalArrears.String(), r.MonthlyRevenue.String(), r.KasBalance.String(),
	}
}

// Insert stores one rekap row. Rows for an already recorded generation are
// ignored, so requeued rows are safe to insert again.
func (r *RekapRepository) Insert(ctx context.Context, rekap model.Rekap) error {
	_, err := r.pool.Exec(ctx, insertRekapSQL, rekapArgs(rekap)...)
	return err
}

// InsertBatch stores rows in one transaction. Any failure rolls back the
// whole batch.
func (r *RekapRepository) InsertBatch(ctx context.Context, rows []model.Rekap) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertRekapSQL, rekapArgs(row)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListRecent returns the most recent rows, newest first.
func (r *RekapRepository) ListRecent(ctx context.Context, limit int) ([]model.Rekap, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, generation, reason, fetched_at, total_bills, paid_bills, unpaid_bills,
		        total_arrears::text, monthly_revenue::text, kas_balance::text, created_at
		 FROM rekap_snapshots
		 ORDER BY fetched_at DESC, generation DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Rekap, 0)
	for rows.Next() {
		var (
			rk                      model.Rekap
			arrears, revenue, saldo string
		)
		if err := rows.Scan(
			&rk.ID, &rk.Generation, &rk.Reason, &rk.FetchedAt,
			&rk.TotalBills, &rk.PaidBills, &rk.UnpaidBills,
			&arrears, &revenue, &saldo, &rk.CreatedAt,
		); err != nil {
			return nil, err
		}
		if rk.TotalArrears, err = decimal.NewFromString(arrears); err != nil {
			return nil, fmt.Errorf("rekap %d total_arrears: %w", rk.ID, err)
		}
		if rk.MonthlyRevenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("rekap %d monthly_revenue: %w", rk.ID, err)
		}
		if rk.KasBalance, err = decimal.NewFromString(saldo); err != nil {
			return nil, fmt.Errorf("rekap %d kas_balance: %w", rk.ID, err)
		}
		out = append(out, rk)
	}
	return out, rows.Err()
}
