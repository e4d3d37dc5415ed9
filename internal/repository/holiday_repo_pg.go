package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/parkingblisko/internal/schedule"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HolidayRepository interface {
	List(ctx context.Context) (schedule.HolidayTable, error)
}

type PGHolidayRepository struct {
	db *pgxpool.Pool
}

func NewHolidayRepository(db *pgxpool.Pool) HolidayRepository {
	return &PGHolidayRepository{db: db}
}

// List reads the holiday_labels table. Rows with an impossible day or month are skipped.
func (r *PGHolidayRepository) List(ctx context.Context) (schedule.HolidayTable, error) {
	rows, err := r.db.Query(ctx, `SELECT day, month, label FROM holiday_labels ORDER BY month, day`)
	if err != nil {
		return nil, fmt.Errorf("query holiday labels: %w", err)
	}
	defer rows.Close()

	table := schedule.HolidayTable{}
	for rows.Next() {
		var (
			day, month int
			label      string
		)
		if err := rows.Scan(&day, &month, &label); err != nil {
			return nil, err
		}
		if key, ok := monthDay(day, month); ok {
			table[key] = label
		}
	}
	return table, rows.Err()
}

func monthDay(day, month int) (schedule.MonthDay, bool) {
	if month < 1 || month > 12 || day < 1 {
		return schedule.MonthDay{}, false
	}
	// 2024 is a leap year, so 29 February is accepted
	if time.Date(2024, time.Month(month), day, 0, 0, 0, 0, time.UTC).Day() != day {
		return schedule.MonthDay{}, false
	}
	return schedule.MonthDay{Month: time.Month(month), Day: day}, true
}

var _ HolidayRepository = (*PGHolidayRepository)(nil)
