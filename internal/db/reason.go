package db

import (
	"context"
	"database/sql"
)

// UpsertReason — последняя версия причины за (user, date) выигрывает.
func UpsertReason(ctx context.Context, database *sql.DB, userID int64, date, reason string) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO miss_reasons (user_id, date, reason)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, date) DO UPDATE SET reason = excluded.reason`,
		userID, date, reason)
	return err
}

func GetReason(ctx context.Context, database *sql.DB, userID int64, date string) (string, error) {
	var reason string
	err := database.QueryRowContext(ctx,
		`SELECT reason FROM miss_reasons WHERE user_id = $1 AND date = $2`,
		userID, date).Scan(&reason)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return reason, err
}

func ReasonsForDate(ctx context.Context, database *sql.DB, date string) (map[int64]string, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT user_id, reason FROM miss_reasons WHERE date = $1`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var reason string
		if err := rows.Scan(&id, &reason); err != nil {
			return nil, err
		}
		out[id] = reason
	}
	return out, rows.Err()
}
