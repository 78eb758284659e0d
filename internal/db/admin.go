package db

import (
	"context"
	"database/sql"
)

// PurgeUser — полное удаление пользователя: сдачи, причины, сама запись.
// Одной транзакцией, чтобы не оставить осиротевших строк.
func PurgeUser(ctx context.Context, database *sql.DB, userID int64) error {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM submissions WHERE user_id = $1`,
		`DELETE FROM miss_reasons WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ResetAll — полный сброс данных (админская операция).
func ResetAll(ctx context.Context, database *sql.DB) error {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM submissions`,
		`DELETE FROM miss_reasons`,
		`DELETE FROM users`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return tx.Commit()
}
