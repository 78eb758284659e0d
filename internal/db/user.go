package db

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/Spok95/telegram-homework-bot/internal/models"
)

// UpsertUser — создать пользователя или обновить его идентичность.
// Пустые username/first_name существующие значения не затирают: альбомный
// финализатор и служебные пути знают только id.
func UpsertUser(ctx context.Context, database *sql.DB, u models.User) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO users (id, username, first_name)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
    username   = CASE WHEN excluded.username   <> '' THEN excluded.username   ELSE users.username   END,
    first_name = CASE WHEN excluded.first_name <> '' THEN excluded.first_name ELSE users.first_name END`,
		u.ID, u.Username, u.FirstName)
	return err
}

// GetUser — nil без ошибки, если пользователь не найден.
func GetUser(ctx context.Context, database *sql.DB, id int64) (*models.User, error) {
	row := database.QueryRowContext(ctx,
		`SELECT id, username, first_name FROM users WHERE id = $1`, id)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.FirstName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindUser — поиск по id, @username или имени (для админских операций).
func FindUser(ctx context.Context, database *sql.DB, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(identifier), "@"))
	if identifier == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		if u, err := GetUser(ctx, database, id); err != nil || u != nil {
			return u, err
		}
	}
	row := database.QueryRowContext(ctx, `
SELECT id, username, first_name FROM users
WHERE LOWER(username) = LOWER($1) OR LOWER(first_name) = LOWER($1)
LIMIT 1`, identifier)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.FirstName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func ListUsers(ctx context.Context, database *sql.DB) ([]models.User, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT id, username, first_name FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
