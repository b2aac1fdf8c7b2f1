package sqlite

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so repositories run
// unchanged inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

const userColumns = `id, email, username, full_name, role, password_hash, created_at, updated_at`

const (
	getUserByID    = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	createUser     = `INSERT INTO users (email, username, full_name, role, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	updateUserPasswordHash = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
	countUsers             = `SELECT COUNT(*) FROM users`

	insertLoginEvent = `INSERT INTO login_log (id, user_id, action, at) VALUES (?, ?, ?, ?)`
	listLoginEvents  = `SELECT id, user_id, action, at FROM login_log
WHERE user_id = ? ORDER BY at DESC, id DESC LIMIT ?`
	deleteLoginEventsBefore = `DELETE FROM login_log WHERE at < ?`
)

type userRow struct {
	ID           int64
	Email        string
	Username     string
	FullName     string
	Role         string
	PasswordHash string
	CreatedAt    int64
	UpdatedAt    int64
}

func (q *queries) scanUser(row *sql.Row) (userRow, error) {
	var u userRow
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *queries) GetUserByID(ctx context.Context, id int64) (userRow, error) {
	return q.scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	return q.scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

func (q *queries) CreateUser(ctx context.Context, u userRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, createUser,
		u.Email, u.Username, u.FullName, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) UpdateUserPasswordHash(ctx context.Context, id int64, hash string, updatedAt int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUserPasswordHash, hash, updatedAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

type loginEventRow struct {
	ID     string
	UserID int64
	Action string
	At     int64
}

func (q *queries) InsertLoginEvent(ctx context.Context, e loginEventRow) error {
	_, err := q.db.ExecContext(ctx, insertLoginEvent, e.ID, e.UserID, e.Action, e.At)
	return err
}

func (q *queries) ListLoginEvents(ctx context.Context, userID int64, limit int) ([]loginEventRow, error) {
	rows, err := q.db.QueryContext(ctx, listLoginEvents, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []loginEventRow
	for rows.Next() {
		var e loginEventRow
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *queries) DeleteLoginEventsBefore(ctx context.Context, cutoff int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteLoginEventsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
