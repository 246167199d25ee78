package db

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/srt-studio/backend/internal/db/models"
)

// ErrDuplicate is returned when a unique column already holds the value
var ErrDuplicate = errors.New("already exists")

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// ListUsers returns every account, oldest first
func (d *Database) ListUsers() ([]models.User, error) {
	rows, err := d.db.Query("SELECT id, username, role, created_at, updated_at FROM users ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts an account with an already hashed password
func (d *Database) CreateUser(username, hashedPassword, role string) (int64, error) {
	res, err := d.db.Exec(
		"INSERT INTO users (username, password, role) VALUES (?, ?, ?)",
		username, hashedPassword, role,
	)
	if isUniqueViolation(err) {
		return 0, ErrDuplicate
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteUser removes an account
func (d *Database) DeleteUser(id int64) error {
	res, err := d.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountAdmins returns the number of admin accounts
func (d *Database) CountAdmins() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	return count, err
}
