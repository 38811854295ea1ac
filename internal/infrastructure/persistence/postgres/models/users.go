// internal/infrastructure/persistence/postgres/models/users.go
package models

import "time"

// User пользователь бота с балансом
type User struct {
	ID         int64     `db:"id" json:"id"`
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	Username   string    `db:"username" json:"username"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name,omitempty"`
	Balance    int64     `db:"balance" json:"balance"`
	IsBanned   bool      `db:"is_banned" json:"is_banned"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName имя для приветствия
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "пользователь"
}
