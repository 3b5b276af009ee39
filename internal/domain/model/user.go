package model

import "time"

// ユーザーはユーザーストア側が持ち主。
// ここで変えるのはisAdminだけ。資格情報は一切持たない。
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
