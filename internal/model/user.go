package model

import (
	"time"
)

// Role discriminates the two principals of the service.
type Role string

const (
	RoleProfessor Role = "PROFESSOR"
	RoleClient    Role = "CLIENT"
)

// User represents an account stored in the database. Professors own courses,
// invoices and quotes; clients are the recipients of those courses.
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Email         string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password      string    `json:"-" gorm:"type:varchar(100);not null"`
	FirstName     string    `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName      string    `json:"last_name" gorm:"type:varchar(100);not null"`
	Role          Role      `json:"role" gorm:"type:varchar(20);index;not null"`
	Phone         *string   `json:"phone,omitempty" gorm:"type:varchar(20)"`
	Address       *string   `json:"address,omitempty" gorm:"type:text"`
	ProfessorType *string   `json:"professor_type,omitempty" gorm:"type:varchar(50)"`
	Bio           *string   `json:"bio,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FullName is used for email senders and PDF blocks.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
