package model

import (
	"time"
)

// Quote is a free-standing price proposal. It has no course linkage and no
// persisted SENT state; expiry is derived from ValidUntil at read time.
type Quote struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	QuoteNumber string    `json:"quote_number" gorm:"type:varchar(20);index;not null"`
	IssueDate   time.Time `json:"issue_date" gorm:"not null"`
	ValidUntil  time.Time `json:"valid_until" gorm:"not null"`
	Amount      float64   `json:"amount" gorm:"not null"`
	TaxRate     float64   `json:"tax_rate" gorm:"not null"`
	TaxAmount   float64   `json:"tax_amount" gorm:"not null"`
	TotalAmount float64   `json:"total_amount" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Notes       string    `json:"notes" gorm:"type:text"`
	Accepted    bool      `json:"accepted" gorm:"default:false"`
	ProfessorID uint      `json:"professor_id" gorm:"index;not null"`
	Professor   *User     `json:"professor,omitempty" gorm:"foreignKey:ProfessorID"`
	ClientID    uint      `json:"client_id" gorm:"index;not null"`
	Client      *User     `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
