package model

import (
	"time"
)

// InvoiceStatus is the lifecycle state of an invoice. Only DRAFT -> SENT has
// a transition endpoint; PAID, OVERDUE and CANCELLED are driven externally.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// Invoice is a finalized, tax-computed bill covering one or more courses for
// one client. Amount is the tax-exclusive sum of the linked course prices.
type Invoice struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	InvoiceNumber string        `json:"invoice_number" gorm:"type:varchar(20);index;not null"`
	Status        InvoiceStatus `json:"status" gorm:"type:varchar(20);index;default:'DRAFT'"`
	IssueDate     time.Time     `json:"issue_date" gorm:"not null"`
	DueDate       time.Time     `json:"due_date" gorm:"not null"`
	Amount        float64       `json:"amount" gorm:"not null"`
	TaxRate       float64       `json:"tax_rate" gorm:"not null"`
	TaxAmount     float64       `json:"tax_amount" gorm:"not null"`
	TotalAmount   float64       `json:"total_amount" gorm:"not null"`
	Notes         string        `json:"notes" gorm:"type:text"`
	ProfessorID   uint          `json:"professor_id" gorm:"index;not null"`
	Professor     *User         `json:"professor,omitempty" gorm:"foreignKey:ProfessorID"`
	ClientID      uint          `json:"client_id" gorm:"index;not null"`
	Client        *User         `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Courses       []Course      `json:"courses,omitempty" gorm:"foreignKey:InvoiceID"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
