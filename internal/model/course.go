package model

import (
	"time"
)

// CourseStatus is the lifecycle state of a tutoring session.
type CourseStatus string

const (
	CourseScheduled CourseStatus = "SCHEDULED"
	CourseCompleted CourseStatus = "COMPLETED"
	CourseCancelled CourseStatus = "CANCELLED"
)

// Course represents one tutoring session, billable once. A nil Date means
// the session is still to be scheduled. InvoiceID is set when the course is
// claimed by an invoice and is never cleared afterwards.
type Course struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"type:varchar(200);not null"`
	Description string       `json:"description" gorm:"type:text"`
	Subject     string       `json:"subject" gorm:"type:varchar(100);index;not null"`
	Date        *time.Time   `json:"date" gorm:"index"`
	Duration    int          `json:"duration" gorm:"not null;comment:'Duration in minutes'"`
	Price       float64      `json:"price" gorm:"not null;comment:'Tax-exclusive price'"`
	Status      CourseStatus `json:"status" gorm:"type:varchar(20);index;default:'SCHEDULED'"`
	Location    string       `json:"location" gorm:"type:varchar(200)"`
	Notes       string       `json:"notes" gorm:"type:text"`
	ProfessorID uint         `json:"professor_id" gorm:"index;not null"`
	Professor   *User        `json:"professor,omitempty" gorm:"foreignKey:ProfessorID"`
	ClientID    uint         `json:"client_id" gorm:"index;not null"`
	Client      *User        `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	InvoiceID   *uint        `json:"invoice_id" gorm:"index"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
