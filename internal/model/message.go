package model

import (
	"time"
)

// Message is a direct message between two users. Messaging is handled by an
// external surface; the table is kept in the schema for referential
// integrity with seeded data.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	SenderID   uint      `json:"sender_id" gorm:"index;not null"`
	Sender     *User     `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	ReceiverID uint      `json:"receiver_id" gorm:"index;not null"`
	Receiver   *User     `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	Read       bool      `json:"read" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
}
