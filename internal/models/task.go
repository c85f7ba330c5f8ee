package models

import "time"

const DefaultTaskStatus = "pending"

type Task struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Status    string    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt time.Time `json:"createdAt"`
}
