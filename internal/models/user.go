package models

import "time"

// User is a signup record. Password holds whatever the user service decided
// to persist: the submitted value, or its bcrypt hash when hashing is on.
type User struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Password  string    `json:"password" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}
