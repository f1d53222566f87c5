package model

import "time"

type Contact struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName  string    `gorm:"size:50;not null" json:"first_name"`
	LastName   string    `gorm:"size:50;not null" json:"last_name"`
	Email      string    `gorm:"size:50;not null" json:"email"`
	Phone      string    `gorm:"size:15;not null" json:"phone"`
	BornDate   time.Time `gorm:"not null" json:"born_date"`
	Additional string    `gorm:"size:200" json:"additional"`
	UserID     uint      `gorm:"index;not null" json:"-"`
}
