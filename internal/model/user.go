// Package model defines database models
package model

type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string  `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password     string  `gorm:"size:255;not null" json:"-"`
	Avatar       *string `gorm:"size:255" json:"avatar"`
	RefreshToken *string `gorm:"size:512" json:"-"`
	Confirmed    bool    `gorm:"default:false" json:"-"`

	Contacts []Contact `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
