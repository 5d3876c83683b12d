package domain

import "time"

type User struct {
	ID           string    `json:"user_id" gorm:"column:user_id;primaryKey;size:36"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex" validate:"required"`
	Email        string    `json:"email" gorm:"size:120;uniqueIndex" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"type:text"`
	Name         string    `json:"name" gorm:"size:64"`
	Location     string    `json:"location,omitempty" gorm:"size:100"`
	ProfileImage string    `json:"profile_image,omitempty" gorm:"size:200"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}

func (User) TableName() string { return "users" }
