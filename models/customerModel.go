package models

import "gorm.io/gorm"

type Customer struct {
	gorm.Model
	AuthUserID       *string `json:"authUserId" gorm:"uniqueIndex;size:64"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email" gorm:"uniqueIndex;size:191;not null"`
	MarketingConsent bool    `json:"marketingConsent"`
}

type Subscriber struct {
	gorm.Model
	Email string `json:"email" gorm:"uniqueIndex;size:191;not null"`
}
