package types

import (
	"time"

	"github.com/google/uuid"
)

type InterestSource string

const (
	InterestExplicit   InterestSource = "explicit"
	InterestInferred   InterestSource = "inferred"
	InterestBehavioral InterestSource = "behavioral"
)

type Interest struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	Name      string         `gorm:"not null;column:name" json:"name"`
	Category  string         `gorm:"column:category" json:"category"`
	Strength  float64        `gorm:"not null;default:0.5;column:strength" json:"strength"`
	Source    InterestSource `gorm:"not null;default:'explicit';column:source" json:"source"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Interest) TableName() string {
	return "interest"
}
