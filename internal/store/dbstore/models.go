package dbstore

import (
	"time"

	"gorm.io/datatypes"
)

type Setting struct {
	Key   string `gorm:"primaryKey;type:varchar(128)"`
	Value string `gorm:"type:text;not null"`
}

func (Setting) TableName() string { return "settings" }

type Scale struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"type:varchar(128);not null"`
	Category     string `gorm:"type:varchar(64);not null"`
	Enabled      bool   `gorm:"not null"`
	Instructions string `gorm:"type:text;not null"`
}

func (Scale) TableName() string { return "scales" }

type Model struct {
	ID       string `gorm:"primaryKey;type:varchar(128)"`
	Name     string `gorm:"type:varchar(128);not null"`
	Provider string `gorm:"type:varchar(64);not null"`
}

func (Model) TableName() string { return "models" }

// History stores the analysis payload minus its id column as JSON.
type History struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	Data      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
}

func (History) TableName() string { return "history" }
