package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents the database model for accounts
type Account struct {
	AccountNumber uint64          `gorm:"column:account_number;primaryKey;autoIncrement"`
	Name          string          `gorm:"type:varchar(100);not null"`
	Balance       decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}
