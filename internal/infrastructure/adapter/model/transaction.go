package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents the database model for ledger entries
type Transaction struct {
	TransactionID uint64          `gorm:"column:transaction_id;primaryKey;autoIncrement"`
	AccountNumber uint64          `gorm:"column:account_number;not null"`
	Type          string          `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(15,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"column:balance_after;type:numeric(15,2);not null"`
	Reference     *string         `gorm:"type:varchar(64)"` // NULL when the client sent none
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
