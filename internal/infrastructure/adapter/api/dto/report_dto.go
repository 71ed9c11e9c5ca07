package dto

import (
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// SummaryResponse is returned by GET /api/summary
type SummaryResponse struct {
	Success           bool      `json:"success"`
	TotalAccounts     int64     `json:"total_accounts"`
	TotalBalance      string    `json:"total_balance"`
	TotalTransactions int64     `json:"total_transactions"`
	RecentAccounts    int64     `json:"recent_accounts"`
	RecentWindowHours float64   `json:"recent_window_hours"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// ReconcileResponse is returned by GET /api/reconcile/:acc_no
type ReconcileResponse struct {
	Success       bool   `json:"success"`
	AccountNumber uint64 `json:"account_number"`
	Balance       string `json:"balance"`
	LedgerBalance string `json:"ledger_balance"`
	Difference    string `json:"difference"`
	EntryCount    int64  `json:"entry_count"`
	Consistent    bool   `json:"consistent"`
}

// HealthResponse is returned by GET /api/health
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Driver    string    `json:"driver"`
	LatencyMs float64   `json:"latency_ms,omitempty"`
	Pool      any       `json:"pool,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSummaryResponse maps a summary for the API
func NewSummaryResponse(summary *entity.Summary) SummaryResponse {
	return SummaryResponse{
		Success:           true,
		TotalAccounts:     summary.AccountCount,
		TotalBalance:      entity.FormatAmount(summary.TotalBalance),
		TotalTransactions: summary.TransactionCount,
		RecentAccounts:    summary.RecentAccounts,
		RecentWindowHours: summary.RecentWindow.Hours(),
		GeneratedAt:       summary.GeneratedAt,
	}
}

// NewReconcileResponse maps a reconciliation for the API
func NewReconcileResponse(r *entity.Reconciliation) ReconcileResponse {
	return ReconcileResponse{
		Success:       true,
		AccountNumber: r.AccountNumber,
		Balance:       entity.FormatAmount(r.Balance),
		LedgerBalance: entity.FormatAmount(r.LedgerBalance),
		Difference:    entity.FormatAmount(r.Difference()),
		EntryCount:    r.EntryCount,
		Consistent:    r.Consistent(),
	}
}
