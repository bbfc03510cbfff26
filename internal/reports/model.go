package reports

import (
	"time"

	"github.com/verificacao-programa/controle-epi/internal/equipment"
	"github.com/verificacao-programa/controle-epi/internal/loans"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
)

type Band string

const (
	BandExpired      Band = "expired"
	BandExpiringSoon Band = "expiring_soon"
	BandValid        Band = "valid"
)

// BandOf classifies an expiration date: expired before today, expiring soon
// before today+window, valid from then on.
func BandOf(expiration, today time.Time, window int) Band {
	switch d := dates.DaysBetween(today, expiration); {
	case d < 0:
		return BandExpired
	case d < window:
		return BandExpiringSoon
	default:
		return BandValid
	}
}

type StockLine struct {
	equipment.Item
	Band                Band `json:"band"`
	DaysUntilExpiration int  `json:"days_until_expiration"`
}

// StockLines annotates catalog items with their validity band on today.
func StockLines(items []equipment.Item, today time.Time, window int) []StockLine {
	today = dates.Day(today)
	out := make([]StockLine, 0, len(items))
	for _, it := range items {
		out = append(out, StockLine{
			Item:                it,
			Band:                BandOf(it.ExpirationDate, today, window),
			DaysUntilExpiration: dates.DaysBetween(today, it.ExpirationDate),
		})
	}
	return out
}

type OnLoanLine struct {
	EquipmentID int64  `json:"equipment_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Loans       int    `json:"loans"`
}

type LoanLine struct {
	loans.Loan
	EmployeeName  string         `json:"employee_name"`
	EquipmentName string         `json:"equipment_name"`
	Standing      loans.Standing `json:"standing"`
}
