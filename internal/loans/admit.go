package loans

import (
	"fmt"
	"time"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
)

// admit decides whether qty units of an item can be lent on today.
// Expiry is checked before stock, so an expired item is refused even when
// stock is short.
func admit(qty, stock int, expiration, today time.Time) error {
	if qty <= 0 {
		return apperr.Invalid(fmt.Sprintf("quantity must be positive, got %d", qty))
	}
	if dates.Day(expiration).Before(dates.Day(today)) {
		return apperr.Expired(fmt.Sprintf("equipment expired on %s", dates.Format(expiration)))
	}
	if stock < qty {
		return apperr.Conflict(fmt.Sprintf("insufficient stock: %d on hand, %d requested", stock, qty))
	}
	return nil
}
