package loans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
)

func TestAdmit(t *testing.T) {
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	later := today.AddDate(1, 0, 0)

	cases := []struct {
		name  string
		qty   int
		stock int
		exp   time.Time
		want  error
	}{
		{"ok", 3, 10, later, nil},
		{"takes last units", 2, 2, later, nil},
		{"expires today is still usable", 1, 5, today, nil},
		{"zero quantity", 0, 10, later, apperr.ErrInvalid},
		{"negative quantity", -1, 10, later, apperr.ErrInvalid},
		{"shortfall", 3, 2, later, apperr.ErrConflict},
		{"expired with stock", 1, 10, yesterday, apperr.ErrExpired},
		{"expired and short", 30, 0, yesterday, apperr.ErrExpired},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := admit(c.qty, c.stock, c.exp, today)
			if c.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, c.want)
		})
	}
}
