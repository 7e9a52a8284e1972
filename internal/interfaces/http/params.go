package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
)

const dateLayout = "2006-01-02"

// pagination lee limit/offset; valores inválidos caen a los defaults.
func pagination(c *fiber.Ctx) (limit, offset int) {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	return page.Limit, page.Offset
}

// dateRange lee from/to (RFC3339 o YYYY-MM-DD). Una fecha sin hora en "to" cubre el día completo.
func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = parseDate(c.Query("from"), false); err != nil {
		return nil, nil, domain.NewValidationError("from", "fecha inválida: %s", c.Query("from"))
	}
	if to, err = parseDate(c.Query("to"), true); err != nil {
		return nil, nil, domain.NewValidationError("to", "fecha inválida: %s", c.Query("to"))
	}
	return from, to, nil
}

func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
