package equipment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/csvenc"
)

var importHeader = []string{"name", "description", "expiration_date", "quantity"}

// Import registers one item per CSV row. Rows are independent: a bad row is
// reported and skipped, the rest still go through Register (and merge by name).
// The header line is optional.
func (s *Service) Import(ctx context.Context, r io.Reader, enc csvenc.Encoding) (ImportResult, error) {
	cr := csvenc.NewReader(r, enc)
	var res ImportResult

	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, apperr.Invalid(fmt.Sprintf("csv: %v", err))
		}
		line, _ := cr.FieldPos(0)
		if first && isHeader(rec) {
			continue
		}
		if blank(rec) {
			continue
		}

		row := ImportRowResult{Line: line}
		req, err := parseImportRow(rec)
		if err == nil {
			row.Name = req.Name
			var out RegisterResult
			out, err = s.Register(ctx, req)
			row.ID, row.Merged = out.ID, out.Merged
		}
		switch {
		case err != nil:
			if apperr.CodeOf(err) == apperr.CodeInternal {
				return res, err
			}
			row.Error = err.Error()
			res.Failed++
		case row.Merged:
			res.Merged++
		default:
			res.Created++
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func parseImportRow(rec []string) (RegisterRequest, error) {
	if len(rec) != len(importHeader) {
		return RegisterRequest{}, apperr.Invalid(fmt.Sprintf("want %d columns, got %d", len(importHeader), len(rec)))
	}
	qty, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return RegisterRequest{}, apperr.Invalid(fmt.Sprintf("quantity %q is not an integer", rec[3]))
	}
	return RegisterRequest{
		Name:           strings.TrimSpace(rec[0]),
		Description:    strings.TrimSpace(rec[1]),
		ExpirationDate: strings.TrimSpace(rec[2]),
		Quantity:       qty,
	}, nil
}

// isHeader matches the whole column row, so an item literally named "name" is still imported.
func isHeader(rec []string) bool {
	if len(rec) != len(importHeader) {
		return false
	}
	for i, f := range rec {
		if !strings.EqualFold(strings.TrimSpace(f), importHeader[i]) {
			return false
		}
	}
	return true
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
