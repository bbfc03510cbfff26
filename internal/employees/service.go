package employees

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/db"
	"github.com/verificacao-programa/controle-epi/internal/platform/validate"
)

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(conn *sql.DB) *Service { return &Service{db: conn, store: NewStore()} }

func (s *Service) Register(ctx context.Context, in RegisterRequest) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.NationalID = strings.TrimSpace(in.NationalID)
	if err := validate.Struct(in); err != nil {
		return 0, err
	}

	_, err := s.store.GetByNationalID(ctx, s.db, in.NationalID)
	switch {
	case err == nil:
		return 0, apperr.Conflict(fmt.Sprintf("national id %s already registered", in.NationalID))
	case !isNoRows(err):
		return 0, apperr.Wrap("employees.Register", err)
	}

	// the UNIQUE index still decides when two registrations race
	id, err := s.store.Insert(ctx, s.db, in)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return 0, apperr.Conflict(fmt.Sprintf("national id %s already registered", in.NationalID))
		}
		return 0, apperr.Wrap("employees.Register", err)
	}
	log.Printf("[INFO] employees.Register id=%d", id)
	return id, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateRequest) (Employee, error) {
	if in.Empty() {
		return Employee{}, apperr.Invalid("no fields to update")
	}
	in.Name = trimmed(in.Name)
	in.NationalID = trimmed(in.NationalID)
	if err := validate.Struct(in); err != nil {
		return Employee{}, err
	}

	var out Employee
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.store.LockByID(ctx, tx, id); err != nil {
			if isNoRows(err) {
				return apperr.NotFound(fmt.Sprintf("employee %d not found", id))
			}
			return err
		}
		if err := s.store.ApplyPatch(ctx, tx, id, in); err != nil {
			if db.IsDuplicateKey(err) {
				return apperr.Conflict(fmt.Sprintf("national id %s already registered", *in.NationalID))
			}
			return err
		}
		var err error
		out, err = s.store.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return Employee{}, apperr.Wrap("employees.Update", err)
	}
	log.Printf("[INFO] employees.Update id=%d", id)
	return out, nil
}

// Remove deletes the employee unless an Active loan still references them.
func (s *Service) Remove(ctx context.Context, id int64) error {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.store.LockByID(ctx, tx, id); err != nil {
			if isNoRows(err) {
				return apperr.NotFound(fmt.Sprintf("employee %d not found", id))
			}
			return err
		}
		active, err := s.store.HasActiveLoans(ctx, tx, id)
		if err != nil {
			return err
		}
		if active {
			return apperr.Conflict(fmt.Sprintf("employee %d has active loans", id))
		}
		return s.store.Delete(ctx, tx, id)
	})
	if err != nil {
		return apperr.Wrap("employees.Remove", err)
	}
	log.Printf("[INFO] employees.Remove id=%d", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	e, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if isNoRows(err) {
			return Employee{}, apperr.NotFound(fmt.Sprintf("employee %d not found", id))
		}
		return Employee{}, apperr.Wrap("employees.Get", err)
	}
	return e, nil
}

func (s *Service) FindByNationalID(ctx context.Context, nid string) (Employee, error) {
	nid = strings.TrimSpace(nid)
	if !validate.NationalID(nid) {
		return Employee{}, apperr.Invalid("national id must be exactly 11 digits")
	}
	e, err := s.store.GetByNationalID(ctx, s.db, nid)
	if err != nil {
		if isNoRows(err) {
			return Employee{}, apperr.NotFound(fmt.Sprintf("employee with national id %s not found", nid))
		}
		return Employee{}, apperr.Wrap("employees.FindByNationalID", err)
	}
	return e, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Employee, error) {
	out, err := s.store.ListAll(ctx, s.db)
	return out, apperr.Wrap("employees.ListAll", err)
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
