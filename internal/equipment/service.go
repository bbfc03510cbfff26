package equipment

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/verificacao-programa/controle-epi/internal/platform/apperr"
	"github.com/verificacao-programa/controle-epi/internal/platform/dates"
	"github.com/verificacao-programa/controle-epi/internal/platform/db"
	"github.com/verificacao-programa/controle-epi/internal/platform/validate"
)

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(conn *sql.DB) *Service { return &Service{db: conn, store: NewStore()} }

// Register adds a new item, or adds in.Quantity to the existing item with the same name.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (RegisterResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return RegisterResult{}, err
	}
	exp, err := dates.Parse(in.ExpirationDate)
	if err != nil {
		return RegisterResult{}, apperr.Invalid(err.Error())
	}

	id, merged, err := s.store.Upsert(ctx, s.db, in.Name, in.Description, exp, in.Quantity)
	if err != nil {
		log.Printf("[ERROR] equipment.Register name=%q: %v", in.Name, err)
		return RegisterResult{}, apperr.Internal("register equipment failed")
	}
	if merged {
		log.Printf("[INFO] equipment.Register merged id=%d name=%q +%d", id, in.Name, in.Quantity)
	} else {
		log.Printf("[INFO] equipment.Register created id=%d name=%q qty=%d", id, in.Name, in.Quantity)
	}
	return RegisterResult{ID: id, Merged: merged}, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateRequest) (Item, error) {
	if in.Empty() {
		return Item{}, apperr.Invalid("no fields to update")
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := validate.Struct(in); err != nil {
		return Item{}, err
	}
	p := patch{Name: in.Name, Description: in.Description, Quantity: in.Quantity}
	if in.ExpirationDate != nil {
		exp, err := dates.Parse(*in.ExpirationDate)
		if err != nil {
			return Item{}, apperr.Invalid(err.Error())
		}
		p.ExpirationDate = &exp
	}

	var out Item
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		cur, err := s.store.LockByID(ctx, tx, id)
		if err != nil {
			if isNoRows(err) {
				return apperr.NotFound(fmt.Sprintf("equipment %d not found", id))
			}
			return err
		}
		if p.Name != nil && *p.Name != cur.Name {
			other, err := s.store.GetByName(ctx, tx, *p.Name)
			switch {
			case err == nil && other.ID != id:
				return apperr.Conflict(fmt.Sprintf("equipment name %q already in use", *p.Name))
			case err != nil && !isNoRows(err):
				return err
			}
		}
		if err := s.store.ApplyPatch(ctx, tx, id, p); err != nil {
			if db.IsDuplicateKey(err) {
				return apperr.Conflict(fmt.Sprintf("equipment name %q already in use", *p.Name))
			}
			return err
		}
		out, err = s.store.GetByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return Item{}, apperr.Wrap("equipment.Update", err)
	}
	log.Printf("[INFO] equipment.Update id=%d", id)
	return out, nil
}

// Remove deletes the item unless an Active loan still references it.
func (s *Service) Remove(ctx context.Context, id int64) error {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := s.store.LockByID(ctx, tx, id); err != nil {
			if isNoRows(err) {
				return apperr.NotFound(fmt.Sprintf("equipment %d not found", id))
			}
			return err
		}
		active, err := s.store.HasActiveLoans(ctx, tx, id)
		if err != nil {
			return err
		}
		if active {
			return apperr.Conflict(fmt.Sprintf("equipment %d has active loans", id))
		}
		return s.store.Delete(ctx, tx, id)
	})
	if err != nil {
		return apperr.Wrap("equipment.Remove", err)
	}
	log.Printf("[INFO] equipment.Remove id=%d", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	it, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if isNoRows(err) {
			return Item{}, apperr.NotFound(fmt.Sprintf("equipment %d not found", id))
		}
		return Item{}, apperr.Wrap("equipment.Get", err)
	}
	return it, nil
}

func (s *Service) FindByName(ctx context.Context, name string) (Item, error) {
	it, err := s.store.GetByName(ctx, s.db, strings.TrimSpace(name))
	if err != nil {
		if isNoRows(err) {
			return Item{}, apperr.NotFound(fmt.Sprintf("equipment %q not found", name))
		}
		return Item{}, apperr.Wrap("equipment.FindByName", err)
	}
	return it, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Item, error) {
	items, err := s.store.ListAll(ctx, s.db)
	return items, apperr.Wrap("equipment.ListAll", err)
}

func (s *Service) ListExpired(ctx context.Context, today time.Time) ([]Item, error) {
	items, err := s.store.ListExpired(ctx, s.db, dates.Day(today))
	return items, apperr.Wrap("equipment.ListExpired", err)
}

func (s *Service) ListAvailable(ctx context.Context) ([]Item, error) {
	items, err := s.store.ListAvailable(ctx, s.db)
	return items, apperr.Wrap("equipment.ListAvailable", err)
}
