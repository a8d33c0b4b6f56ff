package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"GEMA-backend/internal/attendance"
	"GEMA-backend/internal/platform/db"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Repository interface {
	List(ctx context.Context) ([]Member, error)
	Get(ctx context.Context, id int64) (*Member, error)
	Insert(ctx context.Context, m *Member) (int64, error)
	Update(ctx context.Context, m *Member) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	tx       db.Transactor
	repo     Repository
	repoTx   func(db.DBTX) Repository
	clock    Clock
	validate *validator.Validate
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		tx:       db.NewTransactor(conn),
		repo:     NewStore(conn),
		repoTx:   func(q db.DBTX) Repository { return NewStore(q) },
		clock:    realClock{},
		validate: newValidator(),
	}
}

func NewServiceWith(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{
		tx:       db.NoTx{},
		repo:     repo,
		repoTx:   func(db.DBTX) Repository { return repo },
		clock:    clock,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("kelompok", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, g := range attendance.Groups {
			if s == g {
				return true
			}
		}
		return false
	})
	return v
}

// checkRequest validates the request and returns the member it describes.
func (s *Service) checkRequest(req MemberRequest) (Member, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return Member{}, ErrInvalid(fmt.Sprintf("%s: failed %q", fe.Field(), fe.Tag()))
		}
		return Member{}, ErrInvalid("invalid member")
	}
	bd, err := NormalizeBirthDate(req.BirthDate)
	if err != nil {
		return Member{}, err
	}
	return Member{
		Name:      req.Name,
		Gender:    req.Gender,
		Group:     req.Group,
		Status:    req.Status,
		BirthDate: bd,
	}, nil
}

// List returns members newest first, filtered by q over name, gender,
// group, status and birth date, ignoring case.
func (s *Service) List(ctx context.Context, q string, limit, offset int) (ListResponse, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return ListResponse{}, fromDB("list members", err)
	}
	matched := Filter(all, q)

	if offset < 0 {
		offset = 0
	}
	page := matched
	if offset >= len(page) {
		page = nil
	} else {
		page = page[offset:]
	}
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}

	items := make([]MemberResponse, 0, len(page))
	for _, m := range page {
		items = append(items, toResponse(m))
	}
	return ListResponse{Items: items, Total: len(matched), Limit: limit, Offset: offset}, nil
}

func Filter(members []Member, q string) []Member {
	q = strings.TrimSpace(q)
	if q == "" {
		return members
	}
	fold := cases.Fold()
	needle := fold.String(q)
	var out []Member
	for _, m := range members {
		fields := []string{m.Name, m.Gender, m.Group, m.Status}
		if m.BirthDate != nil {
			fields = append(fields, m.BirthDate.Format(DateLayout), m.BirthDate.Format("02/01/2006"))
		}
		for _, f := range fields {
			if strings.Contains(fold.String(f), needle) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func (s *Service) Get(ctx context.Context, id int64) (MemberResponse, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return MemberResponse{}, fromDB("get member", err)
	}
	if m == nil {
		return MemberResponse{}, ErrNotFound("member not found")
	}
	return toResponse(*m), nil
}

func (s *Service) Create(ctx context.Context, req MemberRequest) (MemberResponse, error) {
	m, err := s.checkRequest(req)
	if err != nil {
		return MemberResponse{}, err
	}
	m.CreatedAt = s.clock.Now().UTC()

	id, err := s.repo.Insert(ctx, &m)
	if err != nil {
		return MemberResponse{}, fromDB("create member", err)
	}
	m.ID = id
	log.Printf("[INFO] member created: id=%d", id)
	return toResponse(m), nil
}

func (s *Service) Update(ctx context.Context, id int64, req MemberRequest) (MemberResponse, error) {
	m, err := s.checkRequest(req)
	if err != nil {
		return MemberResponse{}, err
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return MemberResponse{}, fromDB("update member", err)
	}
	if cur == nil {
		return MemberResponse{}, ErrNotFound("member not found")
	}
	m.ID = id
	m.CreatedAt = cur.CreatedAt

	if _, err := s.repo.Update(ctx, &m); err != nil {
		return MemberResponse{}, fromDB("update member", err)
	}
	return toResponse(m), nil
}

// Delete removes the member together with its attendance and group rows.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, q db.DBTX) error {
		n, err := s.repoTx(q).Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound("member not found")
		}
		return nil
	})
	if err != nil {
		return fromDB("delete member", err)
	}
	log.Printf("[INFO] member deleted: id=%d", id)
	return nil
}
