package activity

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"GEMA-backend/internal/platform/db"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Repository interface {
	List(ctx context.Context, f Filter) ([]Activity, int64, error)
	Get(ctx context.Context, id int64) (*Activity, error)
	Insert(ctx context.Context, a *Activity) (int64, error)
	Update(ctx context.Context, a *Activity) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	tx     db.Transactor
	repo   Repository
	repoTx func(db.DBTX) Repository
	clock  Clock
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		tx:     db.NewTransactor(conn),
		repo:   NewStore(conn),
		repoTx: func(q db.DBTX) Repository { return NewStore(q) },
		clock:  realClock{},
	}
}

func NewServiceWith(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{
		tx:     db.NoTx{},
		repo:   repo,
		repoTx: func(db.DBTX) Repository { return repo },
		clock:  clock,
	}
}

func (s *Service) List(ctx context.Context, f Filter) (ListResponse, error) {
	switch f.Sort {
	case "", SortNewest, SortDate, SortPlace:
	default:
		return ListResponse{}, ErrInvalid("sort must be kegiatan, tanggal or tempat")
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return ListResponse{}, fromDB("list activities", err)
	}
	out := make([]ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	return ListResponse{Items: out, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (ActivityResponse, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return ActivityResponse{}, fromDB("get activity", err)
	}
	if a == nil {
		return ActivityResponse{}, ErrNotFound("activity not found")
	}
	return toResponse(*a), nil
}

func parseRequest(req ActivityRequest) (Activity, error) {
	a := Activity{
		Title: strings.TrimSpace(req.Title),
		Place: strings.TrimSpace(req.Place),
	}
	if a.Title == "" {
		return Activity{}, ErrInvalid("nama_giat is required")
	}
	if a.Place == "" {
		return Activity{}, ErrInvalid("tempat is required")
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return Activity{}, ErrInvalid("invalid tgl_giat format, expected YYYY-MM-DD")
	}
	a.Date = d
	return a, nil
}

func (s *Service) Create(ctx context.Context, req ActivityRequest) (ActivityResponse, error) {
	a, err := parseRequest(req)
	if err != nil {
		return ActivityResponse{}, err
	}
	a.CreatedAt = s.clock.Now().UTC()
	id, err := s.repo.Insert(ctx, &a)
	if err != nil {
		return ActivityResponse{}, fromDB("create activity", err)
	}
	a.ID = id
	log.Printf("[INFO] activity created: id=%d", id)
	return toResponse(a), nil
}

func (s *Service) Update(ctx context.Context, id int64, req ActivityRequest) (ActivityResponse, error) {
	a, err := parseRequest(req)
	if err != nil {
		return ActivityResponse{}, err
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return ActivityResponse{}, fromDB("update activity", err)
	}
	if cur == nil {
		return ActivityResponse{}, ErrNotFound("activity not found")
	}
	a.ID = id
	a.CreatedAt = cur.CreatedAt
	if err := s.repo.Update(ctx, &a); err != nil {
		return ActivityResponse{}, fromDB("update activity", err)
	}
	return toResponse(a), nil
}

// Delete removes the activity together with its attendance and groups.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context, q db.DBTX) error {
		n, err := s.repoTx(q).Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound("activity not found")
		}
		return nil
	})
	if err != nil {
		return fromDB("delete activity", err)
	}
	log.Printf("[INFO] activity deleted: id=%d", id)
	return nil
}
