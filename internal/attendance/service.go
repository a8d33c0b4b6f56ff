package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"GEMA-backend/internal/platform/db"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Repository is the persistence surface the service needs. *Store is the
// MySQL implementation.
type Repository interface {
	GetActivity(ctx context.Context, id int64) (*Activity, error)
	MemberExists(ctx context.Context, id int64) (bool, error)
	Roster(ctx context.Context) ([]RosterMember, error)
	ListByActivity(ctx context.Context, activityID int64) ([]Record, error)
	InsertMissing(ctx context.Context, recs []Record) (int64, error)
	Upsert(ctx context.Context, activityID, memberID int64, status Status, now time.Time) (Record, bool, error)
	Delete(ctx context.Context, activityID, memberID int64) (int64, error)
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

// NewServiceWith runs every call against repo without a real transaction.
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

// Reconcile makes sure every roster member has a record for the activity.
// Missing members get a Belum record; all of them are written in one batch
// and the activity is re-read before anything is returned, so the caller
// either sees one record per roster member (in roster order) or an error.
func (s *Service) Reconcile(ctx context.Context, activityID int64, roster []RosterMember, existing []Record) ([]Record, error) {
	missing := MissingRecords(activityID, roster, existing, s.clock.Now().UTC())
	if len(missing) == 0 {
		aligned, _ := AlignToRoster(roster, existing)
		return aligned, nil
	}

	var out []Record
	err := s.tx.InTx(ctx, func(ctx context.Context, q db.DBTX) error {
		repo := s.repoTx(q)
		n, err := repo.InsertMissing(ctx, missing)
		if err != nil {
			return fromDB("reconcile attendance", err)
		}
		if int(n) != len(missing) {
			// a concurrent reconcile got there first; the re-read below decides
			log.Printf("[WARN] reconcile activity=%d: inserted %d of %d rows", activityID, n, len(missing))
		}

		all, err := repo.ListByActivity(ctx, activityID)
		if err != nil {
			return fromDB("reconcile attendance", err)
		}
		aligned, gaps := AlignToRoster(roster, all)
		if len(gaps) > 0 {
			return ErrInternal(fmt.Sprintf("reconcile attendance: %d member(s) still without a record", len(gaps)))
		}
		out = aligned
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] reconcile activity=%d: %v", activityID, err)
		return nil, err
	}
	log.Printf("[INFO] reconcile activity=%d: created %d record(s)", activityID, len(missing))
	return out, nil
}

// Sheet is the full attendance view of one activity.
type Sheet struct {
	Activity Activity
	Roster   []RosterMember
	Records  []Record
	Stats    []GroupStat
}

// Sheet loads the activity, the roster and existing records, reconciles
// them and computes group statistics.
func (s *Service) Sheet(ctx context.Context, activityID int64) (*Sheet, error) {
	act, err := s.requireActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	roster, err := s.repo.Roster(ctx)
	if err != nil {
		return nil, fromDB("load roster", err)
	}
	SortRoster(roster)

	existing, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, fromDB("load attendance", err)
	}

	records, err := s.Reconcile(ctx, activityID, roster, existing)
	if err != nil {
		return nil, err
	}

	return &Sheet{
		Activity: *act,
		Roster:   roster,
		Records:  records,
		Stats:    ComputeGroupStats(roster, records, nil),
	}, nil
}

// Stats computes group statistics without writing anything: members with
// no record count as Belum.
func (s *Service) Stats(ctx context.Context, activityID int64) ([]GroupStat, error) {
	if _, err := s.requireActivity(ctx, activityID); err != nil {
		return nil, err
	}
	roster, err := s.repo.Roster(ctx)
	if err != nil {
		return nil, fromDB("load roster", err)
	}
	records, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, fromDB("load attendance", err)
	}
	return ComputeGroupStats(roster, records, nil), nil
}

// SetStatus overwrites the member's status for the activity, creating the
// record when it does not exist yet. Any transition is allowed.
func (s *Service) SetStatus(ctx context.Context, activityID, memberID int64, status Status) (Record, bool, error) {
	if !status.Valid() {
		return Record{}, false, ErrInvalid("status must be one of Belum, Hadir, Izin")
	}
	if _, err := s.requireActivity(ctx, activityID); err != nil {
		return Record{}, false, err
	}
	ok, err := s.repo.MemberExists(ctx, memberID)
	if err != nil {
		return Record{}, false, fromDB("load member", err)
	}
	if !ok {
		return Record{}, false, ErrNotFound("member not found")
	}

	rec, created, err := s.repo.Upsert(ctx, activityID, memberID, status, s.clock.Now())
	if err != nil {
		return Record{}, false, fromDB("update attendance", err)
	}
	return rec, created, nil
}

// DeleteRecord removes the member's record. Deleting a missing record is
// not an error; the sheet shows the member as Belum either way.
func (s *Service) DeleteRecord(ctx context.Context, activityID, memberID int64) error {
	if _, err := s.repo.Delete(ctx, activityID, memberID); err != nil {
		return fromDB("delete attendance", err)
	}
	return nil
}

func (s *Service) requireActivity(ctx context.Context, id int64) (*Activity, error) {
	if id <= 0 {
		return nil, ErrInvalid("invalid activity id")
	}
	act, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, fromDB("load activity", err)
	}
	if act == nil {
		return nil, ErrNotFound("activity not found")
	}
	return act, nil
}
