package grouping

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

type Repository interface {
	ActivityExists(ctx context.Context, id int64) (bool, error)
	Attendees(ctx context.Context, activityID int64) ([]Attendee, error)
	SavedRows(ctx context.Context, activityID int64) ([]Row, error)
	ReplaceRows(ctx context.Context, activityID int64, rows []Row) error
	DeleteRow(ctx context.Context, activityID, memberID int64) (int64, error)
	ResetAttendance(ctx context.Context, activityID, memberID int64, now time.Time) error
}

type Service struct {
	tx       db.Transactor
	repo     Repository
	repoTx   func(db.DBTX) Repository
	clock    Clock
	excluded []string
}

// NewService: excluded names never get a group when one is derived.
func NewService(conn *sql.DB, excluded []string) *Service {
	return &Service{
		tx:       db.NewTransactor(conn),
		repo:     NewStore(conn),
		repoTx:   func(q db.DBTX) Repository { return NewStore(q) },
		clock:    realClock{},
		excluded: excluded,
	}
}

func NewServiceWith(repo Repository, clock Clock, excluded []string) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{
		tx:       db.NoTx{},
		repo:     repo,
		repoTx:   func(db.DBTX) Repository { return repo },
		clock:    clock,
		excluded: excluded,
	}
}

// Current returns the saved grouping when the activity has one, otherwise
// derives it from the members marked Hadir.
func (s *Service) Current(ctx context.Context, activityID int64) (*View, error) {
	if err := s.requireActivity(ctx, activityID); err != nil {
		return nil, err
	}
	attendees, err := s.repo.Attendees(ctx, activityID)
	if err != nil {
		return nil, fromDB("load attendees", err)
	}
	// excluded names stay out of saved groupings too, never unassigned
	attendees = withoutExcluded(attendees, s.excluded)
	sortByName(attendees)

	saved, err := s.repo.SavedRows(ctx, activityID)
	if err != nil {
		return nil, fromDB("load groups", err)
	}
	if len(saved) == 0 {
		return &View{
			ActivityID: activityID,
			Groups:     Assign(attendees, s.excluded),
			Unassigned: []Attendee{},
		}, nil
	}

	byMember := make(map[int64]int, len(saved))
	for _, r := range saved {
		byMember[r.MemberID] = r.No
	}
	groups, unassigned := place(attendees, byMember)
	return &View{ActivityID: activityID, Saved: true, Groups: groups, Unassigned: unassigned}, nil
}

// Save replaces the activity's grouping. Every member must be marked Hadir,
// not excluded, and appear once; group numbers run 1..8.
func (s *Service) Save(ctx context.Context, activityID int64, assignments []Assignment) (*View, error) {
	if err := s.requireActivity(ctx, activityID); err != nil {
		return nil, err
	}
	attendees, err := s.repo.Attendees(ctx, activityID)
	if err != nil {
		return nil, fromDB("load attendees", err)
	}
	byID := make(map[int64]Attendee, len(attendees))
	for _, a := range attendees {
		byID[a.ID] = a
	}
	skip := nameSet(s.excluded)

	rows := make([]Row, 0, len(assignments))
	seen := make(map[int64]struct{}, len(assignments))
	for _, as := range assignments {
		if !validNo(as.No) {
			return nil, ErrInvalid(fmt.Sprintf("no_grup must be between 1 and %d", GroupCount))
		}
		if _, dup := seen[as.MemberID]; dup {
			return nil, ErrInvalid(fmt.Sprintf("member %d assigned twice", as.MemberID))
		}
		seen[as.MemberID] = struct{}{}
		a, ok := byID[as.MemberID]
		if !ok {
			return nil, ErrInvalid(fmt.Sprintf("member %d is not marked Hadir", as.MemberID))
		}
		if _, ok := skip[a.Name]; ok {
			return nil, ErrInvalid(fmt.Sprintf("member %d is excluded from grouping", as.MemberID))
		}
		rows = append(rows, Row{ActivityID: activityID, MemberID: a.ID, Name: a.Name, No: as.No, Kelompok: a.Group})
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, q db.DBTX) error {
		return s.repoTx(q).ReplaceRows(ctx, activityID, rows)
	})
	if err != nil {
		return nil, fromDB("save groups", err)
	}
	log.Printf("[INFO] groups saved: activity=%d members=%d", activityID, len(rows))
	return s.Current(ctx, activityID)
}

// Reassign moves one member to another group. A derived grouping is saved
// first so the move sticks.
func (s *Service) Reassign(ctx context.Context, activityID, memberID int64, no int) (*View, error) {
	if !validNo(no) {
		return nil, ErrInvalid(fmt.Sprintf("no_grup must be between 1 and %d", GroupCount))
	}
	v, err := s.Current(ctx, activityID)
	if err != nil {
		return nil, err
	}

	assignments := v.Assignments()
	found := false
	for i := range assignments {
		if assignments[i].MemberID == memberID {
			assignments[i].No = no
			found = true
		}
	}
	if !found {
		for _, a := range v.Unassigned {
			if a.ID == memberID {
				assignments = append(assignments, Assignment{MemberID: memberID, No: no})
				found = true
			}
		}
	}
	if !found {
		return nil, ErrNotFound("member is not in any group")
	}
	return s.Save(ctx, activityID, assignments)
}

// Remove takes a member out of the grouping: attendance goes back to Belum
// and the grup row is deleted, together.
func (s *Service) Remove(ctx context.Context, activityID, memberID int64) error {
	if err := s.requireActivity(ctx, activityID); err != nil {
		return err
	}
	now := s.clock.Now()
	err := s.tx.InTx(ctx, func(ctx context.Context, q db.DBTX) error {
		repo := s.repoTx(q)
		if err := repo.ResetAttendance(ctx, activityID, memberID, now); err != nil {
			return err
		}
		_, err := repo.DeleteRow(ctx, activityID, memberID)
		return err
	})
	if err != nil {
		return fromDB("remove from group", err)
	}
	log.Printf("[INFO] member %d removed from groups of activity %d", memberID, activityID)
	return nil
}

func (s *Service) requireActivity(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalid("invalid activity id")
	}
	ok, err := s.repo.ActivityExists(ctx, id)
	if err != nil {
		return fromDB("load activity", err)
	}
	if !ok {
		return ErrNotFound("activity not found")
	}
	return nil
}
