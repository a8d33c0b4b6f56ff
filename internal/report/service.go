package report

import (
	"context"
	"database/sql"

	"github.com/xuri/excelize/v2"

	"GEMA-backend/internal/attendance"
	"GEMA-backend/internal/grouping"
)

type Repository interface {
	MemberCounts(ctx context.Context) ([]CountRow, error)
	ActivityCount(ctx context.Context) (int, error)
}

// SheetSource is satisfied by *attendance.Service.
type SheetSource interface {
	Sheet(ctx context.Context, activityID int64) (*attendance.Sheet, error)
}

// GroupSource is satisfied by *grouping.Service.
type GroupSource interface {
	Current(ctx context.Context, activityID int64) (*grouping.View, error)
}

type Service struct {
	repo   Repository
	sheets SheetSource
	groups GroupSource
}

func NewService(conn *sql.DB, sheets SheetSource, groups GroupSource) *Service {
	return NewServiceWith(NewStore(conn), sheets, groups)
}

func NewServiceWith(repo Repository, sheets SheetSource, groups GroupSource) *Service {
	return &Service{repo: repo, sheets: sheets, groups: groups}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	rows, err := s.repo.MemberCounts(ctx)
	if err != nil {
		return Summary{}, fromDB("member summary", err)
	}
	n, err := s.repo.ActivityCount(ctx)
	if err != nil {
		return Summary{}, fromDB("activity count", err)
	}
	return Summarize(rows, n), nil
}

// AttendanceXLSX reconciles the activity like the sheet view does, then
// renders it. The caller closes the file.
func (s *Service) AttendanceXLSX(ctx context.Context, activityID int64) (*excelize.File, error) {
	sh, err := s.sheets.Sheet(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return AttendanceWorkbook(sh)
}

func (s *Service) GroupsXLSX(ctx context.Context, activityID int64) (*excelize.File, error) {
	v, err := s.groups.Current(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return GroupsWorkbook(v)
}
