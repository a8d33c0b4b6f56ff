package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"GEMA-backend/internal/attendance"
	"GEMA-backend/internal/grouping"
)

const (
	SheetRekap     = "Rekap"
	SheetKehadiran = "Kehadiran"
	SheetGrup      = "Grup"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// rowWriter appends rows to one sheet, remembering the next free row.
type rowWriter struct {
	f     *excelize.File
	sheet string
	row   int
	bold  int
}

func (w *rowWriter) write(values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		return err
	}
	w.row++
	return nil
}

func (w *rowWriter) header(values ...any) error {
	start, _ := excelize.CoordinatesToCellName(1, w.row)
	end, _ := excelize.CoordinatesToCellName(len(values), w.row)
	if err := w.write(values...); err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, start, end, w.bold)
}

func newWorkbook(first string) (*excelize.File, int, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), first); err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, bold, nil
}

// AttendanceWorkbook: a Rekap sheet with per-group statistics and a
// Kehadiran sheet listing every member with their status.
func AttendanceWorkbook(sh *attendance.Sheet) (*excelize.File, error) {
	f, bold, err := newWorkbook(SheetRekap)
	if err != nil {
		return nil, err
	}
	if err := fillAttendance(f, bold, sh); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillAttendance(f *excelize.File, bold int, sh *attendance.Sheet) error {
	w := &rowWriter{f: f, sheet: SheetRekap, row: 1, bold: bold}
	for _, kv := range [][]any{
		{"Kegiatan", sh.Activity.Title},
		{"Tanggal", sh.Activity.Date.Format("02/01/2006")},
		{"Tempat", sh.Activity.Place},
	} {
		if err := w.write(kv...); err != nil {
			return err
		}
	}
	w.row++

	if err := w.header("Kelompok", "Total", "Hadir", "Izin", "Belum", "Persentase"); err != nil {
		return err
	}
	var sum attendance.GroupStat
	for _, st := range sh.Stats {
		if err := w.write(st.Group, st.Total, st.Hadir, st.Izin, st.Belum, round1(st.Percentage)); err != nil {
			return err
		}
		sum.Total += st.Total
		sum.Hadir += st.Hadir
		sum.Izin += st.Izin
		sum.Belum += st.Belum
	}
	pct := attendance.Percentage(sum.Hadir, sum.Total, sum.Izin)
	if err := w.write("Jumlah", sum.Total, sum.Hadir, sum.Izin, sum.Belum, round1(pct)); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetRekap, "A", "A", 20); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetKehadiran); err != nil {
		return err
	}
	w = &rowWriter{f: f, sheet: SheetKehadiran, row: 1, bold: bold}
	if err := w.header("No", "Nama", "Kelompok", "Status"); err != nil {
		return err
	}
	for i, r := range sh.Rows() {
		if err := w.write(i+1, r.Name, r.Group, string(r.Attendance)); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetKehadiran, "B", "C", 28)
}

// GroupsWorkbook lists each numbered group, men and women side by side.
func GroupsWorkbook(v *grouping.View) (*excelize.File, error) {
	f, bold, err := newWorkbook(SheetGrup)
	if err != nil {
		return nil, err
	}
	w := &rowWriter{f: f, sheet: SheetGrup, row: 1, bold: bold}
	if err := fillGroups(w, v); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillGroups(w *rowWriter, v *grouping.View) error {
	if err := w.header("No", "Grup", "Laki-laki", "Perempuan"); err != nil {
		return err
	}
	for _, g := range v.Groups {
		n := max(len(g.Male), len(g.Female))
		for i := 0; i < n; i++ {
			var male, female string
			if i < len(g.Male) {
				male = g.Male[i].Name
			}
			if i < len(g.Female) {
				female = g.Female[i].Name
			}
			if err := w.write(i+1, fmt.Sprintf("Grup %d", g.No), male, female); err != nil {
				return err
			}
		}
	}
	return w.f.SetColWidth(SheetGrup, "C", "D", 28)
}

func round1(p float64) float64 {
	return float64(int64(p*10+0.5)) / 10
}
