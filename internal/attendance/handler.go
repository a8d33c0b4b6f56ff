package attendance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"GEMA-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the attendance sheet under an authenticated group.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/activities/:id/attendance", h.GetSheet)
	r.GET("/activities/:id/attendance/stats", h.GetStats)
	r.PUT("/activities/:id/attendance/:member_id", auth.RequirePermission(auth.ActionEditAttendance), h.SetStatus)
	r.DELETE("/activities/:id/attendance/:member_id", auth.RequirePermission(auth.ActionEditAttendance), h.DeleteRecord)
}

// GetSheet godoc
// @Summary     Attendance sheet of an activity
// @Description Creates missing Belum records, then returns one row per member with group statistics.
// @Tags        attendance
// @Produce     json
// @Param       id     path  int    true  "activity id"
// @Param       q      query string false "search"
// @Param       limit  query int    false "page size (0 = all)"
// @Param       offset query int    false "offset"
// @Success     200 {object} SheetResponse
// @Security    BearerAuth
// @Router      /activities/{id}/attendance [get]
func (h *Handler) GetSheet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sheet, err := h.svc.Sheet(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}

	rows := FilterRows(sheet.Rows(), c.Query("q"))
	limit := parseIntDefault(c.Query("limit"), 0)
	offset := parseIntDefault(c.Query("offset"), 0)

	c.JSON(http.StatusOK, SheetResponse{
		Activity: ActivityResponse{
			ID:    sheet.Activity.ID,
			Title: sheet.Activity.Title,
			Date:  sheet.Activity.Date.Format("2006-01-02"),
			Place: sheet.Activity.Place,
		},
		Rows:   paginate(rows, limit, offset),
		Total:  len(rows),
		Limit:  limit,
		Offset: offset,
		Stats:  sheet.Stats,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing status"))
		return
	}

	rec, created, err := h.svc.SetStatus(c.Request.Context(), id, memberID, req.Status)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, toRecordResponse(rec))
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}
	if err := h.svc.DeleteRecord(c.Request.Context(), id, memberID); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid "+name))
		return 0, false
	}
	return v, true
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
