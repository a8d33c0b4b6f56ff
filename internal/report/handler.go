package report

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/reports/summary", h.Summary)
	r.GET("/reports/activities/:id/attendance.xlsx", h.AttendanceXLSX)
	r.GET("/reports/activities/:id/groups.xlsx", h.GroupsXLSX)
}

// Summary godoc
// @Summary  Dashboard member totals
// @Tags     reports
// @Produce  json
// @Success  200 {object} Summary
// @Security BearerAuth
// @Router   /reports/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	res, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) AttendanceXLSX(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	f, err := h.svc.AttendanceXLSX(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	sendWorkbook(c, f, fmt.Sprintf("absensi-kegiatan-%d.xlsx", id))
}

func (h *Handler) GroupsXLSX(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	f, err := h.svc.GroupsXLSX(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	sendWorkbook(c, f, fmt.Sprintf("grup-kegiatan-%d.xlsx", id))
}

func sendWorkbook(c *gin.Context, f *excelize.File, filename string) {
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Printf("[ERROR] render %s: %v", filename, err)
		c.JSON(http.StatusInternalServerError, errorBody(CodeInternal, "failed to render workbook"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, ContentTypeXLSX, buf.Bytes())
}

func parseIDParam(c *gin.Context) (int64, bool) {
	v, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid id"))
		return 0, false
	}
	return v, true
}
