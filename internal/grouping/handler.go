package grouping

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"GEMA-backend/internal/platform/auth"
)

type SaveRequest struct {
	Assignments []Assignment `json:"assignments"`
}

type ReassignRequest struct {
	No int `json:"no_grup" binding:"required"`
}

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/activities/:id/groups", h.Get)
	r.PUT("/activities/:id/groups", auth.RequirePermission(auth.ActionEdit), h.Save)
	r.PATCH("/activities/:id/groups/:member_id", auth.RequirePermission(auth.ActionEdit), h.Reassign)
	// removing a member resets attendance, so limited accounts may do it
	r.DELETE("/activities/:id/groups/:member_id", auth.RequirePermission(auth.ActionEditAttendance), h.Remove)
}

// Get godoc
// @Summary  Current grouping of an activity
// @Tags     groups
// @Produce  json
// @Param    id path int true "activity id"
// @Success  200 {object} View
// @Security BearerAuth
// @Router   /activities/{id}/groups [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	v, err := h.svc.Current(c.Request.Context(), id)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) Save(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}
	v, err := h.svc.Save(c.Request.Context(), id, req.Assignments)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) Reassign(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}
	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing no_grup"))
		return
	}
	v, err := h.svc.Reassign(c.Request.Context(), id, memberID, req.No)
	if err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) Remove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id, memberID); err != nil {
		c.JSON(toHTTPStatus(err), errorFromErr(c, err))
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid "+name))
		return 0, false
	}
	return v, true
}
