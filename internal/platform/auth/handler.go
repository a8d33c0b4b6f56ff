package auth

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc AuthService }

// RegisterRoutes mounts /login on public and everything else on private,
// which must already carry RequireAuth.
func RegisterRoutes(public, private gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	public.POST("/login", h.Login)

	private.POST("/logout", h.Logout)
	private.GET("/session", h.Session)

	admin := RequirePermission(ActionEdit)
	private.POST("/accounts", admin, h.Register)
	private.DELETE("/accounts/:username", RequirePermission(ActionDelete), h.DeleteAccount)
	private.PATCH("/accounts/:username", admin, h.ChangeUsername)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionResponse struct {
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	LoginTime    time.Time `json:"login_time"`
	RemainingMs  int64     `json:"remaining_ms"`
	ExpiringSoon bool      `json:"expiring_soon"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   SessionResponse `json:"session"`
}

func errBody(code, msg string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": msg}}
}

// Login godoc
// @Summary  Log in with username and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} LoginResponse
// @Failure  401 {object} map[string]any
// @Router   /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("INVALID_ARGUMENT", "invalid request"))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, ErrAuthFailed) {
			log.Printf("[ERROR] login: %v", err)
		}
		c.JSON(http.StatusUnauthorized, errBody("UNAUTHENTICATED", "wrong username or password"))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		Session: SessionResponse{
			Username:    res.Session.Username,
			Role:        res.Session.Role,
			LoginTime:   res.Session.LoggedInAt(),
			RemainingMs: h.svc.SessionDuration().Milliseconds(),
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	GateFrom(c).Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Session(c *gin.Context) {
	ctx := c.Request.Context()
	g := GateFrom(c)
	u := g.CurrentUser(ctx)
	if u == nil {
		c.JSON(http.StatusUnauthorized, errBody("UNAUTHENTICATED", "session expired"))
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		Username:     u.Username,
		Role:         u.Role,
		LoginTime:    u.LoggedInAt(),
		RemainingMs:  g.RemainingSessionTime(ctx).Milliseconds(),
		ExpiringSoon: g.IsSessionExpiringSoon(ctx),
	})
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     *Role  `json:"role,omitempty"` // defaults to admin
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("INVALID_ARGUMENT", "invalid request"))
		return
	}

	var role Role
	if req.Role != nil {
		role = *req.Role
	}

	if err := h.svc.Register(c.Request.Context(), req.Username, req.Password, role); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, errBody("CONFLICT", "username already exists"))
		case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidInput):
			c.JSON(http.StatusBadRequest, errBody("INVALID_ARGUMENT", err.Error()))
		default:
			log.Printf("[ERROR] register: %v", err)
			c.JSON(http.StatusInternalServerError, errBody("INTERNAL", "register failed"))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	username := c.Param("username")

	if err := h.svc.Delete(c.Request.Context(), username); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, errBody("NOT_FOUND", "account not found"))
			return
		}
		log.Printf("[ERROR] delete account: %v", err)
		c.JSON(http.StatusInternalServerError, errBody("INTERNAL", "delete failed"))
		return
	}

	c.Status(http.StatusNoContent)
}

type ChangeUsernameRequest struct {
	NewUsername string `json:"new_username" binding:"required"`
}

func (h *AuthHandler) ChangeUsername(c *gin.Context) {
	oldName := c.Param("username")

	var req ChangeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errBody("INVALID_ARGUMENT", "invalid request"))
		return
	}

	if err := h.svc.ChangeUsername(c.Request.Context(), oldName, req.NewUsername); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, errBody("NOT_FOUND", "account not found"))
		case errors.Is(err, ErrAlreadyExists):
			c.JSON(http.StatusConflict, errBody("CONFLICT", "new username already exists"))
		case errors.Is(err, ErrInvalidInput):
			c.JSON(http.StatusBadRequest, errBody("INVALID_ARGUMENT", err.Error()))
		default:
			log.Printf("[ERROR] change username: %v", err)
			c.JSON(http.StatusInternalServerError, errBody("INTERNAL", "change username failed"))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "username changed"})
}
