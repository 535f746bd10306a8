package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AD-em/orphan-database/internal/session"
)

// RegisterRoutes mounts authentication endpoints under /auth.
func RegisterRoutes(router *gin.RouterGroup, service *Service, codec session.CookieCodec, authn *session.Authenticator) {
	handler := &httpHandler{service: service, codec: codec, authn: authn}
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handler.register)
		authGroup.POST("/login", handler.login)
		authGroup.POST("/logout", handler.logout)
		authGroup.GET("/me", handler.me)
	}
}

type httpHandler struct {
	service *Service
	codec   session.CookieCodec
	authn   *session.Authenticator
}

type registerRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName *string    `json:"display_name,omitempty"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func (h *httpHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Register(c.Request.Context(), RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch err {
		case ErrEmailAlreadyExists:
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case ErrInvalidCredentials:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		}
		return
	}

	http.SetCookie(c.Writer, h.codec.Encode(result.SessionID))
	c.JSON(http.StatusCreated, gin.H{"user": marshalUser(result.User)})
}

func (h *httpHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Login(c.Request.Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		}
		return
	}

	http.SetCookie(c.Writer, h.codec.Encode(result.SessionID))
	c.JSON(http.StatusOK, gin.H{"user": marshalUser(result.User)})
}

func (h *httpHandler) logout(c *gin.Context) {
	if sid, ok := h.codec.Decode(c.Request); ok {
		if err := h.service.Logout(c.Request.Context(), sid); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
			return
		}
	}

	http.SetCookie(c.Writer, h.codec.Expire())
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) me(c *gin.Context) {
	identity, ok, err := h.authn.Authenticate(c.Request.Context(), c.Request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve session"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), identity.UserID)
	if err != nil {
		switch err {
		case ErrUserNotFound:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": marshalUser(user)})
}

func marshalUser(user User) userResponse {
	resp := userResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
	}
	if !user.CreatedAt.IsZero() {
		created := user.CreatedAt.UTC()
		resp.CreatedAt = &created
	}
	return resp
}
