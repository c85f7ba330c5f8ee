package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"task-signup/backend/internal/repositories"
	"task-signup/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserHandler struct {
	userService services.UserService
	outcomes
}

func NewUserHandler(userService services.UserService, opts Options) *UserHandler {
	return &UserHandler{userService: userService, outcomes: newOutcomes(opts)}
}

type signupRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type deleteUserRequest struct {
	Username string `json:"username" form:"username"`
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	user, err := h.userService.Signup(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		h.requestLogger(c).Info("user registered", "user_id", user.ID)
		c.String(http.StatusCreated, "New user registered")
	case errors.Is(err, repositories.ErrDuplicate):
		c.String(h.conflict, "Duplicate user found")
	case errors.Is(err, services.ErrMissingField):
		badRequest(c, "username and password are required")
	default:
		h.storeFailure(c, err, "Failed to register user")
	}
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetUsers(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "Failed to get users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// DeleteUser takes the username from the request body, falling back to the
// username query parameter.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	var req deleteUserRequest
	if c.Request.ContentLength != 0 {
		if err := bindDeleteBody(c, &req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	if req.Username == "" {
		req.Username = c.Query("username")
	}
	if strings.TrimSpace(req.Username) == "" {
		badRequest(c, "username is required")
		return
	}

	err := h.userService.DeleteUser(c.Request.Context(), req.Username)
	switch {
	case err == nil:
		c.String(http.StatusOK, "User %s has been deleted.", req.Username)
	case errors.Is(err, repositories.ErrNotFound):
		c.String(h.notFound, "User %s does not exist.", req.Username)
	default:
		h.storeFailure(c, err, "Failed to delete user")
	}
}

// bindDeleteBody reads urlencoded bodies itself because net/http only
// parses form bodies for POST, PUT and PATCH.
func bindDeleteBody(c *gin.Context, req *deleteUserRequest) error {
	if c.ContentType() != binding.MIMEPOSTForm {
		return c.ShouldBind(req)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return err
	}
	req.Username = values.Get("username")
	return nil
}
