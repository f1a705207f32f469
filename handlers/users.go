package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/crudusers/users-service/internal/users"
	"github.com/crudusers/users-service/pkg/logger"
	"github.com/crudusers/users-service/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// UserHandler exposes CRUD routes over the users collection.
//
// Failure statuses follow the historical contract by default: list, update
// and delete report store failures with 200 and create reports every failure
// with 400. With strict set, store failures are 500 and bad input is 400.
// A missing id is 404 in both modes.
type UserHandler struct {
	svc    *users.Service
	strict bool
}

func NewUserHandler(svc *users.Service, strict bool) *UserHandler {
	return &UserHandler{svc: svc, strict: strict}
}

// Register routes under /users
func (h *UserHandler) Register(rg *gin.RouterGroup) {
	u := rg.Group("/users")
	u.GET("", h.List)
	u.POST("", h.Create)
	u.PUT("/:id", h.Update)
	u.DELETE("/:id", h.Delete)
}

// List returns every user in store order.
func (h *UserHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		logger.Errorf("list users: %v", err)
		h.fail(c, "list", http.StatusOK, err)
		return
	}
	metrics.UserOperations.WithLabelValues("list", "ok").Inc()
	c.JSON(http.StatusOK, list)
}

// Create accepts { name, email, age } and returns the stored document.
func (h *UserHandler) Create(c *gin.Context) {
	in, err := bindInput(c)
	if err != nil {
		h.badBody(c, "create", err)
		return
	}
	u, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		logger.Warnf("create user: %v", err)
		h.fail(c, "create", http.StatusBadRequest, err)
		return
	}
	metrics.UserOperations.WithLabelValues("create", "ok").Inc()
	c.JSON(http.StatusCreated, u)
}

// Update replaces the fields for which the body carries a truthy value.
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	logger.Debugf("update user id=%s", id)
	in, err := bindInput(c)
	if err != nil {
		h.badBody(c, "update", err)
		return
	}
	u, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		logger.Warnf("update user %s: %v", id, err)
		h.fail(c, "update", http.StatusOK, err)
		return
	}
	metrics.UserOperations.WithLabelValues("update", "ok").Inc()
	c.JSON(http.StatusOK, u)
}

// Delete removes the user with the given id.
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		logger.Warnf("delete user %s: %v", id, err)
		h.fail(c, "delete", http.StatusOK, err)
		return
	}
	metrics.UserOperations.WithLabelValues("delete", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// bindInput decodes the JSON body. An empty body is treated as {}.
func bindInput(c *gin.Context) (users.Input, error) {
	var in users.Input
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, err
	}
	return in, nil
}

func (h *UserHandler) badBody(c *gin.Context, op string, err error) {
	metrics.UserOperations.WithLabelValues(op, "invalid").Inc()
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}

// fail writes {message} for err. legacy is the status used outside strict mode
// for anything that is not a missing id.
func (h *UserHandler) fail(c *gin.Context, op string, legacy int, err error) {
	status, outcome := legacy, "error"
	switch {
	case errors.Is(err, users.ErrNotFound):
		status, outcome = http.StatusNotFound, "not_found"
	case users.IsInvalid(err):
		outcome = "invalid"
		if h.strict {
			status = http.StatusBadRequest
		}
	default:
		if h.strict {
			status = http.StatusInternalServerError
		}
	}
	metrics.UserOperations.WithLabelValues(op, outcome).Inc()
	c.JSON(status, gin.H{"message": err.Error()})
}
