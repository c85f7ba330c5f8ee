package handlers

import (
	"errors"
	"net/http"

	"task-signup/backend/internal/repositories"
	"task-signup/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService services.TaskService
	outcomes
}

func NewTaskHandler(taskService services.TaskService, opts Options) *TaskHandler {
	return &TaskHandler{taskService: taskService, outcomes: newOutcomes(opts)}
}

type createTaskRequest struct {
	Name   string `json:"name" form:"name" binding:"required"`
	Status string `json:"status" form:"status"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "name is required")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), req.Name, req.Status)
	switch {
	case err == nil:
		h.requestLogger(c).Info("task created", "task_id", task.ID)
		c.String(http.StatusCreated, "New task created")
	case errors.Is(err, repositories.ErrDuplicate):
		c.String(h.conflict, "Duplicate task found")
	case errors.Is(err, services.ErrMissingField):
		badRequest(c, "name is required")
	default:
		h.storeFailure(c, err, "Failed to create task")
	}
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	tasks, err := h.taskService.GetTasks(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "Failed to get tasks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}
