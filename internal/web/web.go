// Package web serves the planner and the stored task list as JSON over HTTP.
package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Joseda-hg/codeplanner/internal/codelang"
	"github.com/Joseda-hg/codeplanner/internal/model"
	"github.com/Joseda-hg/codeplanner/internal/planner"
	"github.com/Joseda-hg/codeplanner/internal/store"
)

const msgInvalidBody = "Invalid request body"

type Server struct {
	planner *planner.Service
	store   *store.Store
	logger  zerolog.Logger
}

func NewServer(svc *planner.Service, st *store.Store, logger zerolog.Logger) *Server {
	return &Server{planner: svc, store: st, logger: logger}
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(requestLogger(s.logger), gin.Recovery())

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/openai/generate", s.generate)
		api.POST("/openai/update-tasks", s.updateTasks)

		api.GET("/tasks", s.listTasks)
		api.PUT("/tasks", s.replaceTasks)
		api.GET("/tasks/:id", s.getTask)
		api.POST("/tasks/:id/toggle", s.toggleTask)
		api.PATCH("/tasks/:id", s.editTask)
		api.DELETE("/tasks/:id", s.deleteTask)
	}
	return r
}

type generateRequest struct {
	// Prompt is left untyped so a non-string value reports the prompt
	// validation message rather than a decoding error.
	Prompt any `json:"prompt"`
}

type updateRequest struct {
	ExistingTasks    model.TaskList `json:"existingTasks"`
	CompletedTaskIDs []string       `json:"completedTaskIds"`
	Requirements     string         `json:"requirements"`
}

type replaceRequest struct {
	Tasks model.TaskList `json:"tasks"`
}

type editRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type listResponse struct {
	Tasks    model.TaskList `json:"tasks"`
	Total    int            `json:"total"`
	Progress int            `json:"progress"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	prompt, _ := req.Prompt.(string)
	tasks, err := s.planner.Generate(c.Request.Context(), prompt)
	if err != nil {
		s.writePlannerError(c, "generate", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) updateTasks(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	result, err := s.planner.Update(c.Request.Context(), req.ExistingTasks, req.CompletedTaskIDs, req.Requirements)
	if err != nil {
		s.writePlannerError(c, "update", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": result.Message, "tasks": result.Tasks})
}

func (s *Server) listTasks(c *gin.Context) {
	tasks := s.store.Load(c.Request.Context())
	filter := model.Filter{
		Query:  strings.TrimSpace(c.Query("q")),
		Status: model.NormalizeStatus(c.Query("status")),
		Sort:   model.NormalizeSort(c.Query("sort")),
	}

	c.JSON(http.StatusOK, listResponse{
		Tasks:    tasks.Apply(filter),
		Total:    len(tasks),
		Progress: tasks.Progress(),
	})
}

func (s *Server) replaceTasks(c *gin.Context) {
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.Tasks == nil {
		writeError(c, http.StatusBadRequest, "tasks is required")
		return
	}
	if err := req.Tasks.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": s.store.Replace(c.Request.Context(), req.Tasks)})
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":     task,
		"language": codelang.Detect("", task.CodeSnippet),
	})
}

func (s *Server) toggleTask(c *gin.Context) {
	tasks, err := s.store.ToggleCompleted(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) editTask(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	var description string
	if req.Description != nil {
		description = *req.Description
	} else {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			s.writeStoreError(c, err)
			return
		}
		description = current.Description
	}

	tasks, err := s.store.Edit(ctx, id, req.Title, description)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) deleteTask(c *gin.Context) {
	tasks, err := s.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Server) writePlannerError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, planner.ErrBusy):
		writeError(c, http.StatusConflict, err.Error())
	case planner.IsValidation(err):
		writeError(c, http.StatusBadRequest, err.Error())
	case planner.IsConfiguration(err):
		s.logger.Error().Err(err).Str("op", op).Msg("upstream credential missing")
		writeError(c, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error().Err(err).Str("op", op).Msg("planner request failed")
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrTaskNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidTitle):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, err.Error())
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
