package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
)

// statusFor maps an application error to an HTTP status
func statusFor(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case errors.ErrorTypeNotFound, errors.ErrorTypeEmpty:
		return http.StatusNotFound
	case errors.ErrorTypeTimeConflict:
		return http.StatusConflict
	case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrorTypeDanglingReference:
		return http.StatusUnprocessableEntity
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrorTypeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError || errors.ShouldLogError(err) {
		s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{
		"error": errors.GetUserMessage(err),
		"code":  errors.GetErrorCode(err),
	})
}

func pathID(c *gin.Context) (domain.ID, error) {
	raw := c.Param("id")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.NewInvalidInputError("id", raw, "must be a positive integer")
	}
	return domain.ID(n), nil
}

func bind[T any](c *gin.Context) (T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, errors.NewInvalidInputError("body", "", "invalid JSON: "+err.Error())
	}
	return req, nil
}

// withID parses the :id parameter and hands it to fn
func (s *Server) withID(c *gin.Context, fn func(id domain.ID) (any, int, error)) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	body, status, err := fn(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, status, body)
}

func (s *Server) respond(c *gin.Context, status int, body any) {
	if body == nil {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}

func (s *Server) result(c *gin.Context, status int, body any, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, status, body)
}

// ========== Tasks ==========

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.api.ListTasks(c.Request.Context())
	s.result(c, http.StatusOK, tasks, err)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	req, err := bind[api.TaskRequest](c)
	if err != nil {
		s.fail(c, err)
		return
	}
	task, err := s.api.CreateTask(c.Request.Context(), req)
	s.result(c, http.StatusCreated, task, err)
}

func (s *Server) handleGetTask(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		task, err := s.api.GetTask(c.Request.Context(), id)
		return task, http.StatusOK, err
	})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		req, err := bind[api.TaskRequest](c)
		if err != nil {
			return nil, 0, err
		}
		task, err := s.api.UpdateTask(c.Request.Context(), id, req)
		return task, http.StatusOK, err
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		return nil, http.StatusNoContent, s.api.DeleteTask(c.Request.Context(), id)
	})
}

func (s *Server) handleDeleteAllTasks(c *gin.Context) {
	s.result(c, http.StatusNoContent, nil, s.api.DeleteAllTasks(c.Request.Context()))
}

// ========== Epics ==========

func (s *Server) handleListEpics(c *gin.Context) {
	epics, err := s.api.ListEpics(c.Request.Context())
	s.result(c, http.StatusOK, epics, err)
}

func (s *Server) handleCreateEpic(c *gin.Context) {
	req, err := bind[api.EpicRequest](c)
	if err != nil {
		s.fail(c, err)
		return
	}
	epic, err := s.api.CreateEpic(c.Request.Context(), req)
	s.result(c, http.StatusCreated, epic, err)
}

func (s *Server) handleGetEpic(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		epic, err := s.api.GetEpic(c.Request.Context(), id)
		return epic, http.StatusOK, err
	})
}

func (s *Server) handleUpdateEpic(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		req, err := bind[api.EpicRequest](c)
		if err != nil {
			return nil, 0, err
		}
		epic, err := s.api.UpdateEpic(c.Request.Context(), id, req)
		return epic, http.StatusOK, err
	})
}

func (s *Server) handleDeleteEpic(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		return nil, http.StatusNoContent, s.api.DeleteEpic(c.Request.Context(), id)
	})
}

func (s *Server) handleDeleteAllEpics(c *gin.Context) {
	s.result(c, http.StatusNoContent, nil, s.api.DeleteAllEpics(c.Request.Context()))
}

// ========== Subtasks ==========

func (s *Server) handleListSubtasks(c *gin.Context) {
	subs, err := s.api.ListSubtasks(c.Request.Context())
	s.result(c, http.StatusOK, subs, err)
}

func (s *Server) handleCreateSubtask(c *gin.Context) {
	req, err := bind[api.SubtaskRequest](c)
	if err != nil {
		s.fail(c, err)
		return
	}
	sub, err := s.api.CreateSubtask(c.Request.Context(), req)
	s.result(c, http.StatusCreated, sub, err)
}

func (s *Server) handleGetSubtask(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		sub, err := s.api.GetSubtask(c.Request.Context(), id)
		return sub, http.StatusOK, err
	})
}

func (s *Server) handleUpdateSubtask(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		req, err := bind[api.SubtaskRequest](c)
		if err != nil {
			return nil, 0, err
		}
		sub, err := s.api.UpdateSubtask(c.Request.Context(), id, req)
		return sub, http.StatusOK, err
	})
}

func (s *Server) handleDeleteSubtask(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		return nil, http.StatusNoContent, s.api.DeleteSubtask(c.Request.Context(), id)
	})
}

func (s *Server) handleDeleteAllSubtasks(c *gin.Context) {
	s.result(c, http.StatusNoContent, nil, s.api.DeleteAllSubtasks(c.Request.Context()))
}

func (s *Server) handleEpicSubtasks(c *gin.Context) {
	s.withID(c, func(id domain.ID) (any, int, error) {
		subs, err := s.api.EpicSubtasks(c.Request.Context(), id)
		return subs, http.StatusOK, err
	})
}

// ========== Views ==========

func (s *Server) handleHistory(c *gin.Context) {
	items, err := s.api.History(c.Request.Context())
	s.result(c, http.StatusOK, items, err)
}

func (s *Server) handlePriorities(c *gin.Context) {
	items, err := s.api.Prioritized(c.Request.Context())
	s.result(c, http.StatusOK, items, err)
}

func (s *Server) handleUpcoming(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		s.fail(c, errors.NewInvalidInputError("limit", c.Query("limit"), "must be a non-negative integer"))
		return
	}
	items, err := s.api.Upcoming(c.Request.Context(), limit)
	s.result(c, http.StatusOK, items, err)
}

func (s *Server) handleFreeSlots(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		s.fail(c, errors.NewInvalidInputError("from", c.Query("from"), "must be an RFC3339 time"))
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		s.fail(c, errors.NewInvalidInputError("to", c.Query("to"), "must be an RFC3339 time"))
		return
	}
	slots, err := s.api.FreeSlots(c.Request.Context(), from, to)
	s.result(c, http.StatusOK, slots, err)
}

func (s *Server) handleSummary(c *gin.Context) {
	summary, err := s.api.Summary(c.Request.Context())
	s.result(c, http.StatusOK, summary, err)
}

func (s *Server) handleDeleteEverything(c *gin.Context) {
	s.result(c, http.StatusNoContent, nil, s.api.DeleteEverything(c.Request.Context()))
}
