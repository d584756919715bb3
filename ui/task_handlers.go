package ui

import (
	"net/http"

	"gotasks/domain/core"
	"gotasks/domain/task"
	"gotasks/internal/errors"
	"gotasks/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// taskDetail is a task with its description rendered from markdown
type taskDetail struct {
	*task.Task
	DescriptionHTML string `json:"descriptionHtml,omitempty"`
}

// deletePayload selects tasks for bulk deletion
type deletePayload struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
	All    bool     `json:"all"`
}

// renderMarkdown converts a description to HTML. Raw HTML in the source is
// dropped, and links with unsafe schemes such as javascript: are not linked.
func renderMarkdown(source string) string {
	if source == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	flags := html.CommonFlags | html.SkipHTML | html.Safelink | html.NofollowLinks | html.NoreferrerLinks
	renderer := html.NewRenderer(html.RendererOptions{Flags: flags})
	return string(markdown.ToHTML([]byte(source), p, renderer))
}

func (s *Server) handleListTasks(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var filter task.Filter
	if raw := c.Query("status"); raw != "" {
		status, ok := task.ParseStatus(raw)
		if !ok {
			s.respondError(c, errors.InvalidInput("unknown status "+raw))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("categoryId"); raw != "" {
		categoryID := core.CategoryID(raw)
		filter.CategoryID = &categoryID
	}

	tasks, err := s.tasks.List(c.Request.Context(), userID, filter)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tasks, "count": len(tasks)})
}

func (s *Server) handleGetTask(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	id, err := core.ParseTaskID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}

	t, err := s.tasks.Get(c.Request.Context(), userID, id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	detail := taskDetail{Task: t}
	if t.Description != nil {
		detail.DescriptionHTML = renderMarkdown(*t.Description)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var draft task.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		s.respondError(c, errors.InvalidInput("invalid task payload: "+err.Error()))
		return
	}

	created, err := s.tasks.Create(c.Request.Context(), userID, &draft)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

func (s *Server) handleDeleteTasks(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var payload deletePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.respondError(c, errors.InvalidInput("invalid delete payload: "+err.Error()))
		return
	}

	selector := task.DeleteSelector{All: payload.All}
	for _, raw := range payload.IDs {
		id, err := core.ParseTaskID(raw)
		if err != nil {
			s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
			return
		}
		selector.IDs = append(selector.IDs, id)
	}
	if payload.Status != "" {
		status, ok := task.ParseStatus(payload.Status)
		if !ok {
			s.respondError(c, errors.InvalidInput("unknown status "+payload.Status))
			return
		}
		selector.Status = &status
	}

	deleted, err := s.tasks.Delete(c.Request.Context(), userID, selector)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}
