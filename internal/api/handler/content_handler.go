package handler

import (
	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/service"
	"okulpazar/backend/pkg/response"
)

// ContentHandler posts, reactions and comments
type ContentHandler struct {
	contentSvc service.ContentService
}

// NewContentHandler creates a ContentHandler
func NewContentHandler(contentSvc service.ContentService) *ContentHandler {
	return &ContentHandler{contentSvc: contentSvc}
}

// CreatePost POST /api/v1/posts
func (h *ContentHandler) CreatePost(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	post, err := h.contentSvc.CreatePost(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, post)
}

// GetPost GET /api/v1/public/posts/:id
// Anonymous callers only see published posts.
func (h *ContentHandler) GetPost(c *gin.Context) {
	post, err := h.contentSvc.GetPost(c.Request.Context(), c.Param("id"), OptionalActor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, post)
}

// PublishPost POST /api/v1/posts/:id/publish
func (h *ContentHandler) PublishPost(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	post, err := h.contentSvc.PublishPost(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, post)
}

// IncrementView POST /api/v1/public/posts/:id/view
func (h *ContentHandler) IncrementView(c *gin.Context) {
	if err := h.contentSvc.IncrementPostView(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// ToggleLike POST /api/v1/posts/:id/like
func (h *ContentHandler) ToggleLike(c *gin.Context) {
	var req dto.ToggleLikeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.contentSvc.TogglePostLike(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// AddComment POST /api/v1/posts/:id/comments
func (h *ContentHandler) AddComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	comment, err := h.contentSvc.AddComment(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, comment)
}
