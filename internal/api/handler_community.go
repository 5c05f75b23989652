package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agrilink-backend/internal/model"
	"agrilink-backend/internal/mw"
)

type createPostReq struct {
	Title string `json:"title"`
	Body  string `json:"body" binding:"required"`
}

// CreateCommunityPost handles POST /api/communities/:id/posts. The post is
// persisted and then broadcast to the community's room.
func (h *Handler) CreateCommunityPost(c *gin.Context) {
	userID := mw.MustUserID(c)

	communityID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid community ID"})
		return
	}
	communityID := uint(communityID64)

	var req createPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := model.CommunityPost{
		CommunityID: communityID,
		AuthorID:    userID,
		Title:       req.Title,
		Body:        req.Body,
	}

	if err := h.store.CreateCommunityPost(c.Request.Context(), &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}

	h.gateway.SendToCommunity(communityID, post)

	c.JSON(http.StatusCreated, gin.H{"data": post})
}

// ListCommunityPosts handles GET /api/communities/:id/posts.
func (h *Handler) ListCommunityPosts(c *gin.Context) {
	communityID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid community ID"})
		return
	}

	limit := 30
	if v := c.Query("limit"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x > 0 && x <= 200 {
			limit = x
		}
	}

	posts, err := h.store.CommunityPosts(c.Request.Context(), uint(communityID64), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": posts})
}
