package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mymind/posts"
)

type CreatePostRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Category string `json:"category"`
	Photo    string `json:"photo"`
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	post, err := h.Posts.Create(c.Request.Context(), userID, posts.CreateInput{
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		Photo:    req.Photo,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "post": post})
}

// GetAllPosts serves the search/pagination query:
// GET /api/v1/get-all-post?search=...&category=...&page=N
func (h *Handler) GetAllPosts(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}

	result, err := h.Posts.Search(c.Request.Context(), c.Query("search"), c.Query("category"), page)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"posts":     result.Posts,
		"numOfPage": result.TotalPages,
	})
}

func (h *Handler) GetPost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid post ID"})
		return
	}

	post, err := h.Posts.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (h *Handler) GetMyPosts(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}

	mine, err := h.Posts.Mine(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "posts": mine})
}

type EditPostRequest struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Category *string `json:"category"`
	Photo    *string `json:"photo"`
}

func (h *Handler) EditMyPost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid post ID"})
		return
	}

	var req EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	post, err := h.Posts.Edit(c.Request.Context(), id, userID, posts.EditInput{
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		Photo:    req.Photo,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (h *Handler) DeleteMyPost(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid post ID"})
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	if err := h.Posts.Delete(c.Request.Context(), id, userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted"})
}

type CommentRequest struct {
	PostID  string `json:"postId" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

func (h *Handler) CommentPost(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid post ID"})
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	post, err := h.Posts.AddComment(c.Request.Context(), postID, userID, req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "post": post})
}

type LikeRequest struct {
	PostID string `json:"postId" binding:"required"`
}

func (h *Handler) LikePost(c *gin.Context) {
	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid post ID"})
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	post, err := h.Posts.ToggleLike(c.Request.Context(), postID, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "post": post})
}

func (h *Handler) TrendingPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	trending, err := h.Posts.Trending(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "posts": trending})
}
