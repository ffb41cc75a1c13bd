package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mymind/posts"
	"mymind/users"
)

// Handler is the thin request layer in front of the post engine.
type Handler struct {
	Posts     *posts.Service
	Users     *users.Store
	JWTSecret string
}

func New(postSvc *posts.Service, userStore *users.Store, jwtSecret string) *Handler {
	return &Handler{Posts: postSvc, Users: userStore, JWTSecret: jwtSecret}
}

// requesterID reads the user id the auth middleware stored in the context.
func requesterID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeError maps engine error kinds to HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, posts.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, posts.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, posts.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, posts.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, posts.ErrUpstream):
		status = http.StatusBadGateway
	default:
		log.Printf("unexpected handler error: %v", err)
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
