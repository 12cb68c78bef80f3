package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github/itish2003/notechat/models"
	"github/itish2003/notechat/services"
)

// UserIDHeader carries the id of the user whose notes a request may touch.
// Authenticating that id is the job of whatever sits in front of the API.
const UserIDHeader = "X-User-ID"

// ChatController handles the HTTP requests of the notes API. It depends on
// the ChatService to perform the actual business logic.
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController.
func NewChatController(service services.ChatService) *ChatController {
	return &ChatController{
		chatService: service,
	}
}

// Chat is the Gin handler for the POST /api/v1/chat endpoint.
func (c *ChatController) Chat(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	ctx.JSON(http.StatusOK, c.chatService.Handle(ctx.Request.Context(), req.Query, userID))
}

// IngestNote is the Gin handler for the POST /api/v1/notes endpoint.
func (c *ChatController) IngestNote(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req models.IngestNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, models.IngestNoteResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	note, err := c.chatService.IngestNote(ctx.Request.Context(), userID, req)
	if errors.Is(err, services.ErrEmptyNote) {
		ctx.JSON(http.StatusBadRequest, models.IngestNoteResponse{Error: err.Error()})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, models.IngestNoteResponse{Error: "Failed to ingest note"})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestNoteResponse{Message: "Note ingested successfully", Note: note})
}

// GetAllNotes is the Gin handler for the GET /api/v1/notes endpoint.
func (c *ChatController) GetAllNotes(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	response, err := c.chatService.GetAllNotes(ctx.Request.Context(), userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notes"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

func requireUserID(ctx *gin.Context) (string, bool) {
	userID := strings.TrimSpace(ctx.GetHeader(UserIDHeader))
	if userID == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserIDHeader + " header"})
		return "", false
	}
	return userID, true
}
