package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"sonanta/internal/auth"
	"sonanta/internal/service"
	"sonanta/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uploadVoiceMemo handles POST /api/v1/voice-memos
func (h *Handler) uploadVoiceMemo(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "missing user identity")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "file is required")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("[Upload] Failed to open uploaded file: %v", err)
		utils.Error(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[Upload] Failed to read uploaded file: %v", err)
		utils.Error(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	var title *string
	if t := c.PostForm("title"); t != "" {
		title = &t
	}

	memo, err := h.memos.Upload(c.Request.Context(), userID, content, fileHeader.Filename, contentType, title)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContentType) {
			utils.Error(c, http.StatusBadRequest,
				"invalid file type, allowed types: "+strings.Join(service.AllowedContentTypes(), ", "))
			return
		}
		log.Printf("[Upload] Error uploading voice memo: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to upload voice memo")
		return
	}

	utils.Success(c, gin.H{"voice_memo": memo})
}

// getVoiceMemo handles GET /api/v1/voice-memos/:id
func (h *Handler) getVoiceMemo(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "missing user identity")
		return
	}

	memoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id format")
		return
	}

	memo, err := h.memos.Get(c.Request.Context(), memoID, userID)
	if err != nil {
		log.Printf("[Memo] Error getting voice memo: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to retrieve voice memo")
		return
	}
	if memo == nil {
		utils.Error(c, http.StatusNotFound, "voice memo not found")
		return
	}

	utils.Success(c, gin.H{"voice_memo": memo})
}

// listVoiceMemos handles GET /api/v1/voice-memos
func (h *Handler) listVoiceMemos(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "missing user identity")
		return
	}

	limit, offset := parsePagination(c, 20)

	// Comma-separated tag filter
	var tags []string
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	memos, err := h.memos.List(c.Request.Context(), userID, limit, offset, tags)
	if err != nil {
		log.Printf("[Memo] Error listing voice memos: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to list voice memos")
		return
	}

	utils.Success(c, gin.H{
		"voice_memos": memos,
		"limit":       limit,
		"offset":      offset,
		"count":       len(memos),
	})
}

// deleteVoiceMemo handles DELETE /api/v1/voice-memos/:id
func (h *Handler) deleteVoiceMemo(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		utils.Error(c, http.StatusUnauthorized, "missing user identity")
		return
	}

	memoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid id format")
		return
	}

	deleted, err := h.memos.Delete(c.Request.Context(), memoID, userID)
	if err != nil {
		log.Printf("[Memo] Error deleting voice memo: %v", err)
		utils.Error(c, http.StatusInternalServerError, "failed to delete voice memo")
		return
	}
	if !deleted {
		utils.Error(c, http.StatusNotFound, "voice memo not found")
		return
	}

	utils.Success(c, gin.H{"deleted": true})
}

// parsePagination reads limit/offset query parameters with defaults
// and a hard cap on limit.
func parsePagination(c *gin.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
