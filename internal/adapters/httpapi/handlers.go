package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/core"
)

const (
	listLimit   = 1000
	searchLimit = 10
)

type listEmailsRequest struct {
	Index string `json:"index"`
}

// handleListEmails returns the newest records of a collection, date
// descending.
func (s *Server) handleListEmails(c *gin.Context) {
	var req listEmailsRequest
	_ = c.ShouldBindJSON(&req)

	if req.Index == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'index' in request body"})
		return
	}

	emails, err := s.index.ListRecent(c.Request.Context(), req.Index, listLimit)
	if err != nil {
		s.logger.Error("Failed to list emails", zap.String("index", req.Index), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emails)
}

// handleSearch runs the fuzzy text query with an optional folder
// filter.
func (s *Server) handleSearch(c *gin.Context) {
	q := core.SearchQuery{
		Text:   c.Query("query"),
		Folder: c.Query("folder"),
		Limit:  searchLimit,
	}
	index := c.Query("index")

	emails, err := s.index.Search(c.Request.Context(), index, q)
	if err != nil {
		s.logger.Error("Search failed", zap.String("index", index), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, emails)
}

type suggestReplyRequest struct {
	EmailBody string `json:"emailBody"`
}

// handleSuggestReply drafts a reply for the incoming email body. The
// advisor never fails; generation errors degrade to a canned reply, so
// this endpoint always answers 200 once input validation passes.
func (s *Server) handleSuggestReply(c *gin.Context) {
	var req suggestReplyRequest
	_ = c.ShouldBindJSON(&req)

	if req.EmailBody == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "emailBody is required"})
		return
	}

	reply := s.advisor.SuggestReply(c.Request.Context(), req.EmailBody)
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
