package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	quotedomain "github.com/offertehq/offerte/internal/quote/domain"
	"github.com/offertehq/offerte/pkg/db/pagination"
)

type createQuoteRequest struct {
	CustomerID string                  `json:"customer_id"`
	Reference  string                  `json:"reference"`
	Notes      string                  `json:"notes"`
	ValidUntil *time.Time              `json:"valid_until"`
	Items      []quotedomain.ItemInput `json:"items"`
}

type updateQuoteRequest struct {
	Reference  *string                 `json:"reference"`
	Notes      *string                 `json:"notes"`
	ValidUntil *time.Time              `json:"valid_until"`
	Items      []quotedomain.ItemInput `json:"items"`
}

func (s *Server) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Create(c.Request.Context(), quotedomain.CreateQuoteRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Reference:  req.Reference,
		Notes:      req.Notes,
		ValidUntil: req.ValidUntil,
		Items:      req.Items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQuotes(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID  string `form:"customer_id"`
		Converted   string `form:"converted"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	converted, err := parseOptionalBool(query.Converted)
	if err != nil {
		AbortWithError(c, newValidationError("converted", "invalid_converted", "invalid converted"))
		return
	}

	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}

	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.quoteSvc.List(c.Request.Context(), quotedomain.ListQuoteRequest{
		PageToken:   query.PageToken,
		PageSize:    int32(query.PageSize),
		CustomerID:  strings.TrimSpace(query.CustomerID),
		Converted:   converted,
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetQuoteByID(c *gin.Context) {
	resp, err := s.quoteSvc.GetByID(c.Request.Context(), quotedomain.GetQuoteRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuote(c *gin.Context) {
	var req updateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Update(c.Request.Context(), quotedomain.UpdateQuoteRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		Reference:  req.Reference,
		Notes:      req.Notes,
		ValidUntil: req.ValidUntil,
		Items:      req.Items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteQuote(c *gin.Context) {
	err := s.quoteSvc.Delete(c.Request.Context(), quotedomain.GetQuoteRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ConvertQuote(c *gin.Context) {
	resp, err := s.quoteSvc.ConvertToInvoice(c.Request.Context(), quotedomain.GetQuoteRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) QuotePDF(c *gin.Context) {
	reader, err := s.quoteSvc.RenderPDF(c.Request.Context(), quotedomain.GetQuoteRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="offerte.pdf"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
