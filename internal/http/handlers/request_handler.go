// Generation request HTTP handlers (read side).
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-code-generator/internal/domain"
	"github.com/tbourn/go-code-generator/internal/services"
)

// ListRequestsResponse wraps a page of generation requests.
type ListRequestsResponse struct {
	Requests   []domain.GenerationRequest `json:"generation_requests"`
	Pagination Pagination                 `json:"pagination"`
}

// ListCodesResponse wraps a page of codes belonging to one request.
type ListCodesResponse struct {
	RequestID  uint64                 `json:"generation_request_id"`
	Codes      []domain.GeneratedCode `json:"codes"`
	Pagination Pagination             `json:"pagination"`
}

// requestID parses the :id path parameter.
func requestID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "generation request id must be a positive integer")
		return 0, false
	}
	return id, true
}

// ListRequests godoc
// @ID          listGenerationRequests
// @Summary     List generation requests (paginated)
// @Description Returns generation requests, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        GenerationRequests
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"requests:3:1700000000\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListRequestsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /generation-requests [get]
func (h *Handlers) ListRequests(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.reqs.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"requests:%d:%d:%d:%d"`, count, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.reqs.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListRequestsResponse{
		Requests:   items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// ListAllRequests godoc
// @ID          listAllGenerationRequests
// @Summary     List generation requests (legacy)
// @Description Returns the first page of generation requests as a bare array, newest first.
// @Tags        GenerationRequests
// @Produce     json
// @Param       page_size  query  int  false "Items to return"  minimum(1) maximum(100) default(100)
// @Success     200  {array}  domain.GenerationRequest
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /generationRequests [get]
func (h *Handlers) ListAllRequests(c *gin.Context) {
	pageSize := 100
	if c.Query("page_size") != "" {
		_, pageSize = clampPagination(c)
	}
	items, _, err := h.reqs.ListPage(c.Request.Context(), 1, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetRequest godoc
// @ID          getGenerationRequest
// @Summary     Get a generation request
// @Tags        GenerationRequests
// @Produce     json
// @Param       id   path  int  true  "Generation request ID"  minimum(1)
// @Success     200  {object} domain.GenerationRequest
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /generation-requests/{id} [get]
func (h *Handlers) GetRequest(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	req, err := h.reqs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "generation request not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, req)
}

// ListCodes godoc
// @ID          listGenerationRequestCodes
// @Summary     List codes of a generation request
// @Description Returns a page of the codes a request persisted, in sequence order.
// @Tags        GenerationRequests
// @Produce     json
// @Param       id         path   int  true  "Generation request ID"  minimum(1)
// @Param       page       query  int  false "Page number"            minimum(1) default(1)
// @Param       page_size  query  int  false "Items per page"         minimum(1) maximum(100) default(20)
// @Success     200  {object} handlers.ListCodesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /generation-requests/{id}/codes [get]
func (h *Handlers) ListCodes(c *gin.Context) {
	id, valid := requestID(c)
	if !valid {
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.reqs.CodesPage(c.Request.Context(), id, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "generation request not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListCodesResponse{
		RequestID:  id,
		Codes:      items,
		Pagination: newPagination(page, pageSize, total),
	})
}
