// Generation HTTP handler.
//
// One call generates and persists N codes under a new generation request.
// The call is synchronous: it returns when every chunk has been persisted or
// has failed, which for large N can take minutes.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-code-generator/internal/http/middleware"
	"github.com/tbourn/go-code-generator/internal/services"
)

var msgPrinter = message.NewPrinter(language.English)

// parseNumber validates the number query parameter: a whole number in
// [1, max]. The returned string is a client-facing message on failure.
func parseNumber(raw string, max int64) (int64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "number is required"
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
			return 0, msgPrinter.Sprintf("number exceeds maximum allowed limit of %d codes", max)
		}
		return 0, "number should be a whole number"
	}
	if n <= 0 {
		return 0, "number should be greater than 0"
	}
	if n > max {
		return 0, msgPrinter.Sprintf("number exceeds maximum allowed limit of %d codes", max)
	}
	return n, ""
}

// GenerateCodes godoc
// @ID          generateCodes
// @Summary     Generate unique codes
// @Description Generates and persists `number` unique 7-character base-62 codes under a new generation request and returns the request record.
// @Description With an Idempotency-Key header a retried call returns the original request (200, Idempotency-Replayed: true) instead of generating again.
// @Tags        Codes
// @Produce     json
//
// @Param       number           query   int     true  "Number of codes to generate"  minimum(1) example(25)
// @Param       Idempotency-Key  header  string  false "Idempotency key"              example(gen-2024-01-01-a)
// @Param       X-Client-ID      header  string  false "Caller identity for idempotency and rate limiting"
//
// @Success     201  {object}  domain.GenerationRequest
// @Success     200  {object}  domain.GenerationRequest  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid number"
// @Failure     409  {object}  handlers.ErrorResponse  "Code space exhausted"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.GenerationFailedResponse  "Codes not persisted"
// @Failure     504  {object}  handlers.ErrorResponse  "Timed out before the request was opened"
// @Router      /codes/generate [post]
// @Router      /codes/generate [get]
func (h *Handlers) GenerateCodes(c *gin.Context) {
	n, msg := parseNumber(c.Query("number"), h.opts.MaxCodesPerRequest)
	if msg != "" {
		fail(c, http.StatusBadRequest, ErrCodeInvalidNumber, msg)
		return
	}

	ctx := c.Request.Context()
	client := middleware.ClientID(c)
	idemKey, _ := middleware.GetIdempotencyKey(c)

	// Replay path.
	if idemKey != "" && h.idem != nil {
		if h.replay(c, client, idemKey) {
			return
		}
	}

	if h.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.RequestTimeout)
		defer cancel()
	}

	req, err := h.gen.GenerateCodes(ctx, n)
	if err != nil {
		var gerr *services.GenerationError
		switch {
		case errors.As(err, &gerr):
			failWith(c, http.StatusInternalServerError, GenerationFailedResponse{
				ErrorResponse: ErrorResponse{
					Code:    ErrCodeGenerationFailed,
					Message: msgPrinter.Sprintf("%d of %d codes not persisted", gerr.NotPersisted, gerr.Requested),
				},
				Request:       req,
				NotPersisted:  gerr.NotPersisted,
				FailedBatches: len(gerr.Failures),
			})
			middleware.LoggerFrom(c).Warn().Err(err).Msg("generation incomplete")
		case errors.Is(err, services.ErrInvalidCount):
			fail(c, http.StatusBadRequest, ErrCodeInvalidNumber, err.Error())
		case errors.Is(err, services.ErrSequenceExhausted):
			fail(c, http.StatusConflict, ErrCodeExhausted, "not enough unused codes left for this request")
		case errors.Is(err, context.DeadlineExceeded):
			fail(c, http.StatusGatewayTimeout, ErrCodeTimeout, "generation timed out")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeGenerationFailed, err.Error())
		}
		return
	}

	// Store path, best effort: the codes are already committed.
	if idemKey != "" && h.idem != nil {
		if err := h.idem.Remember(context.WithoutCancel(ctx), client, idemKey, req.ID); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("idempotency_key", idemKey).Msg("idempotency store failed")
		}
	}

	status := http.StatusCreated
	if c.Request.Method == http.MethodGet {
		// Legacy GET callers expect 200.
		status = http.StatusOK
	}
	ok(c, status, req)
}

// replay serves a stored request for (client, key). It reports whether a
// response was written.
func (h *Handlers) replay(c *gin.Context, client, key string) bool {
	ctx := c.Request.Context()
	id, found, err := h.idem.Lookup(ctx, client, key, time.Now().UTC())
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		return false
	}
	if !found {
		return false
	}
	prev, err := h.reqs.Get(ctx, id)
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Uint64("generation_request_id", id).Msg("idempotent replay target missing")
		return false
	}
	c.Header(middleware.HeaderIdempotencyReplayed, "true")
	ok(c, http.StatusOK, prev)
	return true
}
