// Message endpoints:
//   - POST /conversations/{id}/messages  (send a message, get the tutor's reply)
//   - GET  /conversations/{id}/messages  (history, paginated, ETag)
//
// A POST carrying an Idempotency-Key that already completed is answered
// from the stored reply with `Idempotency-Replayed: true`; the tutor is
// not asked again.
package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
)

// PostMessageRequest carries the student's message.
type PostMessageRequest struct {
	Content string `json:"content" binding:"required" example:"Como somo frações com denominadores diferentes?"`
}

// PostMessageResponse returns the tutor's reply.
type PostMessageResponse struct {
	Message *domain.Message `json:"message"`
	// UserMessage is omitted on idempotent replays.
	UserMessage *domain.Message `json:"user_message,omitempty"`
	// Retrieved reports whether knowledge base content was used.
	Retrieved bool `json:"retrieved"`
}

// ListMessagesResponse wraps a page of messages, oldest first.
type ListMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes line endings, collapses runs of blank lines
// to one and trims.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a message to the tutor
// @Description Stores the student's message, asks the tutor and stores the reply. The first message of a
// @Description conversation also names it in the background.
// @Description Supports idempotent retries via the Idempotency-Key header.
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  string  true   "Student id"                   example(aluno-42)
// @Param       Idempotency-Key  header  string  false  "Key for safe retries"
// @Param       id               path    string  true   "Conversation id"              format(uuid)
// @Param       body             body    handlers.PostMessageRequest  true  "Message"
// @Success     200  {object}  handlers.PostMessageResponse
// @Header      200  {string}  Idempotency-Replayed  "true when answered from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Mode not on the student's plan"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     502  {object}  handlers.ErrorResponse  "Tutor unavailable"
// @Failure     504  {object}  handlers.ErrorResponse  "Tutor timed out"
// @Router      /conversations/{id}/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()
	convID, valid := conversationID(c)
	if !valid {
		return
	}
	uid := userID(c)

	if msgID, replay := middleware.ReplayMessageID(c); replay {
		prev, err := h.msgSvc.GetForUser(ctx, uid, msgID)
		if err == nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, PostMessageResponse{Message: prev})
			return
		}
		middleware.LoggerFrom(c).Warn().Err(err).Str("message_id", msgID).Msg("idempotent replay failed; answering again")
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	res, err := h.msgSvc.Send(ctx, uid, convID, sanitizeContent(req.Content))
	if err != nil {
		failErr(c, err)
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has && h.idem != nil {
		if err := h.idem.Remember(ctx, uid, convID, key, res.Reply.ID); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency record")
		}
	}

	ok(c, http.StatusOK, PostMessageResponse{
		Message:     res.Reply,
		UserMessage: res.UserMessage,
		Retrieved:   res.Retrieved,
	})
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages of a conversation
// @Tags        Messages
// @Produce     json
// @Param       X-User-ID      header  string  true   "Student id"       example(aluno-42)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       id             path    string  true   "Conversation id"  format(uuid)
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListMessagesResponse
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Router      /conversations/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	convID, valid := conversationID(c)
	if !valid {
		return
	}
	uid := userID(c)

	count, latest, err := h.msgSvc.Stats(ctx, uid, convID)
	if err != nil {
		failErr(c, err)
		return
	}
	if notModified(c, "messages:"+convID, count, latest) {
		return
	}

	page, size := pageParams(c)
	items, total, err := h.msgSvc.ListPage(ctx, uid, convID, page, size)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages:   items,
		Pagination: newPagination(page, size, total),
	})
}
