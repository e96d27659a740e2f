// Conversation endpoints:
//   - POST   /conversations/active      (resume or open the active one of a mode)
//   - POST   /conversations             (open a fresh one, deactivating the old)
//   - GET    /conversations             (list, paginated, ETag)
//   - DELETE /conversations             (delete all)
//   - GET    /conversations/{id}
//   - PUT    /conversations/{id}/title
//   - DELETE /conversations/{id}        (cascade to messages and feedback)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

// ConversationRequest opens or resumes a conversation.
type ConversationRequest struct {
	Mode    string `json:"mode" binding:"required" example:"quick_doubt" enums:"quick_doubt,exam_prep,revision,free_learning"`
	Subject string `json:"subject" example:"Matemática"`
	Topic   string `json:"topic" example:"Frações"`
}

func (r ConversationRequest) toNew() services.NewConversation {
	return services.NewConversation{
		Mode:    domain.Mode(strings.TrimSpace(r.Mode)),
		Subject: r.Subject,
		Topic:   r.Topic,
	}
}

// UpdateTitleRequest renames a conversation. An empty title resets it to
// the untitled placeholder.
type UpdateTitleRequest struct {
	Title string `json:"title" binding:"max=255" example:"Frações equivalentes"`
}

// ListConversationsResponse wraps a page of conversations.
type ListConversationsResponse struct {
	Conversations []domain.Conversation `json:"conversations"`
	Pagination    Pagination            `json:"pagination"`
}

// DeleteAllResponse reports how many conversations were removed.
type DeleteAllResponse struct {
	Deleted int `json:"deleted" example:"3"`
}

// ActiveConversation godoc
// @ID          activeConversation
// @Summary     Resume the active conversation of a mode
// @Description Returns the student's active conversation in the given mode, opening one when none exists.
// @Description Subject and topic only apply to a newly opened conversation.
// @Tags        Conversations
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Param       body       body    handlers.ConversationRequest  true  "Mode and optional subject/topic"
// @Success     200  {object}  domain.Conversation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Mode not on the student's plan"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations/active [post]
func (h *Handlers) ActiveConversation(c *gin.Context) {
	var req ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mode required")
		return
	}
	conv, err := h.convSvc.GetOrCreateActive(c.Request.Context(), userID(c), req.toNew())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, conv)
}

// CreateConversation godoc
// @ID          createConversation
// @Summary     Open a new conversation
// @Description Opens a fresh conversation in the given mode and makes it the active one.
// @Tags        Conversations
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Param       body       body    handlers.ConversationRequest  true  "Mode and optional subject/topic"
// @Success     201  {object}  domain.Conversation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Mode not on the student's plan"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations [post]
func (h *Handlers) CreateConversation(c *gin.Context) {
	var req ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mode required")
		return
	}
	conv, err := h.convSvc.Create(c.Request.Context(), userID(c), req.toNew())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, conv)
}

// ListConversations godoc
// @ID          listConversations
// @Summary     List conversations (paginated)
// @Description Returns the student's conversations, most recent activity first. Supports a weak ETag via If-None-Match.
// @Tags        Conversations
// @Produce     json
// @Param       X-User-ID      header  string  true   "Student id"                  example(aluno-42)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListConversationsResponse
// @Header      200  {string}  ETag  "Weak ETag for the current list"
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations [get]
func (h *Handlers) ListConversations(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	if count, latest, err := h.convSvc.Stats(ctx, uid); err == nil {
		if notModified(c, "conversations:"+uid, count, latest) {
			return
		}
	}

	page, size := pageParams(c)
	items, total, err := h.convSvc.ListPage(ctx, uid, page, size)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListConversationsResponse{
		Conversations: items,
		Pagination:    newPagination(page, size, total),
	})
}

// GetConversation godoc
// @ID          getConversation
// @Summary     Get a conversation
// @Tags        Conversations
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"         example(aluno-42)
// @Param       id         path    string  true  "Conversation id"    format(uuid)
// @Success     200  {object}  domain.Conversation
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Router      /conversations/{id} [get]
func (h *Handlers) GetConversation(c *gin.Context) {
	id, valid := conversationID(c)
	if !valid {
		return
	}
	conv, err := h.convSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, conv)
}

// UpdateConversationTitle godoc
// @ID          updateConversationTitle
// @Summary     Rename a conversation
// @Tags        Conversations
// @Accept      json
// @Param       X-User-ID  header  string  true  "Student id"       example(aluno-42)
// @Param       id         path    string  true  "Conversation id"  format(uuid)
// @Param       body       body    handlers.UpdateTitleRequest  true  "New title"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Router      /conversations/{id}/title [put]
func (h *Handlers) UpdateConversationTitle(c *gin.Context) {
	id, valid := conversationID(c)
	if !valid {
		return
	}
	var req UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "title must be at most 255 characters")
		return
	}
	if err := h.convSvc.UpdateTitle(c.Request.Context(), userID(c), id, req.Title); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// DeleteConversation godoc
// @ID          deleteConversation
// @Summary     Delete a conversation
// @Description Deletes the conversation together with its messages and their feedback.
// @Tags        Conversations
// @Param       X-User-ID  header  string  true  "Student id"       example(aluno-42)
// @Param       id         path    string  true  "Conversation id"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Router      /conversations/{id} [delete]
func (h *Handlers) DeleteConversation(c *gin.Context) {
	id, valid := conversationID(c)
	if !valid {
		return
	}
	if err := h.convSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// DeleteAllConversations godoc
// @ID          deleteAllConversations
// @Summary     Delete every conversation
// @Tags        Conversations
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Success     200  {object}  handlers.DeleteAllResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations [delete]
func (h *Handlers) DeleteAllConversations(c *gin.Context) {
	n, err := h.convSvc.DeleteAll(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, DeleteAllResponse{Deleted: n})
}

// conversationID validates the :id path parameter, writing a 400 when it
// is not a UUID.
func conversationID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return "", false
	}
	return id, true
}
