// Feedback endpoint:
//   - POST /messages/{id}/feedback
//
// Students rate tutor replies with +1 or -1, once per message.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeaveFeedbackRequest rates a tutor reply.
type LeaveFeedbackRequest struct {
	Value int `json:"value" binding:"required,oneof=-1 1" example:"1"`
}

// LeaveFeedback godoc
// @ID          leaveFeedback
// @Summary     Rate a tutor reply
// @Description Records positive (+1) or negative (-1) feedback on an assistant message.
// @Tags        Feedback
// @Accept      json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Param       id         path    string  true  "Message id"  format(uuid)
// @Param       body       body    handlers.LeaveFeedbackRequest  true  "Feedback"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid payload"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a tutor reply"
// @Failure     404  {object}  handlers.ErrorResponse  "Message not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already rated"
// @Router      /messages/{id}/feedback [post]
func (h *Handlers) LeaveFeedback(c *gin.Context) {
	msgID := c.Param("id")
	if _, err := uuid.Parse(msgID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message id must be a UUID")
		return
	}
	var req LeaveFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "value must be -1 or 1")
		return
	}
	if err := h.fbSvc.Leave(c.Request.Context(), userID(c), msgID, req.Value); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
