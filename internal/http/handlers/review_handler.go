// Learning endpoints:
//   - GET  /review/topics      (what to review next)
//   - POST /progress/answers   (record a quiz answer)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/utils"
)

// RecordAnswerRequest reports one answered question.
type RecordAnswerRequest struct {
	Subject string `json:"subject" example:"Matemática"`
	Topic   string `json:"topic" example:"Frações"`
	Correct *bool  `json:"correct" binding:"required" example:"true"`
}

// ReviewTopics godoc
// @ID          reviewTopics
// @Summary     Topics to review
// @Description Ranks the student's topics by review priority: stale, weak and little-practised topics first.
// @Description Topics only seen in conversations are included with zero mastery.
// @Tags        Learning
// @Produce     json
// @Param       X-User-ID  header  string  true   "Student id"  example(aluno-42)
// @Param       limit      query   int     false  "Maximum topics"  minimum(1)
// @Success     200  {object}  review.Result
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /review/topics [get]
func (h *Handlers) ReviewTopics(c *gin.Context) {
	res, err := h.reviewSvc.Topics(c.Request.Context(), userID(c), utils.AtoiDefault(c.Query("limit"), 0))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// RecordAnswer godoc
// @ID          recordAnswer
// @Summary     Record a quiz answer
// @Description Counts the answer on (subject, topic), moves mastery up on a correct answer and down
// @Description otherwise, and schedules the next review.
// @Tags        Learning
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Param       body       body    handlers.RecordAnswerRequest  true  "Answer"
// @Success     200  {object}  domain.LearningProgress
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /progress/answers [post]
func (h *Handlers) RecordAnswer(c *gin.Context) {
	var req RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "correct required")
		return
	}
	lp, err := h.progressSvc.RecordAnswer(c.Request.Context(), userID(c), req.Subject, req.Topic, *req.Correct)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, lp)
}
