// Profile endpoints:
//   - GET /profile
//   - PUT /profile        (partial edit, onboarding)
//   - PUT /profile/plan   (result of the payment flow)
//   - GET /modes          (which modes the plan opens)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

// ChangePlanRequest selects a subscription plan.
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required" example:"student" enums:"free,student,student_plus,family"`
}

// ModesResponse lists every mode and whether the plan opens it.
type ModesResponse struct {
	Plan  domain.Plan                 `json:"plan" example:"free"`
	Modes []services.ModeAvailability `json:"modes"`
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get the student profile
// @Description Returns the caller's profile, creating an empty one on first access.
// @Tags        Profile
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Success     200  {object}  domain.Profile
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.profileSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Edit the student profile
// @Description Applies a partial edit. Omitted fields are unchanged. Set complete_onboarding once
// @Description name, age, grade and interests are filled in.
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Param       body       body    services.ProfileUpdate  true  "Fields to change"
// @Success     200  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Router      /profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.profileSvc.Update(c.Request.Context(), userID(c), req)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ChangePlan godoc
// @ID          changePlan
// @Summary     Change the subscription plan
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Param       body       body    handlers.ChangePlanRequest  true  "New plan"
// @Success     200  {object}  domain.Profile
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown plan"
// @Router      /profile/plan [put]
func (h *Handlers) ChangePlan(c *gin.Context) {
	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "plan required")
		return
	}
	p, err := h.profileSvc.ChangePlan(c.Request.Context(), userID(c), req.Plan)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ListModes godoc
// @ID          listModes
// @Summary     List tutoring modes
// @Description Lists every mode with whether the caller's plan opens it.
// @Tags        Profile
// @Produce     json
// @Param       X-User-ID  header  string  true  "Student id"  example(aluno-42)
// @Success     200  {object}  handlers.ModesResponse
// @Router      /modes [get]
func (h *Handlers) ListModes(c *gin.Context) {
	plan, modes, err := h.profileSvc.Modes(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ModesResponse{Plan: plan, Modes: modes})
}
