package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

func TestLeaveFeedback(t *testing.T) {
	api := newTestAPI(t)
	c := api.openConversation("ana", domain.ModeQuickDoubt, "", "")
	w := api.do(http.MethodPost, "/conversations/"+c.ID+"/messages", "ana", gin.H{"content": "Explica a regra de três"})
	var sent PostMessageResponse
	decode(t, w, &sent)
	reply, question := sent.Message.ID, sent.UserMessage.ID

	path := "/messages/" + reply + "/feedback"
	expectError(t, api.do(http.MethodPost, path, "ana", gin.H{"value": 0}), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, api.do(http.MethodPost, path, "ana", gin.H{"value": 2}), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, api.do(http.MethodPost, "/messages/nope/feedback", "ana", gin.H{"value": 1}), http.StatusBadRequest, ErrCodeBadRequest)
	expectError(t, api.do(http.MethodPost, "/messages/"+uuid.NewString()+"/feedback", "ana", gin.H{"value": 1}), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, api.do(http.MethodPost, path, "bia", gin.H{"value": 1}), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, api.do(http.MethodPost, "/messages/"+question+"/feedback", "ana", gin.H{"value": 1}), http.StatusForbidden, ErrCodeForbidden)

	if w := api.do(http.MethodPost, path, "ana", gin.H{"value": -1}); w.Code != http.StatusNoContent {
		t.Fatalf("leave: %d %s", w.Code, w.Body.String())
	}
	expectError(t, api.do(http.MethodPost, path, "ana", gin.H{"value": 1}), http.StatusConflict, ErrCodeConflict)
}
