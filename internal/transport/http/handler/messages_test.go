package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devquery-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessageSvc struct{ mock.Mock }

func (m *mockMessageSvc) Send(ctx context.Context, senderID string, req domain.CreateMessageRequest) (*domain.Message, error) {
	args := m.Called(ctx, senderID, req)
	if msg, _ := args.Get(0).(*domain.Message); msg != nil {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMessageSvc) ListConversation(ctx context.Context, userID, partnerID string, limit int, cursor string) ([]domain.Message, string, error) {
	args := m.Called(ctx, userID, partnerID, limit, cursor)
	return args.Get(0).([]domain.Message), args.String(1), args.Error(2)
}

func (m *mockMessageSvc) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.ChatSummary), args.Error(1)
}

func (m *mockMessageSvc) MarkRead(ctx context.Context, readerID, partnerID string) (int, error) {
	args := m.Called(ctx, readerID, partnerID)
	return args.Int(0), args.Error(1)
}

// withChiUserID injects a chi URL param "userID" into the request context.
func withChiUserID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userID", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestSendMessage_MissingClaims(t *testing.T) {
	svc := &mockMessageSvc{}
	h := NewMessageHandler(svc)
	r := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
	rr := httptest.NewRecorder()
	h.Send(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSendMessage_ValidationFailure(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockMessageSvc{}
	h := NewMessageHandler(svc)
	body, _ := json.Marshal(domain.CreateMessageRequest{Content: "hi"}) // missing receiver_id
	r := bearerReq(t, p, http.MethodPost, "/api/messages", "u1", domain.RoleStudent, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Send), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendMessage_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockMessageSvc{}
	msg := &domain.Message{MessageID: "m1", SenderID: "u1", ReceiverID: "u2", Content: "hey"}
	svc.On("Send", mock.Anything, "u1", domain.CreateMessageRequest{ReceiverID: "u2", Content: "hey"}).Return(msg, nil)
	h := NewMessageHandler(svc)
	body, _ := json.Marshal(domain.CreateMessageRequest{ReceiverID: "u2", Content: "hey"})
	r := bearerReq(t, p, http.MethodPost, "/api/messages", "u1", domain.RoleStudent, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Send), rr, r)
	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp domain.Message
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "m1", resp.MessageID)
	svc.AssertExpectations(t)
}

func TestSendMessage_SelfMessageRejected(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockMessageSvc{}
	svc.On("Send", mock.Anything, "u1", mock.Anything).Return(nil, domain.ErrBadRequest)
	h := NewMessageHandler(svc)
	body, _ := json.Marshal(domain.CreateMessageRequest{ReceiverID: "u1", Content: "hello me"})
	r := bearerReq(t, p, http.MethodPost, "/api/messages", "u1", domain.RoleStudent, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Send), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListConversation_PassesLimitAndCursor(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockMessageSvc{}
	svc.On("ListConversation", mock.Anything, "u1", "u2", 20, "cur").
		Return([]domain.Message{{MessageID: "m1"}}, "next", nil)
	h := NewMessageHandler(svc)
	r := bearerReq(t, p, http.MethodGet, "/api/messages/u2?limit=20&cursor=cur", "u1", domain.RoleStudent, nil)
	r = withChiUserID(r, "u2")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.ListConversation), rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp PageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "next", resp.NextCursor)
	svc.AssertExpectations(t)
}

func TestListChats_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockMessageSvc{}
	svc.On("ListChats", mock.Anything, "u1").
		Return([]domain.ChatSummary{{PartnerID: "u2", Unread: 3}}, nil)
	h := NewMessageHandler(svc)
	r := bearerReq(t, p, http.MethodGet, "/api/messages/chats", "u1", domain.RoleStudent, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.ListChats), rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestMarkRead_ReturnsCount(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockMessageSvc{}
	svc.On("MarkRead", mock.Anything, "u1", "u2").Return(4, nil)
	h := NewMessageHandler(svc)
	r := bearerReq(t, p, http.MethodPost, "/api/messages/u2/read", "u1", domain.RoleStudent, nil)
	r = withChiUserID(r, "u2")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkRead), rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]int
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 4, resp["marked_read"])
	svc.AssertExpectations(t)
}
