package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devquery-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuestionSvc struct{ mock.Mock }

func (m *mockQuestionSvc) Create(ctx context.Context, authorID string, req domain.CreateQuestionRequest) (*domain.Question, error) {
	args := m.Called(ctx, authorID, req)
	if q, _ := args.Get(0).(*domain.Question); q != nil {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuestionSvc) List(ctx context.Context, limit int, cursor, tag string) ([]domain.Question, string, error) {
	args := m.Called(ctx, limit, cursor, tag)
	return args.Get(0).([]domain.Question), args.String(1), args.Error(2)
}

func (m *mockQuestionSvc) ListByAuthor(ctx context.Context, authorID string) ([]domain.Question, error) {
	args := m.Called(ctx, authorID)
	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *mockQuestionSvc) Get(ctx context.Context, questionID string) (*domain.Question, error) {
	args := m.Called(ctx, questionID)
	if q, _ := args.Get(0).(*domain.Question); q != nil {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuestionSvc) Update(ctx context.Context, questionID, actorID, actorRole string, req domain.UpdateQuestionRequest) (*domain.Question, error) {
	args := m.Called(ctx, questionID, actorID, actorRole, req)
	if q, _ := args.Get(0).(*domain.Question); q != nil {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuestionSvc) Delete(ctx context.Context, questionID, actorID, actorRole string) error {
	return m.Called(ctx, questionID, actorID, actorRole).Error(0)
}

func TestCreateQuestion_MissingClaims(t *testing.T) {
	svc := &mockQuestionSvc{}
	h := NewQuestionHandler(svc)
	r := httptest.NewRequest(http.MethodPost, "/api/questions", nil)
	rr := httptest.NewRecorder()
	h.Create(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateQuestion_ValidationFailure(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockQuestionSvc{}
	h := NewQuestionHandler(svc)
	body, _ := json.Marshal(domain.CreateQuestionRequest{Title: "too short"}) // body missing
	r := bearerReq(t, p, http.MethodPost, "/api/questions", "u1", domain.RoleStudent, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateQuestion_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockQuestionSvc{}
	q := &domain.Question{QuestionID: "q1", Title: "How do goroutines get scheduled?", AuthorID: "u1"}
	svc.On("Create", mock.Anything, "u1", mock.Anything).Return(q, nil)
	h := NewQuestionHandler(svc)
	body, _ := json.Marshal(domain.CreateQuestionRequest{
		Title: "How do goroutines get scheduled?",
		Body:  "I keep reading about the M:N scheduler but cannot picture it.",
		Tags:  []string{"go", "runtime"},
	})
	r := bearerReq(t, p, http.MethodPost, "/api/questions", "u1", domain.RoleStudent, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)
	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp domain.Question
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "q1", resp.QuestionID)
	svc.AssertExpectations(t)
}

func TestListQuestions_PassesTagAndCursor(t *testing.T) {
	svc := &mockQuestionSvc{}
	svc.On("List", mock.Anything, 10, "abc", "go").Return([]domain.Question{{QuestionID: "q1"}}, "next", nil)
	h := NewQuestionHandler(svc)
	r := httptest.NewRequest(http.MethodGet, "/api/questions?limit=10&cursor=abc&tag=go", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp PageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "next", resp.NextCursor)
	svc.AssertExpectations(t)
}

func TestListQuestions_ByAuthor(t *testing.T) {
	svc := &mockQuestionSvc{}
	svc.On("ListByAuthor", mock.Anything, "u7").Return([]domain.Question{{QuestionID: "q2", AuthorID: "u7"}}, nil)
	h := NewQuestionHandler(svc)
	r := httptest.NewRequest(http.MethodGet, "/api/questions?author=u7", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestGetQuestion_NotFound(t *testing.T) {
	svc := &mockQuestionSvc{}
	svc.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	h := NewQuestionHandler(svc)
	r := withChiID(httptest.NewRequest(http.MethodGet, "/api/questions/missing", nil), "missing")
	rr := httptest.NewRecorder()
	h.Get(rr, r)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateQuestion_ForbiddenForNonAuthor(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockQuestionSvc{}
	svc.On("Update", mock.Anything, "q1", "u2", domain.RoleStudent, mock.Anything).Return(nil, domain.ErrForbidden)
	h := NewQuestionHandler(svc)
	newTitle := "A much better question title"
	body, _ := json.Marshal(domain.UpdateQuestionRequest{Title: &newTitle})
	r := bearerReq(t, p, http.MethodPut, "/api/questions/q1", "u2", domain.RoleStudent, body)
	r = withChiID(r, "q1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Update), rr, r)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertExpectations(t)
}

func TestDeleteQuestion_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockQuestionSvc{}
	svc.On("Delete", mock.Anything, "q1", "u1", domain.RoleStudent).Return(nil)
	h := NewQuestionHandler(svc)
	r := bearerReq(t, p, http.MethodDelete, "/api/questions/q1", "u1", domain.RoleStudent, nil)
	r = withChiID(r, "q1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Delete), rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
