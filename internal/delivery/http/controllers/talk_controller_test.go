package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfpboard/internal/delivery/http/helpers"
	"cfpboard/internal/delivery/http/middleware"
	"cfpboard/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeTalkService implements domain.TalkService for controller tests.
type fakeTalkService struct {
	talk        *domain.Talk
	talks       []*domain.Talk
	total       int
	err         error
	lastActor   domain.Actor
	lastTarget  domain.TalkState
	lastTalkID  string
	createdTalk *domain.Talk
}

func (f *fakeTalkService) CreateTalk(ctx context.Context, actor domain.Actor, talk *domain.Talk) error {
	f.lastActor = actor
	f.createdTalk = talk
	if f.err != nil {
		return f.err
	}
	talk.ID = "talk-1"
	return nil
}

func (f *fakeTalkService) GetTalk(ctx context.Context, actor domain.Actor, id string) (*domain.Talk, error) {
	f.lastActor, f.lastTalkID = actor, id
	if f.err != nil {
		return nil, f.err
	}
	return f.talk, nil
}

func (f *fakeTalkService) ListMyTalks(ctx context.Context, actor domain.Actor) ([]*domain.Talk, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return f.talks, nil
}

func (f *fakeTalkService) ListTalks(ctx context.Context, actor domain.Actor, state *domain.TalkState, params domain.PaginationParams) ([]*domain.Talk, int, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.talks, f.total, nil
}

func (f *fakeTalkService) UpdateTalk(ctx context.Context, actor domain.Actor, id string, update domain.TalkUpdate) (*domain.Talk, error) {
	f.lastActor, f.lastTalkID = actor, id
	if f.err != nil {
		return nil, f.err
	}
	return f.talk, nil
}

func (f *fakeTalkService) DeleteTalk(ctx context.Context, actor domain.Actor, id string) error {
	f.lastActor, f.lastTalkID = actor, id
	return f.err
}

func (f *fakeTalkService) ApplyTransition(ctx context.Context, actor domain.Actor, id string, target domain.TalkState) (*domain.Talk, error) {
	f.lastActor, f.lastTalkID, f.lastTarget = actor, id, target
	if f.err != nil {
		return nil, f.err
	}
	return f.talk, nil
}

func withActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(middleware.SetActor(req.Context(), actor))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	return envelope
}

func TestTalkController_Transition(t *testing.T) {
	speaker := domain.Actor{UserID: "spk-1", Roles: []string{domain.RoleSpeaker}}
	accepted := &domain.Talk{ID: "talk-1", SpeakerID: "spk-1", Title: "T", State: domain.StateAccepted}

	tests := []struct {
		name         string
		body         string
		serviceTalk  *domain.Talk
		serviceErr   error
		wantStatus   int
		wantBodyCode string
		wantTarget   domain.TalkState
	}{
		{
			name:        "success",
			body:        `{"target":"accepted"}`,
			serviceTalk: accepted,
			wantStatus:  http.StatusOK,
			wantTarget:  domain.StateAccepted,
		},
		{
			name:         "unknown target state",
			body:         `{"target":"archived"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "missing target",
			body:         `{}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "talk not found",
			body:         `{"target":"pending"}`,
			serviceErr:   domain.ErrNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "edge not in lifecycle graph",
			body:         `{"target":"accepted"}`,
			serviceErr:   domain.ErrInvalidTransition,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeInvalidTransition,
		},
		{
			name:         "actor may not take the edge",
			body:         `{"target":"pending"}`,
			serviceErr:   domain.ErrForbidden,
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeForbidden,
		},
		{
			name:         "service failure",
			body:         `{"target":"pending"}`,
			serviceErr:   assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTalkService{talk: tt.serviceTalk, err: tt.serviceErr}
			ctrl := NewTalkController(testLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/talks/talk-1/transition", bytes.NewBufferString(tt.body))
			req.SetPathValue("talkID", "talk-1")
			req = withActor(req, speaker)
			rr := httptest.NewRecorder()

			ctrl.Transition(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, "talk-1", fake.lastTalkID)
				assert.Equal(t, tt.wantTarget, fake.lastTarget)
			} else {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestTalkController_Transition_RequiresActor(t *testing.T) {
	ctrl := NewTalkController(testLogger(), &fakeTalkService{})

	req := httptest.NewRequest(http.MethodPost, "http://test/talks/talk-1/transition", bytes.NewBufferString(`{"target":"pending"}`))
	req.SetPathValue("talkID", "talk-1")
	rr := httptest.NewRecorder()

	ctrl.Transition(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, helpers.ErrCodeUnauthorized, envelope.Error.Code)
}

func TestTalkController_Create(t *testing.T) {
	speaker := domain.Actor{UserID: "spk-1", Roles: []string{domain.RoleSpeaker}}

	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       `{"title":"Generics in Practice","short_summary":"A tour of type parameters"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:         "missing title",
			body:         `{"short_summary":"s"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "unknown field rejected",
			body:         `{"title":"t","short_summary":"s","state":"accepted"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTalkService{}
			ctrl := NewTalkController(testLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/talks", bytes.NewBufferString(tt.body))
			req = withActor(req, speaker)
			rr := httptest.NewRecorder()

			ctrl.Create(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				require.NotNil(t, fake.createdTalk)
				assert.Equal(t, "spk-1", fake.createdTalk.SpeakerID)
				assert.Equal(t, domain.StateSubmitted, fake.createdTalk.State)
			} else {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestTalkController_List(t *testing.T) {
	organizer := domain.Actor{UserID: "org-1", Roles: []string{domain.RoleOrganizer}}
	now := time.Now()
	fake := &fakeTalkService{
		talks: []*domain.Talk{
			{ID: "talk-1", SpeakerID: "spk-1", Title: "A", State: domain.StatePending, SubmittedAt: now},
			{ID: "talk-2", SpeakerID: "spk-2", Title: "B", State: domain.StatePending, SubmittedAt: now},
		},
		total: 42,
	}
	ctrl := NewTalkController(testLogger(), fake)

	req := httptest.NewRequest(http.MethodGet, "http://test/talks?state=pending&page=2&page_size=2", nil)
	req = withActor(req, organizer)
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.Nil(t, envelope.Error)
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp TalkListResponse
	require.NoError(t, json.Unmarshal(dataBytes, &resp))
	assert.Len(t, resp.Talks, 2)
	assert.Equal(t, 42, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 21, resp.Pagination.TotalPages)
}

func TestTalkController_List_UnknownState(t *testing.T) {
	organizer := domain.Actor{UserID: "org-1", Roles: []string{domain.RoleOrganizer}}
	ctrl := NewTalkController(testLogger(), &fakeTalkService{})

	req := httptest.NewRequest(http.MethodGet, "http://test/talks?state=bogus", nil)
	req = withActor(req, organizer)
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, helpers.ErrCodeBadRequest, envelope.Error.Code)
}

func TestTalkController_Update_TerminalState(t *testing.T) {
	speaker := domain.Actor{UserID: "spk-1", Roles: []string{domain.RoleSpeaker}}
	ctrl := NewTalkController(testLogger(), &fakeTalkService{err: domain.ErrConflict})

	req := httptest.NewRequest(http.MethodPatch, "http://test/talks/talk-1", bytes.NewBufferString(`{"title":"New"}`))
	req.SetPathValue("talkID", "talk-1")
	req = withActor(req, speaker)
	rr := httptest.NewRecorder()

	ctrl.Update(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
	envelope := decodeEnvelope(t, rr)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, helpers.ErrCodeConflict, envelope.Error.Code)
}
