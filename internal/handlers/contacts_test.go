package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"groupchat-service/internal/apperrors"
	"groupchat-service/internal/mocks"
	"groupchat-service/internal/models"
)

func setupContactRouter(handler *ContactHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	handler.Register(r)
	return r
}

func TestContactMutations(t *testing.T) {
	cases := []struct {
		method string
		target string
		op     string
		status int
	}{
		{http.MethodPost, "/contacts/bob", "Request", http.StatusCreated},
		{http.MethodPatch, "/contacts/received/bob", "Accept", http.StatusNoContent},
		{http.MethodDelete, "/contacts/received/bob", "Reject", http.StatusNoContent},
		{http.MethodDelete, "/contacts/sent/bob", "Cancel", http.StatusNoContent},
		{http.MethodDelete, "/contacts/bob", "Remove", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			contacts := new(mocks.ContactServiceMock)
			audit := new(mocks.AuditorMock)
			router := setupContactRouter(NewContactHandler(contacts, audit, nil))
			contacts.On(tc.op, mock.Anything, 1, "bob").Return(nil).Once()
			audit.On("Emit", mock.Anything, "INFO", mock.AnythingOfType("string"), mock.Anything, mock.Anything, 0).Once()

			rec := serve(router, tc.method, tc.target, "")

			require.Equal(t, tc.status, rec.Code)
			contacts.AssertExpectations(t)
			audit.AssertExpectations(t)
		})
	}
}

func TestContactRequestFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"self", apperrors.ErrSelfTarget, http.StatusForbidden, "self_target"},
		{"exists", apperrors.ErrContactExists, http.StatusConflict, "contact_exists"},
		{"unknown user", apperrors.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			contacts := new(mocks.ContactServiceMock)
			router := setupContactRouter(NewContactHandler(contacts, nil, nil))
			contacts.On("Request", mock.Anything, 1, "bob").Return(tc.err).Once()

			rec := serve(router, http.MethodPost, "/contacts/bob", "")

			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec)["code"])
		})
	}
}

func TestAcceptWithoutPendingRequest(t *testing.T) {
	contacts := new(mocks.ContactServiceMock)
	router := setupContactRouter(NewContactHandler(contacts, nil, nil))
	contacts.On("Accept", mock.Anything, 1, "bob").Return(apperrors.ErrContactNotFound).Once()

	rec := serve(router, http.MethodPatch, "/contacts/received/bob", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactListings(t *testing.T) {
	contacts := new(mocks.ContactServiceMock)
	router := setupContactRouter(NewContactHandler(contacts, nil, nil))
	name := "Bob B"
	contacts.On("ListAccepted", mock.Anything, 1).Return([]models.ContactView{{Username: "bob", Name: &name}}, nil).Once()
	contacts.On("ListReceived", mock.Anything, 1).Return(nil, nil).Once()
	contacts.On("ListSent", mock.Anything, 1).Return(nil, apperrors.Internal(assert.AnError)).Once()

	rec := serve(router, http.MethodGet, "/contacts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"username":"bob","name":"Bob B"}]`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/contacts/received", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/contacts/sent", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	contacts.AssertExpectations(t)
}
