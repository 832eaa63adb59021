package lobby_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamezell/arcbeta/internal/lobby"
	"github.com/iamezell/arcbeta/internal/models"
)

func newTestRouter(ps *memParticipants, rs *memRooms) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := lobby.NewHandler(ps, rs, "lobby")
	router := gin.New()
	router.GET("/lobby/status", h.Status)
	router.GET("/lobby/user/:id", h.GetUser)
	return router
}

func seedParticipant(t *testing.T, ps *memParticipants, id, name string, role models.Role) {
	t.Helper()
	require.NoError(t, ps.Upsert(context.Background(), &models.Participant{
		ConnectionID: id,
		Name:         name,
		Role:         role,
		RoomID:       "lobby",
	}))
}

func TestStatus_EmptyLobby(t *testing.T) {
	router := newTestRouter(newMemParticipants(), newMemRooms())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/lobby/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Users     []lobby.UserInfo `json:"users"`
			IsActive  bool             `json:"isActive"`
			UserCount int              `json:"userCount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Empty(t, body.Data.Users)
	assert.False(t, body.Data.IsActive, "an unknown room reads as inactive")
	assert.Equal(t, 0, body.Data.UserCount)
}

func TestStatus_WithMembersAndActivation(t *testing.T) {
	ps := newMemParticipants()
	rs := newMemRooms()
	seedParticipant(t, ps, "conn-d", "Dana", models.RoleDirector)
	seedParticipant(t, ps, "conn-a", "Ann", models.RoleActor)
	_, err := rs.Activate(context.Background(), "lobby")
	require.NoError(t, err)

	router := newTestRouter(ps, rs)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lobby/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Users     []lobby.UserInfo `json:"users"`
			IsActive  bool             `json:"isActive"`
			UserCount int              `json:"userCount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.IsActive)
	assert.Equal(t, 2, body.Data.UserCount)
	require.Len(t, body.Data.Users, 2)
	assert.Equal(t, lobby.UserInfo{ID: "conn-d", Name: "Dana", Role: models.RoleDirector}, body.Data.Users[0])
}

func TestGetUser_Found(t *testing.T) {
	ps := newMemParticipants()
	seedParticipant(t, ps, "conn-a", "Ann", models.RoleActor)

	router := newTestRouter(ps, newMemRooms())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lobby/user/conn-a", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data lobby.UserInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, lobby.UserInfo{ID: "conn-a", Name: "Ann", Role: models.RoleActor}, body.Data)
}

func TestGetUser_NotFound(t *testing.T) {
	router := newTestRouter(newMemParticipants(), newMemRooms())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lobby/user/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
