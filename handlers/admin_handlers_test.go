package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companychallenges/api/middleware"
	"companychallenges/api/models"
)

func TestAdminRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{"/admin", "/admin/clients", "/admin/analytics", "/admin/health"} {
		w := app.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(http.MethodPost, "/admin/login", `{"email":"Admin@Example.com","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := cookieNamed(w, middleware.AdminCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	w = app.do(http.MethodGet, "/admin/clients", "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPost, "/admin/logout", "")
	require.Equal(t, http.StatusOK, w.Code)
	cleared := cookieNamed(w, middleware.AdminCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLogin_Rejected(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"wrong password", `{"email":"admin@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"unknown admin", `{"email":"other@example.com","password":"correct horse"}`, http.StatusUnauthorized},
		{"invalid email", `{"email":"admin","password":"correct horse"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(http.MethodPost, "/admin/login", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Nil(t, cookieNamed(w, middleware.AdminCookieName))
		})
	}
}

func TestAdminClients(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.admin(http.MethodPost, "/admin/clients", `{"name":"Globex"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Globex", created.Name)

	w = app.admin(http.MethodGet, "/admin/clients/cl-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Client     models.Client      `json:"client"`
		Challenges []models.Challenge `json:"challenges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Acme", detail.Client.Name)
	assert.Len(t, detail.Challenges, 2, "archived challenges are listed for the client")

	w = app.admin(http.MethodDelete, "/admin/clients/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.admin(http.MethodGet, "/admin/clients/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCreateChallenge(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"generated slug", `{"client_id":"cl-1","internal_name":"Autumn"}`, http.StatusCreated},
		{"custom slug", `{"client_id":"cl-1","internal_name":"Autumn","slug":"autumn-2024"}`, http.StatusCreated},
		{"taken slug", `{"client_id":"cl-1","internal_name":"Again","slug":"spring-challenge"}`, http.StatusConflict},
		{"reserved slug", `{"client_id":"cl-1","internal_name":"Bad","slug":"admin"}`, http.StatusBadRequest},
		{"invalid slug", `{"client_id":"cl-1","internal_name":"Bad","slug":"has space"}`, http.StatusBadRequest},
		{"unknown client", `{"client_id":"cl-9","internal_name":"Orphan"}`, http.StatusUnprocessableEntity},
		{"missing name", `{"client_id":"cl-1"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.admin(http.MethodPost, "/admin/challenges", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := app.admin(http.MethodGet, "/admin/challenges", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Challenges []models.Challenge `json:"challenges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Challenges, 3)
	for _, ch := range list.Challenges {
		assert.NotEmpty(t, ch.Slug)
	}
}

func TestAdminArchiveChallenge(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.admin(http.MethodPost, "/admin/challenges/ch-1/archive", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/c/spring-challenge", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminGetChallenge(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.admin(http.MethodGet, "/admin/challenges/ch-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Challenge models.Challenge         `json:"challenge"`
		Usages    []models.AssignmentUsage `json:"usages"`
		Sprints   []models.Sprint          `json:"sprints"`
		Labels    []models.ChallengeLabel  `json:"labels"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "spring-challenge", detail.Challenge.Slug)
	assert.Len(t, detail.Usages, 2)
	assert.NotNil(t, detail.Labels)

	w = app.admin(http.MethodGet, "/admin/challenges/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLabels(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.admin(http.MethodPut, "/admin/challenges/ch-1/labels", `{"labels":[{"key":"assignment","value":"Mission"},{"key":"challenge","value":"Quest"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Quest")

	w = app.admin(http.MethodDelete, "/admin/challenges/ch-1/labels/challenge", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, app.content.labels["ch-1"], 1)
	assert.Equal(t, "assignment", app.content.labels["ch-1"][0].Key)

	w = app.admin(http.MethodDelete, "/admin/challenges/ch-1/labels", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, app.content.labels["ch-1"])
}

func TestAdminUsages(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.admin(http.MethodPost, "/admin/challenges/ch-1/usages", `{"assignment_id":"a-3"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var usage models.AssignmentUsage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))

	w = app.admin(http.MethodDelete, "/admin/challenges/ch-1/usages/"+usage.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.admin(http.MethodDelete, "/admin/challenges/ch-1/usages/"+usage.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminAssignmentPasswords(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.admin(http.MethodPost, "/admin/assignments", `{"internal_title":"Quiz","slug":"quiz-1","password":"Open Sesame"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password_hash")
	var created models.Assignment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	stored := app.content.assignments[created.ID]
	require.NotNil(t, stored.PasswordHash)
	assert.NotEqual(t, "Open Sesame", *stored.PasswordHash)

	w = app.admin(http.MethodGet, "/admin/assignments/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"requires_password":true`)

	w = app.admin(http.MethodPut, "/admin/assignments/"+created.ID, `{"internal_title":"Quiz","remove_password":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, app.content.assignments[created.ID].PasswordHash)
	assert.Equal(t, "quiz-1", app.content.assignments[created.ID].Slug, "empty slug keeps the current one")

	w = app.admin(http.MethodPost, "/admin/assignments", `{"internal_title":"Blank","password":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
