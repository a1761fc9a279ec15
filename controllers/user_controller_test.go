package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amara-atelier/atelier-orders-api/config"
	"github.com/amara-atelier/atelier-orders-api/models"
)

// mockAuth0Server stands in for Auth0's /userinfo endpoint
func mockAuth0Server(t *testing.T, sub, name, email string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"` + sub + `","name":"` + name + `","email":"` + email + `"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCreateUserEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)

	server := mockAuth0Server(t, "auth0|newuser", "Amina Hassan", "amina@example.com")
	config.SetConfig(&config.Config{Auth0Domain: server.URL, DatabaseURL: "test"})

	router := setupTestRouter()
	router.POST("/users", mockAuthMiddleware("auth0|newuser"), CreateUser)

	w, response := doJSON(t, router, http.MethodPost, "/users", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "auth0|newuser", data["auth0_id"])
	assert.Equal(t, "Amina Hassan", data["name"])
	assert.Equal(t, "amina@example.com", data["email"])
	assert.Equal(t, "customer", data["role"], "New profiles default to the customer role")

	t.Run("creating again returns the existing profile", func(t *testing.T) {
		w, response := doJSON(t, router, http.MethodPost, "/users", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "auth0|newuser", data["auth0_id"])

		var count int64
		require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestCreateUserEndpointMissingToken(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.POST("/users", mockAuthMiddleware("auth0|newuser"), CreateUser)

	// No Authorization header on purpose
	req, _ := http.NewRequest(http.MethodPost, "/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "MISSING_TOKEN", errorData["code"])
}

func TestGetCurrentUserEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)

	user := createTestUser(t, db, "auth0|me123", "Me User", "customer")

	t.Run("returns the authenticated profile", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/users/me", mockAuthMiddleware(user.Auth0ID), GetCurrentUser)

		w, response := doJSON(t, router, http.MethodGet, "/users/me", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, user.Name, data["name"])
		assert.Equal(t, user.Email, data["email"])
	})

	t.Run("unknown subject is a 404", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/users/me", mockAuthMiddleware("auth0|stranger"), GetCurrentUser)

		w, response := doJSON(t, router, http.MethodGet, "/users/me", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "USER_NOT_FOUND", errorData["code"])
	})
}

func TestUpdateCurrentUserEndpoint(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)

	user := createTestUser(t, db, "auth0|me123", "Me User", "customer")

	router := setupTestRouter()
	router.PUT("/users/me", mockAuthMiddleware(user.Auth0ID), UpdateCurrentUser)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name: "update name and phone",
			requestBody: map[string]interface{}{
				"name":  "Renamed User",
				"phone": "+254700000000",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "Renamed User", data["name"])
				assert.Equal(t, "+254700000000", data["phone"])
				assert.Equal(t, user.Email, data["email"], "Email is untouched when omitted")
			},
		},
		{
			name: "invalid email is rejected",
			requestBody: map[string]interface{}{
				"email": "not-an-email",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := doJSON(t, router, http.MethodPut, "/users/me", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, response["data"].(map[string]interface{}))
			}
		})
	}
}
