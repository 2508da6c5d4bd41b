package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/confessionwall/internal/config"
	"anoa.com/confessionwall/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) *Server {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Confession{}, &model.Reaction{}))

	cfg := &config.Config{
		Port:            "0",
		AllowedOrigins:  "http://localhost:3000",
		RateLimitMax:    5,
		RateLimitWindow: time.Minute,
		FeedLimit:       200,
	}

	srv := NewServer(cfg, db, nil)
	t.Cleanup(srv.limiter.Stop)
	return srv
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitThenList(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(srv.Engine(), "/api/confessions", gin.H{"content": "this is fine"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Confession model.Confession `json:"confession"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "this is fine", created.Confession.Content)

	req := httptest.NewRequest("GET", "/api/confessions", nil)
	w = httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Confessions []struct {
			ID           string `json:"id"`
			Content      string `json:"content"`
			SupportCount int64  `json:"support_count"`
			RelateCount  int64  `json:"relate_count"`
		} `json:"confessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Confessions, 1)
	assert.Equal(t, created.Confession.ID.String(), listed.Confessions[0].ID)
	assert.Equal(t, int64(0), listed.Confessions[0].SupportCount)
	assert.Equal(t, int64(0), listed.Confessions[0].RelateCount)
}

func TestSubmitValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(srv.Engine(), "/api/confessions", gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(srv.Engine(), "/api/confessions", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRateLimited(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 5; i++ {
		w := postJSON(srv.Engine(), "/api/confessions", gin.H{"content": fmt.Sprintf("confession %d", i)})
		require.Equal(t, http.StatusCreated, w.Code, "submission %d should pass", i+1)
	}

	w := postJSON(srv.Engine(), "/api/confessions", gin.H{"content": "one too many"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestReactionToggleRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(srv.Engine(), "/api/confessions", gin.H{"content": "toggle me"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Confession model.Confession `json:"confession"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Confession.ID.String()

	toggle := gin.H{"confession_id": id, "reaction_type": "support", "device_id": "device-1"}

	w = postJSON(srv.Engine(), "/api/reactions", toggle)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Action string `json:"action"`
		Counts struct {
			SupportCount int64 `json:"support_count"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "added", result.Action)
	assert.Equal(t, int64(1), result.Counts.SupportCount)

	// Second toggle removes.
	w = postJSON(srv.Engine(), "/api/reactions", toggle)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "removed", result.Action)
	assert.Equal(t, int64(0), result.Counts.SupportCount)
}

func TestReactionValidation(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(srv.Engine(), "/api/reactions", gin.H{"reaction_type": "support", "device_id": "d"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(srv.Engine(), "/api/reactions", gin.H{
		"confession_id": "0c6e8a54-8e0e-7b7f-9f57-000000000000",
		"reaction_type": "dislike",
		"device_id":     "d",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReactionStateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(srv.Engine(), "/api/confessions", gin.H{"content": "state over http"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Confession model.Confession `json:"confession"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Confession.ID.String()

	w = postJSON(srv.Engine(), "/api/reactions", gin.H{
		"confession_id": id, "reaction_type": "relate", "device_id": "device-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest("GET", "/api/reactions?confession_id="+id+"&device_id=device-1", nil)
	w2 := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	var state struct {
		Success bool `json:"success"`
		Counts  struct {
			RelateCount int64 `json:"relate_count"`
		} `json:"counts"`
		UserReactions struct {
			Relate bool `json:"relate"`
		} `json:"userReactions"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &state))
	assert.True(t, state.Success)
	assert.Equal(t, int64(1), state.Counts.RelateCount)
	assert.True(t, state.UserReactions.Relate)
}

func TestRemoveReactionIdempotent(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(srv.Engine(), "/api/confessions", gin.H{"content": "remove twice"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Confession model.Confession `json:"confession"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	body := gin.H{
		"confession_id": created.Confession.ID.String(),
		"reaction_type": "support",
		"device_id":     "device-1",
	}
	payload, _ := json.Marshal(body)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("DELETE", "/api/reactions", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
