package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"number_rush/internal/domain"
	"number_rush/internal/game"
	"number_rush/internal/repository"
	"number_rush/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(store repository.ResultStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(service.NewResultService(store), game.BoardDistractors)

	r := gin.New()
	r.POST("/game-results", h.SubmitResult)
	r.GET("/game-results", h.ListResults)
	r.POST("/game-completion", h.CompleteGame)
	r.GET("/results", h.RecentResults)
	r.GET("/config", h.GameConfig)
	r.GET("/target-sequence", h.TargetSequence)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitResult_AcceptsZeroTime(t *testing.T) {
	r := newRouter(repository.NewMemoryResultRepository())

	w := do(t, r, http.MethodPost, "/game-results", `{"difficulty":"easy","rule":"odd","completionTime":0,"playerName":"Ann","timestamp":1700000000000}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ID)
}

func TestSubmitResult_Rejects(t *testing.T) {
	r := newRouter(repository.NewMemoryResultRepository())

	cases := map[string]string{
		"missing time":  `{"difficulty":"easy","rule":"odd"}`,
		"missing rule":  `{"difficulty":"easy","completionTime":3.2}`,
		"bad rule":      `{"difficulty":"easy","rule":"fib","completionTime":3.2}`,
		"negative time": `{"difficulty":"easy","rule":"odd","completionTime":-1}`,
		"not json":      `difficulty=easy`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/game-results", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestListResults_Ranking(t *testing.T) {
	r := newRouter(repository.NewMemoryResultRepository())

	for _, body := range []string{
		`{"difficulty":"medium","rule":"sequence","completionTime":12.3,"playerName":"A"}`,
		`{"difficulty":"medium","rule":"sequence","completionTime":8.9,"playerName":"B"}`,
		`{"difficulty":"medium","rule":"sequence","completionTime":15.0,"playerName":"C"}`,
		`{"difficulty":"medium","rule":"odd","completionTime":1.0,"playerName":"D"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/game-results", body).Code)
	}

	w := do(t, r, http.MethodGet, "/game-results?difficulty=medium&rule=sequence&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.GameResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{got[0].PlayerName, got[1].PlayerName, got[2].PlayerName})
	assert.Equal(t, 8.9, got[0].CompletionTime)

	w = do(t, r, http.MethodGet, "/game-results?difficulty=giant&rule=sequence", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListResults_EmptyClassIsEmptyArray(t *testing.T) {
	r := newRouter(repository.NewMemoryResultRepository())

	w := do(t, r, http.MethodGet, "/game-results?difficulty=crazy&rule=prime", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCompleteGame_Percentile(t *testing.T) {
	r := newRouter(repository.NewMemoryResultRepository())

	for _, tm := range []string{"5", "10", "15"} {
		body := `{"difficulty":"easy","rule":"even","completionTime":` + tm + `}`
		require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/game-results", body).Code)
	}

	w := do(t, r, http.MethodPost, "/game-completion", `{"difficulty":"easy","rule":"even","completionTime":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID         string  `json:"id"`
		Percentage float64 `json:"percentage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	// 5, 10, 10 of 5, 10, 15, 10
	assert.Equal(t, 75.0, resp.Percentage)
}

func TestRecentResults_NewestFirst(t *testing.T) {
	r := newRouter(repository.NewMemoryResultRepository())

	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/game-results", `{"difficulty":"easy","rule":"odd","completionTime":3,"playerName":"first"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/game-results", `{"difficulty":"hard","rule":"prime","completionTime":30,"playerName":"second"}`).Code)

	w := do(t, r, http.MethodGet, "/results?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.GameResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].PlayerName)
}

type failingStore struct {
	*repository.MemoryResultRepository
}

var errStoreDown = errors.New("store down")

func (failingStore) Create(context.Context, *domain.GameResult) error { return errStoreDown }
func (failingStore) ListTop(context.Context, domain.Difficulty, domain.Rule, int) ([]*domain.GameResult, error) {
	return nil, errStoreDown
}

func TestStoreFailuresAre500(t *testing.T) {
	r := newRouter(failingStore{repository.NewMemoryResultRepository()})

	w := do(t, r, http.MethodPost, "/game-results", `{"difficulty":"easy","rule":"odd","completionTime":3}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(t, r, http.MethodGet, "/game-results?difficulty=easy&rule=odd", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGameConfigAndTargetSequence(t *testing.T) {
	r := newRouter(repository.NewMemoryResultRepository())

	w := do(t, r, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"boardMode":"distractors"`)
	assert.Contains(t, w.Body.String(), `"質數"`)

	w = do(t, r, http.MethodGet, "/target-sequence?difficulty=easy&rule=prime", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"max":9,"sequence":[2,3,5,7]}`, w.Body.String())
}
