package rag_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/replyflow/replyflow/pkg/adapters/rag"
	"github.com/replyflow/replyflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk_Success(t *testing.T) {
	var gotQuery map[string]string
	var gotHistory []domain.HistoryItem

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/rag", r.URL.Path)
		gotQuery = map[string]string{
			"chatbot_id":   r.URL.Query().Get("chatbot_id"),
			"user_message": r.URL.Query().Get("user_message"),
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotHistory))

		json.NewEncoder(w).Encode(map[string]any{
			"answer": "we are open 9-5",
			"sources": []map[string]any{
				{"text": "opening hours are 9-5", "score": 0.91, "filename": "handbook.pdf"},
			},
		})
	}))
	defer srv.Close()

	client := rag.New(srv.URL)
	answer, err := client.Ask(context.Background(), "bot-1", "What are your hours?", []domain.HistoryItem{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})

	require.NoError(t, err)
	assert.Equal(t, "we are open 9-5", answer.Answer)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "handbook.pdf", answer.Sources[0].Filename)
	assert.InDelta(t, 0.91, answer.Sources[0].Score, 1e-9)

	// The raw, non-normalized message text goes on the wire.
	assert.Equal(t, "bot-1", gotQuery["chatbot_id"])
	assert.Equal(t, "What are your hours?", gotQuery["user_message"])
	assert.Len(t, gotHistory, 2)
}

func TestAsk_EmptyHistorySendsEmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.JSONEq(t, "[]", string(raw))
		json.NewEncoder(w).Encode(map[string]any{"answer": "ok"})
	}))
	defer srv.Close()

	_, err := rag.New(srv.URL).Ask(context.Background(), "bot-1", "hi", nil)
	require.NoError(t, err)
}

func TestAsk_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := rag.New(srv.URL).Ask(context.Background(), "bot-1", "hi", nil)
	assert.Error(t, err)
}

func TestAsk_MalformedPayload(t *testing.T) {
	cases := map[string]string{
		"missing answer":    `{"sources": []}`,
		"null answer":       `{"answer": null}`,
		"non-string answer": `{"answer": 42}`,
		"not json":          `<html>oops</html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := rag.New(srv.URL).Ask(context.Background(), "bot-1", "hi", nil)
			assert.ErrorIs(t, err, rag.ErrContract)
		})
	}
}

func TestAsk_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]any{"answer": "too late"})
	}))
	defer srv.Close()

	client := rag.New(srv.URL, rag.WithTimeout(20*time.Millisecond))
	_, err := client.Ask(context.Background(), "bot-1", "hi", nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	assert.NoError(t, rag.New(srv.URL).Health(context.Background()))
}
