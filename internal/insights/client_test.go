package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardops.org/internal/cards"
)

func testClient(url string) *Client {
	c := New("test-key")
	c.BaseURL = url
	c.limiter = nil
	return c
}

func someTransactions(n int) []cards.Transaction {
	out := make([]cards.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, cards.Transaction{
			Merchant: fmt.Sprintf("Merchant-%d", i),
			Category: "Software",
			Amount:   float64(10 + i),
			Status:   cards.TxCompleted,
		})
	}
	return out
}

func TestSummarizeSuccess(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "Spend is concentrated in software."}}},
		})
	}))
	defer srv.Close()

	got := testClient(srv.URL).Summarize(context.Background(), someTransactions(3))
	assert.Equal(t, "Spend is concentrated in software.", got)

	msgs := captured["messages"].([]any)
	user := msgs[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "Total spent: $33.00")
	assert.Contains(t, user, "Merchant-0 (Software): $10.00")
}

func TestSummarizeTruncatesSample(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	_ = testClient(srv.URL).Summarize(context.Background(), someTransactions(25))

	user := captured["messages"].([]any)[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "Merchant-9")
	assert.NotContains(t, user, "Merchant-10")
}

func TestSummarizeFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	got := testClient(srv.URL).Summarize(context.Background(), someTransactions(2))
	assert.Equal(t, Fallback, got)
}

func TestSummarizeFallsBackWithoutKey(t *testing.T) {
	c := New("")
	c.BaseURL = "http://127.0.0.1:0" // must never be reached
	got := c.Summarize(context.Background(), someTransactions(1))
	assert.Equal(t, Fallback, got)
}

func TestSummarizeEmptyHistory(t *testing.T) {
	got := New("key").Summarize(context.Background(), nil)
	assert.Equal(t, emptyHistory, got)
}

func TestSummarizeBlankChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	got := testClient(srv.URL).Summarize(context.Background(), someTransactions(1))
	assert.Equal(t, blankAnswer, got)
}

func TestResultLifecycle(t *testing.T) {
	r := Idle()
	assert.Equal(t, StateIdle, r.State())
	_, ok := r.Value()
	assert.False(t, ok)
	assert.NoError(t, r.Err())

	r = InFlight()
	assert.Equal(t, StateInFlight, r.State())
	assert.NoError(t, r.Err())

	r = Settled("summary", nil)
	v, ok := r.Value()
	assert.True(t, ok)
	assert.Equal(t, "summary", v)

	r = Settled("", assert.AnError)
	_, ok = r.Value()
	assert.False(t, ok)
	assert.ErrorIs(t, r.Err(), assert.AnError)
}
