package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/go-playground/assert/v2"
)

func TestWorkflowRunSendsBlockingRequest(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"outputs":{"usage":"{}"}}}`)
	}))
	defer srv.Close()

	client := NewWorkflowClient(srv.URL, "app-key", "asahigaoka-cms", 5*time.Second)
	inputs := GenerateInputs(ArticleBrief{Title: "T", Summary: "S", Date: "2024-05-01"}, "https://asahigaoka-nerima.tokyo/town.html")

	outputs, err := client.Run(context.Background(), inputs)

	assert.Equal(t, nil, err)
	assert.Equal(t, "{}", outputs["usage"])
	assert.Equal(t, "Bearer app-key", auth)
	assert.Equal(t, "blocking", got["response_mode"])
	assert.Equal(t, "asahigaoka-cms", got["user"])

	sent := got["inputs"].(map[string]any)
	assert.Equal(t, "T", sent["title"])
	assert.Equal(t, "S", sent["summary"])
	assert.Equal(t, "2024-05-01", sent["date"])
	assert.Equal(t, "https://asahigaoka-nerima.tokyo/town.html", sent["intro_url"])
	_, hasPicture := sent["picture"]
	assert.Equal(t, false, hasPicture)
	_, hasDateTo := sent["date_to"]
	assert.Equal(t, false, hasDateTo)
}

func TestWorkflowRunErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   apperr.Kind
		wantStatus int
		wantMsg    string
	}{
		{"upstream error", http.StatusTooManyRequests, `{"message":"rate limited"}`, apperr.KindUpstream, http.StatusTooManyRequests, "Dify API呼び出しエラー: 429"},
		{"missing outputs", http.StatusOK, `{"data":{"status":"failed"}}`, apperr.KindUpstream, http.StatusBadGateway, "レスポンスの形式が不正です"},
		{"not json", http.StatusOK, `<html>`, apperr.KindUpstream, http.StatusBadGateway, "レスポンスの形式が不正です"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewWorkflowClient(srv.URL, "k", "u", time.Second).Run(context.Background(), map[string]any{})

			e, ok := apperr.As(err)
			assert.Equal(t, true, ok)
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.wantStatus, e.HTTPStatus())
			assert.Equal(t, tt.wantMsg, e.Message)
		})
	}
}

func TestWorkflowRunConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewWorkflowClient(url, "k", "u", time.Second).Run(context.Background(), map[string]any{})

	assert.Equal(t, apperr.KindConnectivity, apperr.KindOf(err))
}

func TestGenerateInputsWithImage(t *testing.T) {
	inputs := GenerateInputs(ArticleBrief{ImageURL: "https://asahigaoka-nerima.tokyo/i.png", DateTo: "2024-05-02", IntroURL: "https://x"}, "fallback")

	assert.Equal(t, "https://x", inputs["intro_url"])
	assert.Equal(t, "2024-05-02", inputs["date_to"])
	assert.Equal(t, "", inputs["title"])
	assert.Equal(t, []map[string]string{{
		"type":            "image",
		"transfer_method": "remote_url",
		"url":             "https://asahigaoka-nerima.tokyo/i.png",
	}}, inputs["picture"])
}

func TestChatClientSend(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"answer":"こんにちは","conversation_id":"conv-2"}`)
	}))
	defer srv.Close()

	reply, err := NewChatClient(srv.URL, "k", time.Second).Send(context.Background(), "やあ", "line_user_U1", "conv-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, "こんにちは", reply.Answer)
	assert.Equal(t, "conv-2", reply.ConversationID)
	assert.Equal(t, "やあ", got.Query)
	assert.Equal(t, "line_user_U1", got.User)
	assert.Equal(t, "conv-1", got.ConversationID)
	assert.Equal(t, "blocking", got.ResponseMode)
}

func TestChatClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewChatClient(srv.URL, "k", time.Second).Send(context.Background(), "q", "u", "")

	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
