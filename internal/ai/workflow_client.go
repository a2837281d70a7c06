package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/go-resty/resty/v2"
)

const responseModeBlocking = "blocking"

// WorkflowClient runs a workflow app of the LLM workflow service in blocking mode.
type WorkflowClient struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	user     string
	timeout  time.Duration
}

type workflowRequest struct {
	Inputs       map[string]any `json:"inputs"`
	ResponseMode string         `json:"response_mode"`
	User         string         `json:"user"`
}

type workflowResponse struct {
	Data *struct {
		Outputs map[string]any `json:"outputs"`
	} `json:"data"`
}

func NewWorkflowClient(endpoint, apiKey, user string, timeout time.Duration) *WorkflowClient {
	return &WorkflowClient{
		client:   resty.New(),
		endpoint: endpoint,
		apiKey:   apiKey,
		user:     user,
		timeout:  timeout,
	}
}

// Run posts the inputs and returns data.outputs of the workflow result.
func (w *WorkflowClient) Run(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	log := logger.Get()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+w.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(workflowRequest{
			Inputs:       inputs,
			ResponseMode: responseModeBlocking,
			User:         w.user,
		}).
		Post(w.endpoint)
	if err != nil {
		log.Error().Err(err).Str("endpoint", w.endpoint).Msg("Workflow request failed")
		return nil, apperr.Connectivity(err, "Dify APIへの接続に失敗しました")
	}

	if resp.IsError() {
		log.Error().
			Int("status", resp.StatusCode()).
			Str("body", resp.String()).
			Msg("Workflow returned an error")
		return nil, apperr.Upstream(resp.StatusCode(), resp.String(), "Dify API呼び出しエラー: %d", resp.StatusCode())
	}

	var out workflowResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.Data == nil || out.Data.Outputs == nil {
		log.Error().Str("body", resp.String()).Msg("Workflow response has no data.outputs")
		return nil, apperr.Upstream(0, resp.String(), "レスポンスの形式が不正です")
	}

	return out.Data.Outputs, nil
}
