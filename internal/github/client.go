package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/asahigaoka/sitehooks/internal/apperr"
	"github.com/asahigaoka/sitehooks/internal/logger"
	"github.com/asahigaoka/sitehooks/internal/models"
	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned by GetFile when the path does not exist on the branch.
var ErrNotFound = errors.New("file not found")

// Client reads and writes files of one repository branch through the
// contents API.
type Client struct {
	client  *resty.Client
	repo    string
	branch  string
	timeout time.Duration
}

type contentsResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

type deleteRequest struct {
	Message string `json:"message"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

func NewClient(apiURL, token, repo, branch string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(apiURL, "/")).
			SetHeader("Authorization", "token "+token).
			SetHeader("Accept", "application/vnd.github.v3+json"),
		repo:    repo,
		branch:  branch,
		timeout: timeout,
	}
}

func (c *Client) contentsPath(path string) string {
	return fmt.Sprintf("/repos/%s/contents/%s", c.repo, strings.TrimLeft(path, "/"))
}

// GetFile returns the file content and its current sha.
func (c *Client) GetFile(ctx context.Context, path string) (*models.RepoFile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("ref", c.branch).
		Get(c.contentsPath(path))
	if err != nil {
		return nil, apperr.Connectivity(err, "repository unreachable")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.IsError() {
		logger.Get().Error().
			Int("status", resp.StatusCode()).
			Str("path", path).
			Str("body", resp.String()).
			Msg("Repository read failed")
		return nil, apperr.Upstream(resp.StatusCode(), resp.String(), "GitHub API error: %d", resp.StatusCode())
	}

	var body contentsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, apperr.Unexpected(err, "malformed repository response")
	}

	// the API wraps base64 at 60 columns
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return nil, apperr.Unexpected(err, "repository content is not base64")
	}

	return &models.RepoFile{Path: path, Content: content, SHA: body.SHA}, nil
}

// PutFile creates the file, or updates it with its current sha when it
// already exists.
func (c *Client) PutFile(ctx context.Context, path string, content []byte, message string) error {
	var sha string
	existing, err := c.GetFile(ctx, path)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	default:
		sha = existing.SHA
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(putRequest{
			Message: message,
			Content: base64.StdEncoding.EncodeToString(content),
			Branch:  c.branch,
			SHA:     sha,
		}).
		Put(c.contentsPath(path))
	if err != nil {
		return apperr.Connectivity(err, "repository unreachable")
	}
	if resp.IsError() {
		logger.Get().Error().
			Int("status", resp.StatusCode()).
			Str("path", path).
			Str("body", resp.String()).
			Msg("Repository write failed")
		return apperr.Upstream(resp.StatusCode(), resp.String(), "GitHub API error: %d", resp.StatusCode())
	}

	logger.Get().Info().Str("path", path).Bool("created", sha == "").Msg("Pushed file")
	return nil
}

// DeleteFile removes the file. It reports false, without error, when the
// file did not exist.
func (c *Client) DeleteFile(ctx context.Context, path, message string) (bool, error) {
	existing, err := c.GetFile(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(deleteRequest{Message: message, SHA: existing.SHA, Branch: c.branch}).
		Delete(c.contentsPath(path))
	if err != nil {
		return false, apperr.Connectivity(err, "repository unreachable")
	}
	// deleted between our read and the delete
	if resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if resp.IsError() {
		return false, apperr.Upstream(resp.StatusCode(), resp.String(), "GitHub API error: %d", resp.StatusCode())
	}

	logger.Get().Info().Str("path", path).Msg("Deleted file")
	return true, nil
}
