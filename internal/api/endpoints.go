package api

import (
	"context"
	"fmt"
	"net/http"

	"dayplan/internal/streak"
	"dayplan/internal/task"
)

// Login exchanges email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req := map[string]string{"email": email, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.do(ctx, c.anon, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.AccessToken, nil
}

func (c *Client) Tasks(ctx context.Context) ([]task.Task, error) {
	var resp struct {
		Tasks []task.Task `json:"tasks"`
	}
	if err := c.get(ctx, "/api/tasks", &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (c *Client) Task(ctx context.Context, id int64) (task.Task, error) {
	var resp struct {
		Task task.Task `json:"task"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/tasks/%d", id), &resp); err != nil {
		return task.Task{}, err
	}
	return resp.Task, nil
}

func (c *Client) CreateTask(ctx context.Context, in task.Input) (task.Task, error) {
	var resp struct {
		Task task.Task `json:"task"`
	}
	if err := c.do(ctx, c.authed, http.MethodPost, "/api/tasks", in, &resp); err != nil {
		return task.Task{}, err
	}
	return resp.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, in task.Input) (task.Task, error) {
	var resp struct {
		Task task.Task `json:"task"`
	}
	if err := c.do(ctx, c.authed, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), in, &resp); err != nil {
		return task.Task{}, err
	}
	return resp.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, c.authed, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

func (c *Client) CompleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, c.authed, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", id), nil, nil)
}

func (c *Client) UncompleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, c.authed, http.MethodPost, fmt.Sprintf("/api/tasks/%d/uncomplete", id), nil, nil)
}

func (c *Client) Streaks(ctx context.Context) ([]streak.Streak, error) {
	var resp struct {
		Streaks []streak.Streak `json:"streaks"`
	}
	if err := c.get(ctx, "/api/streaks", &resp); err != nil {
		return nil, err
	}
	return resp.Streaks, nil
}

// Categories is public on the backend and is fetched without a token.
func (c *Client) Categories(ctx context.Context) ([]task.Category, error) {
	var resp struct {
		Categories []task.Category `json:"categories"`
	}
	if err := c.do(ctx, c.anon, http.MethodGet, "/api/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}
