// Package googletasks implements the store.Store contract using the
// Google Tasks API as the remote side of the sync pair.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasksync/internal/config"
	"tasksync/internal/store"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements store.Store against one Google Tasks list.
//
// Google Tasks assigns task ids server-side. Saving a task whose id is
// unknown to the remote inserts a copy under a new remote id; the two
// stores then diverge until the next full refresh replaces the local
// snapshot with the remote one.
type Client struct {
	svc    *tasks.Service
	listID string
}

// New creates a new Google Tasks client for the configured list.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Client{svc: svc, listID: cfg.ListOrDefault()}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and
// optional extra SDK options (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Client{svc: svc, listID: listID}, nil
}

// List returns the full current remote snapshot, completed tasks included.
func (c *Client) List(ctx context.Context) ([]store.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []store.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, fromAPI(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	return result, nil
}

// Get returns one remote task by id.
func (c *Client) Get(ctx context.Context, id string) (store.Task, error) {
	if id == "" {
		return store.Task{}, store.ErrEmptyID
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	t, err := c.svc.Tasks.Get(c.listID, id).Context(ctx).Do()
	if err != nil {
		return store.Task{}, wrapError(err)
	}
	return fromAPI(t), nil
}

// Save patches the remote task with the same id, inserting it when the
// id is unknown to the remote. See the Client doc for the id caveat.
func (c *Client) Save(ctx context.Context, t store.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.svc.Tasks.Patch(c.listID, t.ID, toAPI(t)).Context(ctx).Do()
	if errors.Is(wrapError(err), store.ErrNotFound) {
		_, err = c.svc.Tasks.Insert(c.listID, toAPI(t)).Context(ctx).Do()
	}
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// SetCompleted sets the completed flag on the given task.
func (c *Client) SetCompleted(ctx context.Context, t store.Task, completed bool) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return c.SetCompletedByID(ctx, t.ID, completed)
}

// SetCompletedByID sets the completed flag on the task with the given id.
func (c *Client) SetCompletedByID(ctx context.Context, id string, completed bool) error {
	if id == "" {
		return store.ErrEmptyID
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	status := statusNeedsAction
	if completed {
		status = statusCompleted
	}
	_, err := c.svc.Tasks.Patch(c.listID, id, &tasks.Task{Status: status}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteAllCompleted removes every completed remote task.
// Two-phase: fetch the snapshot, then issue one delete at a time.
// The first failed delete aborts the remainder of the sequence;
// tasks already deleted stay deleted.
func (c *Client) DeleteAllCompleted(ctx context.Context) error {
	snapshot, err := c.List(ctx)
	if err != nil {
		return err
	}

	for _, t := range snapshot {
		if !t.Completed {
			continue
		}
		if err := c.Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll removes every remote task, one delete at a time.
func (c *Client) DeleteAll(ctx context.Context) error {
	snapshot, err := c.List(ctx)
	if err != nil {
		return err
	}

	for _, t := range snapshot {
		if err := c.Delete(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the remote task with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return store.ErrEmptyID
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// RefreshAll is a no-op: the remote backend is the side being pulled
// from; reconciliation lives in the repository.
func (c *Client) RefreshAll(ctx context.Context) error {
	return nil
}

// RefreshOne is a no-op, see RefreshAll.
func (c *Client) RefreshOne(ctx context.Context, id string) error {
	return nil
}

func fromAPI(t *tasks.Task) store.Task {
	return store.Task{
		ID:          t.Id,
		Title:       t.Title,
		Description: t.Notes,
		Completed:   t.Status == statusCompleted,
	}
}

func toAPI(t store.Task) *tasks.Task {
	status := statusNeedsAction
	if t.Completed {
		status = statusCompleted
	}
	return &tasks.Task{
		Id:     t.ID,
		Title:  t.Title,
		Notes:  t.Description,
		Status: status,
	}
}

// wrapError maps API errors onto the store error kinds.
// A 404 is a distinct NotFound; everything else transport-shaped
// becomes Unavailable. Context errors pass through untouched.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound {
			return store.ErrNotFound
		}
		return fmt.Errorf("%w: google tasks: %v", store.ErrUnavailable, apiErr)
	}

	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
