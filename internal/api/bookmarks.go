package api

import (
	"context"
	"net/http"

	"evscout/internal/model"
)

// checkBookmarkResponse is the body of GET /bookmarks/{id}/check.
type checkBookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

// Bookmarks lists the user's saved events.
func (c *Client) Bookmarks(ctx context.Context) ([]model.Bookmark, error) {
	var bms []model.Bookmark
	if err := c.do(ctx, http.MethodGet, "/bookmarks", nil, nil, &bms); err != nil {
		return nil, err
	}
	return bms, nil
}

// AddBookmark saves an event for the logged-in user.
func (c *Client) AddBookmark(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodPost, "/bookmarks/"+eventID, nil, nil, nil)
}

// RemoveBookmark deletes a saved event.
func (c *Client) RemoveBookmark(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodDelete, "/bookmarks/"+eventID, nil, nil, nil)
}

// IsBookmarked reports whether the given event is saved.
func (c *Client) IsBookmarked(ctx context.Context, eventID string) (bool, error) {
	var out checkBookmarkResponse
	if err := c.do(ctx, http.MethodGet, "/bookmarks/"+eventID+"/check", nil, nil, &out); err != nil {
		return false, err
	}
	return out.Bookmarked, nil
}
