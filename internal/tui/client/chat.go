package client

import (
	"context"
	"fmt"

	"github.com/eonjenawa/eonjenawa-cli/internal/models"
)

// RoomMessages fetches the most recent limit messages of a company's room, oldest
// first.
func (c *APIClient) RoomMessages(ctx context.Context, companyID int64, limit int) ([]models.ChatMessage, error) {
	body, err := c.get(ctx, fmt.Sprintf("/chat/room/%d/messages?limit=%d", companyID, limit))
	if err != nil {
		return nil, err
	}
	return decode[[]models.ChatMessage](body)
}

// Companies lists the companies that have a chat room.
func (c *APIClient) Companies(ctx context.Context) ([]models.Company, error) {
	body, err := c.get(ctx, "/companies")
	if err != nil {
		return nil, err
	}
	return decode[[]models.Company](body)
}
