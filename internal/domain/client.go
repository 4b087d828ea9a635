package domain

import (
	"fmt"
	"time"
)

// Client represents a CRM client record. Client-level folders hang off this.
type Client struct {
	ID        string
	OrgID     string
	Name      string
	CreatedAt time.Time
}

// NewClient creates a new Client instance
func NewClient(id, orgID, name string, createdAt time.Time) *Client {
	return &Client{
		ID:        id,
		OrgID:     orgID,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// ValidateClient validates a Client instance
func ValidateClient(c *Client) error {
	if c == nil {
		return fmt.Errorf("client cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("client ID is required")
	}

	if c.OrgID == "" {
		return fmt.Errorf("client OrgID is required")
	}

	if c.Name == "" {
		return fmt.Errorf("client Name is required")
	}

	return nil
}
