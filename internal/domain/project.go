package domain

import (
	"fmt"
	"time"
)

// Project represents a deal or engagement belonging to a client.
// Project-level folders hang off this.
type Project struct {
	ID        string
	OrgID     string
	ClientID  string
	Name      string
	CreatedAt time.Time
}

// NewProject creates a new Project instance
func NewProject(id, orgID, clientID, name string, createdAt time.Time) *Project {
	return &Project{
		ID:        id,
		OrgID:     orgID,
		ClientID:  clientID,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// ValidateProject validates a Project instance
func ValidateProject(p *Project) error {
	if p == nil {
		return fmt.Errorf("project cannot be nil")
	}

	if p.ID == "" {
		return fmt.Errorf("project ID is required")
	}

	if p.OrgID == "" {
		return fmt.Errorf("project OrgID is required")
	}

	if p.ClientID == "" {
		return fmt.Errorf("project ClientID is required")
	}

	if p.Name == "" {
		return fmt.Errorf("project Name is required")
	}

	return nil
}
