package domain

import "fmt"

// Level says whether a folder hangs off the client record or a project record.
type Level string

const (
	LevelClient  Level = "client"
	LevelProject Level = "project"
)

// FallbackFolder is where classification lands when neither the type mapping
// nor the category defaults know where a file belongs.
const FallbackFolder = "miscellaneous"

// Placement is a resolved storage location for a classified document.
type Placement struct {
	Folder string
	Level  Level
}

// FallbackPlacement returns the global last-resort placement.
func FallbackPlacement() Placement {
	return Placement{Folder: FallbackFolder, Level: LevelClient}
}

// IsValidLevel checks if a Level is valid
func IsValidLevel(l Level) bool {
	return l == LevelClient || l == LevelProject
}

// ValidatePlacement validates a Placement instance
func ValidatePlacement(p Placement) error {
	if p.Folder == "" {
		return fmt.Errorf("placement folder is required")
	}
	if !IsValidLevel(p.Level) {
		return fmt.Errorf("placement level is invalid: %s", p.Level)
	}
	return nil
}
