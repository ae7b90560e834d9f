package activity

import "time"

// ActivityType represents the type of journal event
type ActivityType string

const (
	TypeProjectRegistered  ActivityType = "project_registered"
	TypeProjectRemoved     ActivityType = "project_removed"
	TypeClassAdded         ActivityType = "class_added"
	TypeClassRenamed       ActivityType = "class_renamed"
	TypeClassRemoved       ActivityType = "class_removed"
	TypeTagCreated         ActivityType = "tag_created"
	TypeTagRenamed         ActivityType = "tag_renamed"
	TypeTagAssigned        ActivityType = "tag_assigned"
	TypeTagUnassigned      ActivityType = "tag_unassigned"
	TypeSettingToggled     ActivityType = "setting_toggled"
	TypeTimersUpdated      ActivityType = "timers_updated"
	TypeVideosFlipped      ActivityType = "videos_flipped"
	TypeRenameRolledBack   ActivityType = "rename_rolled_back"
	TypeLayoutInconsistent ActivityType = "layout_inconsistent"
)

// ActivityEntry represents an event in the operation journal
type ActivityEntry struct {
	ID           int64        `json:"id"`
	OperationID  string       `json:"op_id"`
	ProjectPath  string       `json:"project_path"`
	ClassName    *string      `json:"class_name,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
