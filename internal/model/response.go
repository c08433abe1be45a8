package model

// ClassificationHot marks items whose score rose above their historical score.
const ClassificationHot = "Hot"

// EngagementScore holds the current and historical score for one issue.
// Classification is set to "Hot" when the score increased; otherwise it is
// omitted entirely rather than carrying a false value.
type EngagementScore struct {
	Score          int    `json:"score"`
	PreviousScore  int    `json:"previousScore"`
	Classification string `json:"classification,omitempty"`
}

// EngagementItem is one scored issue, optionally tied to a project item.
// ProjectItemID is empty in single-issue mode.
type EngagementItem struct {
	ProjectItemID string          `json:"projectItemId,omitempty"`
	Owner         string          `json:"owner"`
	Repo          string          `json:"repo"`
	Number        int             `json:"number"`
	Title         string          `json:"title,omitempty"`
	Engagement    EngagementScore `json:"engagement"`
}

// EngagementResponse is the engine's sole output artifact.
type EngagementResponse struct {
	Items      []EngagementItem `json:"items"`
	TotalItems int              `json:"totalItems"`
	Project    *Project         `json:"project,omitempty"`
}
