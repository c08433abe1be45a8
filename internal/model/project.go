package model

// Project identifies a project board.
type Project struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title,omitempty"`
	Owner  string `json:"owner"`
}

// ProjectItem is a project board row whose content is an issue.
// Rows referencing other content types are filtered out by the collector.
type ProjectItem struct {
	ID      string `json:"id"`
	IssueID string `json:"issueId,omitempty"`
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	Number  int    `json:"number"`
}

// ProjectField is one field of a project board.
type ProjectField struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DataType string `json:"dataType,omitempty"`
}
