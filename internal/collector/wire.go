package collector

import (
	"time"

	"github.com/spiffcs/engage/internal/model"
)

// Wire types mirroring the GraphQL response shapes. Kept private to the
// collector; everything downstream sees only internal/model.

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type actor struct {
	Typename string `json:"__typename"`
	Login    string `json:"login"`
}

func (a *actor) toUser() model.UserInfo {
	if a == nil {
		// Deleted accounts come back as a null author.
		return model.UserInfo{Login: "ghost"}
	}
	u := model.UserInfo{Login: a.Login}
	switch a.Typename {
	case "Bot":
		u.Type = model.UserTypeBot
	case "Organization":
		u.Type = model.UserTypeOrg
	case "User":
		u.Type = model.UserTypeUser
	}
	return u
}

type reactionNode struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

func (r reactionNode) toModel() model.ReactionData {
	return model.ReactionData{
		User:      model.UserInfo{Login: r.User.Login},
		Reaction:  r.Content,
		CreatedAt: r.CreatedAt,
	}
}

type reactionConnection struct {
	PageInfo pageInfo       `json:"pageInfo"`
	Nodes    []reactionNode `json:"nodes"`
}

type commentNode struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Author    *actor             `json:"author"`
	Reactions reactionConnection `json:"reactions"`
}

type commentConnection struct {
	PageInfo pageInfo      `json:"pageInfo"`
	Nodes    []commentNode `json:"nodes"`
}

type issueWire struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt"`
	Author    *actor     `json:"author"`
	Assignees struct {
		Nodes []actor `json:"nodes"`
	} `json:"assignees"`
	ClosedByPullRequestsReferences struct {
		TotalCount int `json:"totalCount"`
	} `json:"closedByPullRequestsReferences"`
	Comments  commentConnection  `json:"comments"`
	Reactions reactionConnection `json:"reactions"`
}

type issuePayload struct {
	Repository struct {
		Issue *issueWire `json:"issue"`
	} `json:"repository"`
}

// commentReactionsPayload is the node(id:) follow-up for multi-page comment
// reactions.
type commentReactionsPayload struct {
	Node *struct {
		Reactions reactionConnection `json:"reactions"`
	} `json:"node"`
}

type projectItemNode struct {
	ID      string `json:"id"`
	Content struct {
		Typename   string `json:"__typename"`
		ID         string `json:"id"`
		Number     int    `json:"number"`
		Repository struct {
			Name  string `json:"name"`
			Owner struct {
				Login string `json:"login"`
			} `json:"owner"`
		} `json:"repository"`
	} `json:"content"`
}

type projectV2Wire struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Items  struct {
		PageInfo pageInfo          `json:"pageInfo"`
		Nodes    []projectItemNode `json:"nodes"`
	} `json:"items"`
}

type projectPayload struct {
	Organization *struct {
		ProjectV2 *projectV2Wire `json:"projectV2"`
	} `json:"organization"`
	User *struct {
		ProjectV2 *projectV2Wire `json:"projectV2"`
	} `json:"user"`
}

// projectV2 returns the project from whichever owner scope answered.
func (p *projectPayload) projectV2() *projectV2Wire {
	if p.Organization != nil && p.Organization.ProjectV2 != nil {
		return p.Organization.ProjectV2
	}
	if p.User != nil && p.User.ProjectV2 != nil {
		return p.User.ProjectV2
	}
	return nil
}
