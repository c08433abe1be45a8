package collector

import (
	"embed"
	"fmt"
)

//go:embed queries/*.graphql
var queryFiles embed.FS

// Query documents loaded at init time.
var (
	issueEngagementQuery  string
	commentReactionsQuery string
	projectItemsOrgQuery  string
	projectItemsUserQuery string
)

func init() {
	issueEngagementQuery = mustLoadQuery("queries/issue_engagement.graphql")
	commentReactionsQuery = mustLoadQuery("queries/comment_reactions.graphql")
	projectItemsOrgQuery = mustLoadQuery("queries/project_items_org.graphql")
	projectItemsUserQuery = mustLoadQuery("queries/project_items_user.graphql")
}

func mustLoadQuery(name string) string {
	data, err := queryFiles.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s: %v", name, err))
	}
	return string(data)
}
