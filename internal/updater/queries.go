package updater

import (
	"embed"
	"fmt"
)

//go:embed queries/*.graphql
var queryFiles embed.FS

var (
	projectFieldsOrgQuery  string
	projectFieldsUserQuery string
	updateFieldMutation    string
)

func init() {
	projectFieldsOrgQuery = mustLoadQuery("queries/project_fields_org.graphql")
	projectFieldsUserQuery = mustLoadQuery("queries/project_fields_user.graphql")
	updateFieldMutation = mustLoadQuery("queries/update_field_value.graphql")
}

func mustLoadQuery(name string) string {
	data, err := queryFiles.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s: %v", name, err))
	}
	return string(data)
}
