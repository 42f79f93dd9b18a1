package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `interntrack keeps a list of internship postings per user and moves each one through new -> applied -> rejected.

Workflow:
1) Look: list_internships (optionally filtered by status) or get_stats. Results come from a per-session snapshot.
2) Act: apply_internship, reject_internship or delete_internship with the id from the list.
   - apply only works on new internships; reject works on new or applied; rejecting twice is a no-op.
   - delete first marks the internship rejected, then removes it. If removal fails it stays visible as rejected.
   - Every action returns a result with a reason. When "invalidated" is true, list again to see the new state.
3) Refresh: refresh_internships reloads from the store when data may have changed elsewhere.
4) History: get_history lists date, title, company, action taken and link.

Docs:
- interntrack://docs/statuses
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "interntrack://docs/statuses",
		Name:        "docs_statuses",
		Title:       "Internship statuses and actions",
		Description: "Which actions are allowed from each status and how the list is ordered.",
		Content: `# Statuses

| current  | apply              | reject                 | delete                |
|----------|--------------------|------------------------|-----------------------|
| new      | applied            | rejected               | rejected, then removed |
| applied  | not allowed        | rejected               | rejected, then removed |
| rejected | not allowed        | no-op (already)        | removed               |

Statuses are compared case-insensitively. Unknown statuses can only be deleted.

# Ordering

list_internships sorts new first, then applied, then rejected, then anything else.
Within a status the most recently added comes first; entries with an unreadable
date go last.

# Errors

Failed tool calls return a code:
- NOT_AUTHENTICATED: no session.
- NOT_FOUND: the id is not in your list.
- INVALID_TRANSITION: the action is not allowed from the current status.
- STORE_FAILURE: the database call failed; nothing was changed in your list.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
