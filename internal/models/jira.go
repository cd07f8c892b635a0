package models

// JiraIssue is the create-issue request body.
type JiraIssue struct {
	Fields JiraFields `json:"fields"`
}

// JiraFields holds the fields of a tracker issue. There is no priority
// field: not every project exposes one on its create screen, so priority
// stays a ranking concern on our side.
type JiraFields struct {
	Project     JiraProject   `json:"project"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	IssueType   JiraIssueType `json:"issuetype"`
	Labels      []string      `json:"labels,omitempty"`
}

// JiraProject identifies the target project by key.
type JiraProject struct {
	Key string `json:"key"`
}

// JiraIssueType names the issue type.
type JiraIssueType struct {
	Name string `json:"name"`
}

// JiraResponse is the create-issue response.
type JiraResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// JiraProjectInfo describes an accessible project.
type JiraProjectInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// JiraIssueTypeInfo describes an issue type available in a project.
type JiraIssueTypeInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
