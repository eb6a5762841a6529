package domain

// Prompt is a reusable instruction used to generate aggregate reports.
type Prompt struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PromptText  string `json:"promptText"`
}

// AggregateReport is a cross-interview synthesis. It is only ever created by
// report generation and has no update path.
type AggregateReport struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	GeneratedSummary   string     `json:"generatedSummary"`
	SourceInterviewIDs []string   `json:"sourceInterviewIds"`
	PromptID           string     `json:"promptId"`
	DateGenerated      string     `json:"dateGenerated"`
	ReportType         ReportType `json:"reportType"`
}

type Program struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserRole string

const (
	RoleAdmin  UserRole = "Admin"
	RoleEditor UserRole = "Editor"
	RoleViewer UserRole = "Viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
}
