package models

import "time"

// TimeLayout is the format of the "time" field on submissions.
const TimeLayout = "2006-01-02 15:04"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ValidStatus reports whether s is one of the statuses an admin may set.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Admin struct {
	Username string `json:"username"`
	Password string `json:"password"` // bcrypt hash
}

type CustomerSubmission struct {
	TrackID     string `json:"track_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Image       string `json:"image"`
	Message     string `json:"message"`
	SubmittedAt string `json:"time"`
	Status      Status `json:"status"`
}

type EmployeeApplication struct {
	TrackID     string `json:"track_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	NationalID  string `json:"aadhar"`
	DocFile     string `json:"aadhar_file"`
	WorkType    string `json:"work_type"`
	Experience  string `json:"experience"`
	Message     string `json:"message"`
	Status      Status `json:"status"`
	SalaryModel string `json:"salary_model"`
	AdminNote   string `json:"admin_note"`
	SubmittedAt string `json:"time"`
}

// DefaultSalaryModel is set on new employee applications.
const DefaultSalaryModel = "Not decided"

// ChatTicket is a chat question the assistant could not answer.
// Reply stays nil while the ticket is pending.
type ChatTicket struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Reply      *string    `json:"reply,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitzero"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

// ChatTurn is one entry of a conversation history.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type GalleryImage struct {
	Gallery  string `json:"gallery"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}
