package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is read from the external user/team store. Email is always present
// for a registered user; phone and telegram chat id are optional.
type User struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone,omitempty"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty"`
	TeamID         *int64 `json:"team_id,omitempty"`
	Role           string `json:"role"`
	IsActive       bool   `json:"is_active"`
}

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Caller is the already-authenticated identity attached to each request by
// the external identity layer. The core only checks the role flag.
type Caller struct {
	UserID int64
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// SystemCaller is used for deliveries driven by background tasks and the
// event ingest, which are not tied to a request.
var SystemCaller = Caller{UserID: 0, Role: RoleAdmin}
