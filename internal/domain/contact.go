package domain

import "time"

type ContactStatus string

const (
	ContactPending ContactStatus = "pending"
	ContactRead    ContactStatus = "read"
	ContactReplied ContactStatus = "replied"
)

func ParseContactStatus(s string) (ContactStatus, bool) {
	switch ContactStatus(s) {
	case ContactPending, ContactRead, ContactReplied:
		return ContactStatus(s), true
	default:
		return "", false
	}
}

type Contact struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type ContactCreateReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type ContactPatch struct {
	Status *string `json:"status"`
}
