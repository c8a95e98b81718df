package models

type User struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	HashedPassword string `json:"-"` // never rendered or serialized
}

type Task struct {
	ID      int    `json:"id"`
	Text    string `json:"text"`
	OwnerID int    `json:"owner_id"`
}

// RegisterForm - values echoed back into the registration form
type RegisterForm struct {
	Username string
	Email    string
	Name     string
}

// PageData - data passed to the HTML templates
type PageData struct {
	Title       string
	CurrentPage string
	User        *User
	Tasks       []Task
	Invalid     bool
	Username    string // login form echo
	Register    RegisterForm
}
