package users

import "time"

// Profile holds the account fields a user can see and edit in settings.
type Profile struct {
	ID        int64
	Name      string
	Email     string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SettingsInput carries a settings update request.
type SettingsInput struct {
	Name     string
	Email    string
	ImageURL string
}
