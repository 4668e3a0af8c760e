package user

import "time"

// User represents a registered account. PasswordHash never serialises.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Name           string    `json:"name"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Public is the author projection embedded in feed entries.
type Public struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Public returns the display fields other users may see.
func (u User) Public() Public {
	return Public{
		ID:             u.ID,
		Name:           u.Name,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
	}
}

// ProfileUpdate is a partial profile mutation. Nil fields keep the stored
// value; a non-nil pointer to an empty string clears the field.
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Location *string `json:"location"`
}
