package domain

import "time"

// ProfileVisibility enumerates who can see a profile.
type ProfileVisibility string

const (
	ProfileVisibilityPublic  ProfileVisibility = "public"
	ProfileVisibilityPrivate ProfileVisibility = "private"
)

// Profile mirrors the persisted representation in the profiles table.
type Profile struct {
	ID         string
	Username   string
	Name       string
	Tagline    *string
	About      *string
	Skills     []string
	Location   *string
	Visibility ProfileVisibility
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPublic reports whether the profile is visible to other users.
func (p Profile) IsPublic() bool {
	return p.Visibility == ProfileVisibilityPublic
}

// ProfileStats aggregates counters shown on a profile page.
type ProfileStats struct {
	ProfileID  string
	Followers  int
	Following  int
	Projects   int
	ComputedAt time.Time
}

// ProfileFilter narrows profile listings. A zero filter means the default
// unfiltered listing, which is the only variant that gets cached.
type ProfileFilter struct {
	Skill    string
	Location string
}

// IsZero reports whether no filter criteria are set.
func (f ProfileFilter) IsZero() bool {
	return f.Skill == "" && f.Location == ""
}

// Page describes pagination bounds for listings.
type Page struct {
	Number  int
	PerPage int
}

// Offset converts the page to a row offset.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.PerPage
}
