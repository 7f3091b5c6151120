package domain

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	User *User
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(user *User) *Member {
	return &Member{User: user}
}

// Name is the display name the member currently carries.
func (m *Member) Name() string {
	if m == nil || m.User == nil {
		return ""
	}
	return m.User.Username
}
