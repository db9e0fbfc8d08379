package models

// MemberStatus represents whether a member has been accepted into a household.
type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusApproved MemberStatus = "approved"
)

// Household groups the members that share finances.
type Household struct {
	Base
	Name            string   `gorm:"not null" json:"name"`
	CreatedByUserID string   `gorm:"type:uuid;not null" json:"created_by_user_id"`
	Members         []Member `gorm:"foreignKey:HouseholdID" json:"members,omitempty"`
}

// Member is a participant in a household. Members without a user account are
// allowed so that a household can track someone who never signs in.
type Member struct {
	Base
	HouseholdID string       `gorm:"type:uuid;not null;index" json:"household_id"`
	UserID      *string      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	DisplayName string       `gorm:"not null" json:"display_name"`
	Status      MemberStatus `gorm:"not null;default:'pending'" json:"status"`
}

// IsApproved reports whether the member counts toward household balances.
func (m *Member) IsApproved() bool {
	return m.Status == MemberStatusApproved
}
