package models

// User is a directory user record.
type User struct {
	PrimaryEmail string   `json:"primaryEmail"`
	Name         UserName `json:"name"`
}

type UserName struct {
	FullName string `json:"fullName"`
}

// Group is a directory group record.
type Group struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type MemberRole string

const (
	MemberRoleMember  MemberRole = "MEMBER"
	MemberRoleManager MemberRole = "MANAGER"
	MemberRoleOwner   MemberRole = "OWNER"
)

// Member is a group membership record.
type Member struct {
	Email string     `json:"email"`
	Role  MemberRole `json:"role"`
}
