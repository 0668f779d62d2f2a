package domain

// Role is the side a user plays in a call.
type Role int

const (
	RoleNone Role = iota
	RoleCaller
	RoleCallee
)
