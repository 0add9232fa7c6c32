package models

// Group represents a set of members who share expenses.
//
// A direct group is system-created to hold one fixed, unordered member set
// (a 1:1 pair, or an ad-hoc set from a non-group expense or a leftover
// settlement). Direct groups carry IsDirect=true and an empty name; the flag,
// not the name, is what marks them, so a user naming a group blank is never
// confused with a system-created one.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name. Empty for direct groups.
	Name string

	// IsDirect marks a system-created group holding a fixed member set.
	IsDirect bool

	// CreatorID is the user who created the group.
	CreatorID string

	// Members is the list of member user IDs. Membership has no ordering
	// semantics.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
