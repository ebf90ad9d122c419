package domain

// RoomID is an opaque room identifier. A room has no record of its own:
// it exists exactly as long as some connection has it in its joined set.
type RoomID string

// DefaultCategories are the well-known rooms whose live occupancy is
// pushed to every client for the landing surface.
var DefaultCategories = []RoomID{"stress", "career", "relationships", "random"}
