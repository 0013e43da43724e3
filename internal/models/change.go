package models

// ChangeKind is the type of remote mutation that triggered a ChangeEvent.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent tells subscribers that some record of Collection changed.
// It is a hint to refresh, never a patch: ID is best effort and no payload
// is carried.
type ChangeEvent struct {
	Collection string     `json:"collection"`
	Kind       ChangeKind `json:"kind"`
	ID         string     `json:"id,omitempty"`
}
