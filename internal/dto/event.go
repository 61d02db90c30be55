package dto

// Action names a record lifecycle transition published to the outbox.
type Action string

const (
	ActionUploaded Action = "uploaded"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
)
