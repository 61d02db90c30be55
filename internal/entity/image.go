package entity

import (
	"github.com/google/uuid"
)

// Image is the metadata row describing one stored blob. The blob itself
// lives in the object store under the hyphenated ID as key.
type Image struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	Owner    string    `json:"owner"`
}
