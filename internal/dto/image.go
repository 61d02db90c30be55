package dto

// UpdateImage carries the PATCH payload. An empty string means the field
// was not provided; at least one field must be set.
type UpdateImage struct {
	FileName string `json:"file_name"`
	Owner    string `json:"owner"`
}

func (u UpdateImage) Empty() bool {
	return u.FileName == "" && u.Owner == ""
}
