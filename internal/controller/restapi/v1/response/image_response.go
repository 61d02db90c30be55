package response

type Image struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Owner    string `json:"owner"`
}

type Error struct {
	Error string `json:"error"`
}
