package domain

// Problem is the error body returned by the REST API.
type Problem struct {
	Title       string       `json:"title"`
	Status      int          `json:"status"`
	Message     string       `json:"message,omitempty"`
	EntityName  string       `json:"entityName,omitempty"`
	ErrorKey    string       `json:"errorKey,omitempty"`
	Params      string       `json:"params,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}
