package forms

// FormSummary is one entry of the form listing, keyed by form id
type FormSummary struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// FormResponse describes a single form
type FormResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}
