package submit

import "github.com/h190k/formrelay/internal/forms"

// SubmitRequest represents a form submission. FormID may be omitted when the
// form is named in the path.
type SubmitRequest struct {
	FormID       string     `json:"form_id"`
	Data         forms.Data `json:"data"`
	CaptchaToken string     `json:"captcha_token,omitempty"`
	Origin       string     `json:"origin,omitempty"`
}
