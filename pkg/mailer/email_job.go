package mailer

// Template names understood by the email worker.
const (
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "password_reset"
	TemplateContact       = "contact"
	TemplateContactCopy   = "contact_copy"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template selects one of the embedded template sets; Data feeds it.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}
