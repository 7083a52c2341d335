package domain

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the
// given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// TalkStateEmailData holds data for the talk state-change notification
// emails (templates talk_pending, talk_accepted, talk_rejected).
type TalkStateEmailData struct {
	SpeakerName string
	TalkTitle   string
	TalkID      string
}
