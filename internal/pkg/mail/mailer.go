package mail

// Mailer delivers transactional mails. The account service treats delivery
// failures as non-fatal: they are logged and surfaced as a warning, never
// failing the operation that triggered the mail.
type Mailer interface {
	Send(to string, subject string, htmlBody string) error
}
