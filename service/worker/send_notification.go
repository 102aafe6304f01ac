package worker

// SendEmailNotificationPayload carries one attendee's notification email.
type SendEmailNotificationPayload struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const SendEmailNotification = "send-email-notification"

func (processor *RedisTaskProcessor) SendEmailNotification(payload SendEmailNotificationPayload) error {
	return processor.mailService.SendEmail(payload.Email, payload.Subject, payload.Body)
}
