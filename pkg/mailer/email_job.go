package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue. It carries an
// already rendered message so the worker only delivers.
type EmailJob struct {
	To      []Recipient `json:"to"`
	Subject string      `json:"subject"`
	Text    string      `json:"text,omitempty"`
	HTML    string      `json:"html,omitempty"`
}

func JobFromMessage(m Message) EmailJob {
	return EmailJob{To: m.To, Subject: m.Subject, Text: m.Body, HTML: m.HTML}
}

func (j EmailJob) Message() Message {
	return Message{Subject: j.Subject, Body: j.Text, HTML: j.HTML, To: j.To}
}
