package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes messages to the log instead of delivering them. Used when
// outbound mail is disabled, e.g. in development.
type LogSender struct {
	logger logrus.FieldLogger
}

func NewLogSender(logger logrus.FieldLogger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	l.logger.WithFields(logrus.Fields{
		"to":      msg.Addresses(),
		"subject": msg.Subject,
	}).Info("mail sending disabled; message logged")
	l.logger.Debug(msg.Body)
	return nil
}
