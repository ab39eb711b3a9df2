package utils

import (
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

var eventLogger = logrus.New()

// LogEvent logs an event with structured data
func LogEvent(eventType string, data map[string]interface{}) {
	eventLogger.WithFields(logrus.Fields(data)).Info(eventType)
}

// CaptureError reports an unexpected failure to Sentry when a DSN is
// configured, and always logs it
func CaptureError(message string, err error) {
	fields := logrus.Fields{}
	if err != nil {
		fields["error"] = err.Error()
	}
	eventLogger.WithFields(fields).Error(message)

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		if err != nil {
			hub.CaptureException(err)
		} else {
			hub.CaptureMessage(message)
		}
	}
}
