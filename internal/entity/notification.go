package entity

// NotificationOutcome is the result of one follow-up attempt. It is never persisted.
type NotificationOutcome struct {
	Sent  bool
	Error string
}

func NotificationSent() NotificationOutcome {
	return NotificationOutcome{Sent: true}
}

func NotificationFailed(err error) NotificationOutcome {
	msg := "notification failed"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return NotificationOutcome{Sent: false, Error: msg}
}
