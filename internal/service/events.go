package service

// EventPublisher delivers realtime events to connected staff dashboards.
type EventPublisher interface {
	Publish(eventType string, payload interface{})
}

func publish(p EventPublisher, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	p.Publish(eventType, payload)
}
