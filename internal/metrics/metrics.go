package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics
	Runtime  *RuntimeMetrics

	submissionsReceived metric.Int64Counter
	submissionsInvalid  metric.Int64Counter
	emailsDelivered     metric.Int64Counter
	deliveryFailures    metric.Int64Counter
	messagesPersisted   metric.Int64Counter
	persistFailures     metric.Int64Counter
	eventsPublished     metric.Int64Counter
	eventFailures       metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.Runtime, err = NewRuntimeMetrics(meter)
	if err != nil {
		return nil, err
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.submissionsReceived, "contact.submissions.received", "Contact submissions received", "{submission}"},
		{&m.submissionsInvalid, "contact.submissions.invalid", "Contact submissions rejected by validation", "{submission}"},
		{&m.emailsDelivered, "contact.emails.delivered", "Emails accepted by the provider", "{email}"},
		{&m.deliveryFailures, "contact.emails.failures", "Emails rejected by the provider", "{error}"},
		{&m.messagesPersisted, "contact.messages.persisted", "Messages stored with their user", "{message}"},
		{&m.persistFailures, "contact.persistence.failures", "Transactions that failed after delivery", "{error}"},
		{&m.eventsPublished, "contact.events.published", "Message events published", "{event}"},
		{&m.eventFailures, "contact.events.failures", "Message events that failed to publish", "{error}"},
	}

	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) RecordSubmissionReceived(ctx context.Context) {
	if m != nil && m.submissionsReceived != nil {
		m.submissionsReceived.Add(ctx, 1)
	}
}

func (m *Metrics) RecordSubmissionInvalid(ctx context.Context) {
	if m != nil && m.submissionsInvalid != nil {
		m.submissionsInvalid.Add(ctx, 1)
	}
}

func (m *Metrics) RecordDelivery(ctx context.Context, err error) {
	if m == nil {
		return
	}
	if err != nil {
		if m.deliveryFailures != nil {
			m.deliveryFailures.Add(ctx, 1)
		}
		return
	}
	if m.emailsDelivered != nil {
		m.emailsDelivered.Add(ctx, 1)
	}
}

// RecordPersist counts stored messages. A failure here always follows a
// delivered email, so it is tagged as such for alerting.
func (m *Metrics) RecordPersist(ctx context.Context, err error) {
	if m == nil {
		return
	}
	if err != nil {
		if m.persistFailures != nil {
			m.persistFailures.Add(ctx, 1, metric.WithAttributes(attribute.Bool("delivered", true)))
		}
		return
	}
	if m.messagesPersisted != nil {
		m.messagesPersisted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordEvent(ctx context.Context, err error) {
	if m == nil {
		return
	}
	if err != nil {
		if m.eventFailures != nil {
			m.eventFailures.Add(ctx, 1)
		}
		return
	}
	if m.eventsPublished != nil {
		m.eventsPublished.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
