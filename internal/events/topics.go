package events

import "strings"

// Topic constants for domain events emitted by the service.
const (
	TopicInvoiceCreated   = "invoice.created"
	TopicInvoiceUpdated   = "invoice.updated"
	TopicInvoicePaid      = "invoice.paid"
	TopicInvoiceCancelled = "invoice.cancelled"
	TopicInvoiceReopened  = "invoice.reopened"
	TopicInvoiceDeleted   = "invoice.deleted"
	TopicProductChanged   = "product.changed"
	TopicSettingsUpdated  = "settings.updated"
)

// DefaultTopics returns every topic the service emits.
func DefaultTopics() []string {
	return []string{
		TopicInvoiceCreated,
		TopicInvoiceUpdated,
		TopicInvoicePaid,
		TopicInvoiceCancelled,
		TopicInvoiceReopened,
		TopicInvoiceDeleted,
		TopicProductChanged,
		TopicSettingsUpdated,
	}
}

// AffectsDashboard reports whether events on topic change dashboard aggregates.
// Invoices snapshot product names and percentages, so only invoice events count.
func AffectsDashboard(topic string) bool {
	return strings.HasPrefix(topic, "invoice.")
}
