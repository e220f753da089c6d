package types

// PaymentGateway identifies an external payment processor.
type PaymentGateway string

const (
	PaymentGatewayMomo    PaymentGateway = "momo"
	PaymentGatewayZaloPay PaymentGateway = "zalopay"
)

// PaymentStatus is the invoice payment state. The only transition this
// system performs is waiting -> completed, triggered by a verified gateway
// confirmation.
type PaymentStatus string

const (
	PaymentStatusWaiting   PaymentStatus = "WAITING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// PaymentOutcome is the normalized result of a status poll against a gateway.
type PaymentOutcome string

const (
	PaymentOutcomeSucceeded PaymentOutcome = "succeeded"
	PaymentOutcomeFailed    PaymentOutcome = "failed"
	// PaymentOutcomePending means the gateway was still settling when the
	// bounded poll gave up; the caller may query again later.
	PaymentOutcomePending PaymentOutcome = "pending"
)
