package checkout

// State names where a checkout attempt stands. The pre-payment states are
// derived from the cart and form alone; the rest mark payment progress.
type State string

const (
	StateEmpty                  State = "empty"
	StateCollectingContact      State = "collecting_contact"
	StateCollectingDelivery     State = "collecting_delivery"
	StateReadyForPayment        State = "ready_for_payment"
	StateAwaitingPaymentCapture State = "awaiting_payment_capture"
	StateOrderPersisted         State = "order_persisted"
	StateComplete               State = "complete"
	StateFailed                 State = "failed"
)

// StateFor derives the pre-payment state. Failure and payment-progress
// states are reported by the orchestrator, not derived here.
func StateFor(itemCount int, form Form) State {
	if itemCount == 0 {
		return StateEmpty
	}
	if !form.EmailValid() {
		return StateCollectingContact
	}
	if !form.DeliveryValid() {
		return StateCollectingDelivery
	}
	return StateReadyForPayment
}
