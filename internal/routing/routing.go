// Package routing combines classification signals into an agent action.
package routing

import "gensupport/internal/classify"

type Action string

const (
	ActionEscalate           Action = "escalate_to_human_support"
	ActionAutoReply          Action = "auto_reply"
	ActionRequestMoreDetails Action = "request_more_details"
)

// Route decides the agent action for an intent/sentiment pair. The table is
// evaluated top-down, first match wins; the function is total over both
// enumerations and has no hidden state.
func Route(intent classify.Intent, sentiment classify.Sentiment) Action {
	if sentiment == classify.SentimentNegative || intent == classify.IntentComplaint {
		return ActionEscalate
	}
	switch intent {
	case classify.IntentOrderStatus,
		classify.IntentRefundRequest,
		classify.IntentTechnicalIssue,
		classify.IntentPaymentIssue:
		return ActionAutoReply
	}
	return ActionRequestMoreDetails
}
