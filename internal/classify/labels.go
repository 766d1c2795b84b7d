package classify

import (
	"regexp"
	"strings"
)

type Intent string

const (
	IntentOrderStatus    Intent = "order_status"
	IntentRefundRequest  Intent = "refund_request"
	IntentTechnicalIssue Intent = "technical_issue"
	IntentPaymentIssue   Intent = "payment_issue"
	IntentComplaint      Intent = "complaint"
	IntentGeneralQuery   Intent = "general_query"
	IntentUnknown        Intent = "unknown"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Intents lists the closed intent label set in prompt order.
var Intents = []Intent{
	IntentOrderStatus,
	IntentRefundRequest,
	IntentTechnicalIssue,
	IntentPaymentIssue,
	IntentComplaint,
	IntentGeneralQuery,
	IntentUnknown,
}

// Sentiments lists the closed sentiment label set in prompt order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

var nonLabelChars = regexp.MustCompile(`[^a-z_]`)

// NormalizeIntent maps raw model output onto the closed intent set.
// Anything outside the set becomes IntentUnknown.
func NormalizeIntent(raw string) Intent {
	cleaned := Intent(nonLabelChars.ReplaceAllString(strings.ToLower(raw), ""))
	for _, it := range Intents {
		if cleaned == it {
			return it
		}
	}
	return IntentUnknown
}

// NormalizeSentiment maps raw model output onto the closed sentiment set.
// Anything outside the set becomes SentimentNeutral.
func NormalizeSentiment(raw string) Sentiment {
	cleaned := Sentiment(nonLabelChars.ReplaceAllString(strings.ToLower(raw), ""))
	for _, s := range Sentiments {
		if cleaned == s {
			return s
		}
	}
	return SentimentNeutral
}

func intentOptions() string {
	opts := make([]string, len(Intents))
	for i, it := range Intents {
		opts[i] = string(it)
	}
	return strings.Join(opts, ", ")
}

func sentimentOptions() string {
	opts := make([]string, len(Sentiments))
	for i, s := range Sentiments {
		opts[i] = string(s)
	}
	return strings.Join(opts, ", ")
}
