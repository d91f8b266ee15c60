package notifier

import (
	"bytes"
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"triarb/internal/exchange"
	"triarb/internal/models"
	"triarb/pkg/logging"
)

var webhookJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// dealPayload is the JSON body posted for an accepted deal. It stands in
// for the Telegram bot the external-interface contract reserves a slot for
// (TELEGRAM.TOKEN/TELEGRAM.USER_ID) without being one: any endpoint that
// accepts a JSON POST — including a Telegram-bridging webhook relay — can
// sit behind this URL.
type dealPayload struct {
	DealID         string  `json:"deal_id"`
	CycleID        string  `json:"cycle_id"`
	StartQty       float64 `json:"start_qty"`
	ExpectedProfit float64 `json:"expected_profit"`
	AgeMs          float64 `json:"age_ms"`
}

type messagePayload struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// WebhookNotifier posts JSON announcements to a configured URL. A failed
// post is logged and otherwise swallowed — a dropped notification must
// never back up or abort deal execution.
type WebhookNotifier struct {
	url     string
	client  *exchange.HTTPClient
	timeout time.Duration
}

// NewWebhookNotifier returns a WebhookNotifier posting to url with a
// request timeout of timeout (zero uses the client's configured default).
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		client:  exchange.NewHTTPClient(exchange.DefaultHTTPClientConfig()),
		timeout: timeout,
	}
}

func (w *WebhookNotifier) post(body interface{}) {
	data, err := webhookJSON.Marshal(body)
	if err != nil {
		logging.Error("webhook notifier: marshal failed", logging.Err(err))
		return
	}

	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		logging.Error("webhook notifier: build request failed", logging.Err(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		logging.Warn("webhook notifier: post failed", logging.Err(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logging.Warn("webhook notifier: non-2xx response", logging.Int("status", resp.StatusCode))
	}
}

func (w *WebhookNotifier) SendDeal(deal models.Deal, ageMs float64) {
	w.post(dealPayload{
		DealID:         deal.DealID.String(),
		CycleID:        deal.CycleID,
		StartQty:       deal.StartQty,
		ExpectedProfit: deal.ExpectedProfit,
		AgeMs:          ageMs,
	})
}

func (w *WebhookNotifier) SendMessage(severity Severity, text string) {
	w.post(messagePayload{Severity: string(severity), Text: text})
}
