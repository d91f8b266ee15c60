package websocket

import (
	"time"

	"triarb/internal/models"
)

// MessageType identifies the payload shape of a broadcast message.
type MessageType string

const (
	// MessageTypeDealAccepted is sent once an Executor.Submit call returns
	// without error: a completed, filled three-leg deal.
	MessageTypeDealAccepted MessageType = "dealAccepted"

	// MessageTypeCycleEvaluated is sent for a cycle evaluation that cleared
	// the profit threshold, whether or not it was actually submitted.
	MessageTypeCycleEvaluated MessageType = "cycleEvaluated"

	// MessageTypeStatsUpdate carries the rolling age-summary statistics.
	MessageTypeStatsUpdate MessageType = "statsUpdate"

	// MessageTypeNotification carries a plain operational event — startup,
	// shutdown, a leg failure — the same ones notifier.Notifier.SendMessage
	// announces elsewhere.
	MessageTypeNotification MessageType = "notification"
)

// BaseMessage is embedded in every broadcast payload.
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// DealAcceptedMessage announces a deal that completed all three legs.
type DealAcceptedMessage struct {
	BaseMessage
	Data *DealData `json:"data"`
}

// DealData mirrors models.Deal for wire transmission, plus the age (ms)
// between book snapshot and submission that the executor was handed.
type DealData struct {
	DealID         string  `json:"deal_id"`
	CycleID        string  `json:"cycle_id"`
	StartQty       float64 `json:"start_qty"`
	ExpectedProfit float64 `json:"expected_profit"`
	AgeMs          float64 `json:"age_ms"`
}

// NewDealAcceptedMessage builds a DealAcceptedMessage from a completed deal.
func NewDealAcceptedMessage(deal models.Deal, ageMs float64) *DealAcceptedMessage {
	return &DealAcceptedMessage{
		BaseMessage: BaseMessage{Type: MessageTypeDealAccepted, Timestamp: time.Now()},
		Data: &DealData{
			DealID:         deal.DealID.String(),
			CycleID:        deal.CycleID,
			StartQty:       deal.StartQty,
			ExpectedProfit: deal.ExpectedProfit,
			AgeMs:          ageMs,
		},
	}
}

// CycleEvaluatedMessage reports a single cycle evaluation that cleared the
// profit threshold, independent of whether the deal was ultimately submitted.
type CycleEvaluatedMessage struct {
	BaseMessage
	Data *CycleEvalData `json:"data"`
}

// CycleEvalData is the evaluation outcome for one cycle.
type CycleEvalData struct {
	CycleID        string  `json:"cycle_id"`
	ExpectedProfit float64 `json:"expected_profit"`
	StartQty       float64 `json:"start_qty"`
	AgeMs          float64 `json:"age_ms"`
}

// NewCycleEvaluatedMessage builds a CycleEvaluatedMessage.
func NewCycleEvaluatedMessage(cycleID string, expectedProfit, startQty, ageMs float64) *CycleEvaluatedMessage {
	return &CycleEvaluatedMessage{
		BaseMessage: BaseMessage{Type: MessageTypeCycleEvaluated, Timestamp: time.Now()},
		Data: &CycleEvalData{
			CycleID:        cycleID,
			ExpectedProfit: expectedProfit,
			StartQty:       startQty,
			AgeMs:          ageMs,
		},
	}
}

// StatsUpdateMessage carries the rolling cycle-age statistics.
type StatsUpdateMessage struct {
	BaseMessage
	Data *StatsData `json:"data"`
}

// StatsData mirrors matrix.Matrix.AgeSummary's return values.
type StatsData struct {
	AgeMeanMs       float64 `json:"age_mean_ms"`
	AgeStdDevMs     float64 `json:"age_stddev_ms"`
	AgeBestRecentMs float64 `json:"age_best_recent_ms"`
}

// NewStatsUpdateMessage builds a StatsUpdateMessage.
func NewStatsUpdateMessage(mean, stddev, bestRecent float64) *StatsUpdateMessage {
	return &StatsUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeStatsUpdate, Timestamp: time.Now()},
		Data: &StatsData{
			AgeMeanMs:       mean,
			AgeStdDevMs:     stddev,
			AgeBestRecentMs: bestRecent,
		},
	}
}

// NotificationMessage announces a plain operational event.
type NotificationMessage struct {
	BaseMessage
	Data *NotificationData `json:"data"`
}

// NotificationData carries a severity-classified operational message.
type NotificationData struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// NewNotificationMessage builds a NotificationMessage.
func NewNotificationMessage(severity, text string) *NotificationMessage {
	return &NotificationMessage{
		BaseMessage: BaseMessage{Type: MessageTypeNotification, Timestamp: time.Now()},
		Data:        &NotificationData{Severity: severity, Text: text},
	}
}
