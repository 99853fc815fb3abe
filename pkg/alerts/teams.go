// Package alerts delivers operational alerts to a Microsoft Teams channel
// over an incoming webhook using the MessageCard format.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/labops/go-sdk/pkg/types"
)

// Theme colors for the card header strip
const (
	colorAlert   = "FF0000"
	colorWarning = "FFA500"
	colorOK      = "00FF00"
)

// CardFact is one name/value row in a card section
type CardFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CardSection is one activity block of a MessageCard
type CardSection struct {
	ActivityTitle    string     `json:"activityTitle"`
	ActivitySubtitle string     `json:"activitySubtitle,omitempty"`
	Facts            []CardFact `json:"facts,omitempty"`
}

// CardAction is a MessageCard potentialAction entry
type CardAction struct {
	Type    string       `json:"@type"`
	Name    string       `json:"name"`
	Targets []CardTarget `json:"targets"`
}

// CardTarget is one URI target of a card action
type CardTarget struct {
	OS  string `json:"os"`
	URI string `json:"uri"`
}

// MessageCard is the legacy Teams webhook card format
type MessageCard struct {
	Type       string        `json:"@type"`
	Context    string        `json:"@context"`
	ThemeColor string        `json:"themeColor"`
	Summary    string        `json:"summary"`
	Title      string        `json:"title,omitempty"`
	Text       string        `json:"text,omitempty"`
	Sections   []CardSection `json:"sections,omitempty"`
	Actions    []CardAction  `json:"potentialAction,omitempty"`
}

// NotifierOptions configures a Teams notifier
type NotifierOptions struct {
	// WebhookURL is the Teams incoming webhook endpoint. Empty forces
	// dry-run behavior.
	WebhookURL string
	// DryRun logs cards instead of posting them
	DryRun bool
	// DashboardURL is linked from card actions when set
	DashboardURL string
	// HTTPClient overrides the default client
	HTTPClient *http.Client
	// Logger receives delivery logs
	Logger types.Logger
}

// Notifier posts MessageCards to a Teams webhook
type Notifier struct {
	webhookURL   string
	dryRun       bool
	dashboardURL string
	client       *http.Client
	logger       types.Logger
}

// NewNotifier creates a Teams notifier. A notifier without a webhook URL
// runs in dry-run mode.
func NewNotifier(opts NotifierOptions) *Notifier {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = types.NewNoOpLogger()
	}
	return &Notifier{
		webhookURL:   opts.WebhookURL,
		dryRun:       opts.DryRun || opts.WebhookURL == "",
		dashboardURL: opts.DashboardURL,
		client:       client,
		logger:       logger,
	}
}

// Send posts a card to the webhook. In dry-run mode the card is logged and
// Send returns nil.
func (n *Notifier) Send(ctx context.Context, card MessageCard) error {
	card.Type = "MessageCard"
	card.Context = "http://schema.org/extensions"

	body, err := json.Marshal(card)
	if err != nil {
		return errors.Wrap(err, "marshal message card")
	}

	if n.dryRun {
		n.logger.Info("teams alert (dry run)",
			types.LogField{Key: "summary", Value: card.Summary})
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post teams webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("teams webhook returned status %d", resp.StatusCode)
	}

	n.logger.Info("teams alert sent",
		types.LogField{Key: "summary", Value: card.Summary})
	return nil
}

// SLABreachAlert sends a card summarizing SLA breaches over a time window.
// topAssays maps assay names to their breach counts.
func (n *Notifier) SLABreachAlert(ctx context.Context, breachCount int, topAssays []CardFact, window string) error {
	color := colorOK
	title := "SLA Status OK"
	if breachCount > 0 {
		color = colorAlert
		title = "SLA Breach Alert"
	}

	card := MessageCard{
		ThemeColor: color,
		Summary:    title,
		Sections: []CardSection{{
			ActivityTitle:    title,
			ActivitySubtitle: fmt.Sprintf("Window: %s", window),
			Facts: append([]CardFact{
				{Name: "SLA Breaches", Value: fmt.Sprintf("%d", breachCount)},
			}, topAssays...),
		}},
	}
	n.attachDashboardAction(&card)
	return n.Send(ctx, card)
}

// ThroughputAlert sends a warning card when throughput falls below target.
// Nothing is sent when the target is met.
func (n *Notifier) ThroughputAlert(ctx context.Context, current, target int, period string) error {
	if current >= target {
		return nil
	}

	card := MessageCard{
		ThemeColor: colorWarning,
		Summary:    fmt.Sprintf("Throughput below target (%s)", period),
		Title:      "Throughput Alert: Below Target",
		Sections: []CardSection{{
			ActivityTitle:    "Throughput Alert",
			ActivitySubtitle: fmt.Sprintf("Target: %d | Current: %d", target, current),
			Facts: []CardFact{
				{Name: "Current Throughput", Value: fmt.Sprintf("%d", current)},
				{Name: "Target Throughput", Value: fmt.Sprintf("%d", target)},
				{Name: "Gap", Value: fmt.Sprintf("%d", target-current)},
				{Name: "Period", Value: period},
			},
		}},
	}
	n.attachDashboardAction(&card)
	return n.Send(ctx, card)
}

// ErrorRateAlert sends an alert card when the error rate exceeds the
// threshold. Both values are fractions in [0, 1]. Nothing is sent when the
// rate is within the threshold.
func (n *Notifier) ErrorRateAlert(ctx context.Context, rate, threshold float64, machineID string) error {
	if rate <= threshold {
		return nil
	}

	facts := []CardFact{
		{Name: "Current Error Rate", Value: fmt.Sprintf("%.1f%%", rate*100)},
		{Name: "Threshold", Value: fmt.Sprintf("%.1f%%", threshold*100)},
		{Name: "Excess", Value: fmt.Sprintf("%.1f%%", (rate-threshold)*100)},
	}
	if machineID != "" {
		facts = append(facts, CardFact{Name: "Machine", Value: machineID})
	}

	card := MessageCard{
		ThemeColor: colorAlert,
		Summary:    "Error rate above threshold",
		Title:      "Error Rate Alert: Above Threshold",
		Sections: []CardSection{{
			ActivityTitle:    "Error Rate Alert",
			ActivitySubtitle: fmt.Sprintf("Threshold: %.1f%% | Current: %.1f%%", threshold*100, rate*100),
			Facts:            facts,
		}},
	}
	n.attachDashboardAction(&card)
	return n.Send(ctx, card)
}

func (n *Notifier) attachDashboardAction(card *MessageCard) {
	if n.dashboardURL == "" {
		return
	}
	card.Actions = append(card.Actions, CardAction{
		Type:    "OpenUri",
		Name:    "View Dashboard",
		Targets: []CardTarget{{OS: "default", URI: n.dashboardURL}},
	})
}
