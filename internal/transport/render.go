package transport

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pingsantohq/statusnotify/internal/config"
	"github.com/pingsantohq/statusnotify/internal/notify"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

// IconURL is the thumbnail and footer icon used in Discord embeds.
const IconURL = "https://raw.githubusercontent.com/upptime/upptime.js.org/master/static/img/icon.svg"

// Renderer encodes a message into a platform's webhook body.
type Renderer interface {
	Name() string
	Render(msg types.Message) ([]byte, error)
}

// RendererFor returns the renderer for a webhook type. Unknown types use the custom shape.
func RendererFor(webhookType string) Renderer {
	switch strings.ToLower(strings.TrimSpace(webhookType)) {
	case config.WebhookSlack:
		return SlackRenderer{}
	case config.WebhookDiscord:
		return DiscordRenderer{}
	default:
		return CustomRenderer{}
	}
}

type SlackRenderer struct{}

type slackPayload struct {
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	TitleLink string       `json:"title_link,omitempty"`
	Text      string       `json:"text"`
	Fields    []slackField `json:"fields"`
	Footer    string       `json:"footer"`
	TS        int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

func (SlackRenderer) Name() string { return config.WebhookSlack }

func (SlackRenderer) Render(msg types.Message) ([]byte, error) {
	fields := make([]slackField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, slackField{Title: f.Name, Value: f.Value, Short: f.Inline})
	}
	payload := slackPayload{Attachments: []slackAttachment{{
		Color:     notify.Present(msg.Status).SlackColor,
		Title:     msg.Title,
		TitleLink: msg.URL,
		Text:      msg.Description,
		Fields:    fields,
		Footer:    msg.Footer,
		TS:        checkedAt(msg).Unix(),
	}}}
	return marshal(payload)
}

type DiscordRenderer struct{}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	URL         string         `json:"url,omitempty"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Thumbnail   *discordImage  `json:"thumbnail,omitempty"`
	Fields      []discordField `json:"fields"`
	Footer      discordFooter  `json:"footer"`
	Timestamp   string         `json:"timestamp"`
}

type discordImage struct {
	URL string `json:"url"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

func (DiscordRenderer) Name() string { return config.WebhookDiscord }

func (DiscordRenderer) Render(msg types.Message) ([]byte, error) {
	return marshal(discordPayload{Embeds: []discordEmbed{embedFor(msg)}})
}

func embedFor(msg types.Message) discordEmbed {
	fields := make([]discordField, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, discordField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	embed := discordEmbed{
		Title:       msg.Title,
		URL:         msg.URL,
		Description: msg.Description,
		Color:       msg.Color,
		Fields:      fields,
		Footer:      discordFooter{Text: msg.Footer, IconURL: IconURL},
		Timestamp:   checkedAt(msg).UTC().Format(time.RFC3339Nano),
	}
	if len(msg.Sites) == 1 {
		embed.Thumbnail = &discordImage{URL: IconURL}
	}
	return embed
}

type CustomRenderer struct{}

type customPayload struct {
	Site         *customSite        `json:"site,omitempty"`
	Sites        []customSite       `json:"sites,omitempty"`
	Notification customNotification `json:"notification"`
}

type customSite struct {
	Name           string       `json:"name"`
	URL            string       `json:"url"`
	Status         types.Status `json:"status"`
	ResponseTime   int          `json:"responseTime"`
	Uptime         string       `json:"uptime"`
	LastChecked    string       `json:"lastChecked"`
	Timestamp      int64        `json:"timestamp"`
	PreviousStatus types.Status `json:"previousStatus,omitempty"`
}

type customNotification struct {
	ID           string              `json:"id"`
	Type         string              `json:"type"`
	Message      string              `json:"message"`
	Severity     types.Severity      `json:"severity"`
	CheckType    string              `json:"checkType"`
	StatusChange *customStatusChange `json:"statusChange,omitempty"`
}

type customStatusChange struct {
	Changed    bool `json:"changed"`
	IsRecovery bool `json:"isRecovery"`
	IsOutage   bool `json:"isOutage"`
}

// CheckTypeStatusChange tags custom payloads produced by change monitoring.
const CheckTypeStatusChange = "status_change_monitoring"

var customTypes = map[types.MessageKind]string{
	types.KindRecovery: "service_recovery",
	types.KindOutage:   "service_outage",
	types.KindChange:   "status_change",
	types.KindRoutine:  "routine_check",
	types.KindSummary:  "status_report",
	types.KindAlert:    "urgent_alert",
}

func (CustomRenderer) Name() string { return config.WebhookCustom }

func (CustomRenderer) Render(msg types.Message) ([]byte, error) {
	payload := customPayload{Notification: customNotification{
		ID:        msg.ID,
		Type:      customTypes[msg.Kind],
		Message:   msg.Description,
		Severity:  msg.Severity,
		CheckType: CheckTypeStatusChange,
	}}
	if payload.Notification.Type == "" {
		payload.Notification.Type = string(msg.Kind)
	}
	if tr := msg.Transition; tr != nil {
		payload.Notification.StatusChange = &customStatusChange{
			Changed:    tr.Changed,
			IsRecovery: tr.IsRecovery,
			IsOutage:   tr.IsOutage,
		}
	}

	sites := make([]customSite, 0, len(msg.Sites))
	for _, s := range msg.Sites {
		sites = append(sites, customSite{
			Name:           s.Name,
			URL:            s.URL,
			Status:         s.Status,
			ResponseTime:   responseMillis(s.ResponseTime),
			Uptime:         s.Uptime,
			LastChecked:    s.CheckedAt.UTC().Format(time.RFC3339Nano),
			Timestamp:      s.CheckedAt.UnixMilli(),
			PreviousStatus: s.PreviousStatus,
		})
	}
	switch msg.Kind {
	case types.KindSummary, types.KindAlert:
		payload.Sites = sites
	default:
		if len(sites) > 0 {
			payload.Site = &sites[0]
		}
	}
	return marshal(payload)
}

// responseMillis truncates a decimal millisecond string; unparseable input yields 0.
func responseMillis(v string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func checkedAt(msg types.Message) time.Time {
	if msg.CheckedAt.IsZero() {
		return time.Now()
	}
	return msg.CheckedAt
}

func marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return data, nil
}
