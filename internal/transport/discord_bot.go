package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/pingsantohq/statusnotify/internal/config"
	"github.com/pingsantohq/statusnotify/internal/logging"
	"github.com/pingsantohq/statusnotify/pkg/types"
)

var (
	// ErrBotClosed is returned when sending on a session that is not open.
	ErrBotClosed = errors.New("discord bot session is not open")
	// ErrBotToken is returned when no bot token is configured.
	ErrBotToken = errors.New("discord bot token is required")
)

// BotConfig configures a Discord bot session.
type BotConfig struct {
	Token     string
	ChannelID string
	APIBase   string
}

// BotUser is the identity the token authenticates as.
type BotUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// DiscordBot posts embeds to a channel through the Discord REST API. A session is opened for
// one report and closed afterwards.
type DiscordBot struct {
	httpClient *http.Client
	apiBase    string
	token      string
	channelID  string
	logger     *log.Logger

	mu   sync.Mutex
	user *BotUser
}

func NewDiscordBot(cfg BotConfig, deps Dependencies) (*DiscordBot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrBotToken
	}
	if strings.TrimSpace(cfg.ChannelID) == "" {
		return nil, errors.New("discord channel ID is required")
	}
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = config.DefaultDiscordAPI
	}
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DiscordBot{
		httpClient: httpClient,
		apiBase:    strings.TrimRight(apiBase, "/"),
		token:      cfg.Token,
		channelID:  cfg.ChannelID,
		logger:     logging.OrDiscard(deps.Logger),
	}, nil
}

// Open validates the token and marks the session ready.
func (b *DiscordBot) Open(ctx context.Context) (BotUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiBase+"/users/@me", nil)
	if err != nil {
		return BotUser{}, fmt.Errorf("build identity request: %w", err)
	}
	b.authorize(req.Header)
	req.Header.Set("Accept", "application/json")

	var body bytes.Buffer
	if err := do(b.httpClient, req, &body); err != nil {
		return BotUser{}, fmt.Errorf("open discord session: %w", err)
	}
	var user BotUser
	if err := json.Unmarshal(body.Bytes(), &user); err != nil {
		return BotUser{}, fmt.Errorf("decode bot identity: %w", err)
	}

	b.mu.Lock()
	b.user = &user
	b.mu.Unlock()
	b.logger.Printf("discord bot logged in as %s", user.Username)
	return user, nil
}

// Send posts msg as a single embed to the configured channel.
func (b *DiscordBot) Send(ctx context.Context, msg types.Message) error {
	b.mu.Lock()
	open := b.user != nil
	b.mu.Unlock()
	if !open {
		return ErrBotClosed
	}

	payload, err := marshal(discordPayload{Embeds: []discordEmbed{embedFor(msg)}})
	if err != nil {
		return err
	}
	header := http.Header{}
	b.authorize(header)
	url := fmt.Sprintf("%s/channels/%s/messages", b.apiBase, b.channelID)
	if err := postJSON(ctx, b.httpClient, url, header, payload); err != nil {
		return fmt.Errorf("post channel message: %w", err)
	}
	return nil
}

// Close ends the session. Further sends fail with ErrBotClosed.
func (b *DiscordBot) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.user != nil {
		b.logger.Printf("discord bot session closed")
	}
	b.user = nil
	return nil
}

func (b *DiscordBot) authorize(h http.Header) {
	h.Set("Authorization", "Bot "+b.token)
}

var _ Sender = (*DiscordBot)(nil)
