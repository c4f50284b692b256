// Package bot serves domain listings and publisher matches over Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"linkdesk/internal/domain"
	"linkdesk/internal/matching"
	"linkdesk/internal/service"
)

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot        *tgbot.Bot
	domains    *service.DomainService
	publishers *service.PublisherService
	allowed    map[int64]bool
	log        logrus.FieldLogger
}

// NewHandler creates the bot and registers its commands. Only users in
// allowedUsers are answered.
func NewHandler(token string, allowedUsers []int64, domains *service.DomainService, publishers *service.PublisherService, logger logrus.FieldLogger) (*Handler, error) {
	log := logger.WithField("component", "bot_handler")

	h := &Handler{
		domains:    domains,
		publishers: publishers,
		allowed:    make(map[int64]bool, len(allowedUsers)),
		log:        log,
	}
	for _, id := range allowedUsers {
		h.allowed[id] = true
	}

	b, err := tgbot.New(token,
		tgbot.WithMiddlewares(h.restrict),
		tgbot.WithDefaultHandler(h.defaultHandler),
	)
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h.bot = b
	h.registerHandlers()

	log.WithField("allowed_users", len(h.allowed)).Info("Telegram bot handler initialized")
	return h, nil
}

func (h *Handler) registerHandlers() {
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, h.startHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/domains", tgbot.MatchTypeExact, h.domainsHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/match", tgbot.MatchTypePrefix, h.matchHandler)
}

// Start begins polling for updates from Telegram.
// This function blocks until the context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

// Allowed reports whether the user may use the bot.
func (h *Handler) Allowed(userID int64) bool {
	return h.allowed[userID]
}

// restrict drops updates from users outside the allow list.
func (h *Handler) restrict(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}
		if !h.Allowed(update.Message.From.ID) {
			h.log.WithField("user_id", update.Message.From.ID).Warn("Ignoring message from unknown user")
			return
		}
		next(ctx, b, update)
	}
}

func (h *Handler) reply(ctx context.Context, b *tgbot.Bot, update *models.Update, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to send message")
	}
}

func (h *Handler) startHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	h.log.WithField("user_id", update.Message.From.ID).Info("Received /start command")
	h.reply(ctx, b, update, welcomeText)
}

func (h *Handler) domainsHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	domains, err := h.domains.List(ctx, matching.DomainFilter{}, false)
	if err != nil {
		h.log.WithError(err).Error("Failed to list domains")
		h.reply(ctx, b, update, "Could not load domains: "+err.Error())
		return
	}
	h.reply(ctx, b, update, FormatDomains(domains))
}

func (h *Handler) matchHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	name := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/match"))
	if name == "" {
		h.reply(ctx, b, update, "Usage: /match <domain>")
		return
	}
	log := h.log.WithFields(logrus.Fields{"user_id": update.Message.From.ID, "domain": name})
	log.Info("Received /match command")

	d, matches, err := h.publishers.MatchDomainName(ctx, name, matching.Overrides{})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.reply(ctx, b, update, fmt.Sprintf("No active domain named %s.", domain.NormalizeHost(name)))
		return
	case err != nil:
		log.WithError(err).Error("Match failed")
		h.reply(ctx, b, update, "Match failed: "+err.Error())
		return
	}
	h.reply(ctx, b, update, FormatMatches(d, matches, MaxMatchLines))
}

func (h *Handler) defaultHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.log.WithField("user_id", update.Message.From.ID).Debug("Received unhandled message")
	h.reply(ctx, b, update, "Unknown command. "+usageText)
}
