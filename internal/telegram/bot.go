package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"lunch-menu-planner/internal/config"
	"lunch-menu-planner/internal/menu"
	"lunch-menu-planner/internal/metrics"
	"lunch-menu-planner/internal/planner"
)

const historyLimit = 6

// MenuService is the part of the application the bot drives.
type MenuService interface {
	GenerateMenu(ctx context.Context, monday menu.Date) (*planner.Result, error)
	SaveMenu(ctx context.Context, m *menu.WeeklyMenu) error
	DeleteMenu(ctx context.Context, menuID string) error
	History(ctx context.Context, limit int) ([]menu.WeeklyMenu, error)
}

// StatsSource reports recorded planning attempts.
type StatsSource interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
	TopViolations(ctx context.Context, limit int) ([]metrics.ViolationCount, error)
}

// chatAPI is the subset of tgbotapi.BotAPI the bot uses.
type chatAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot delivers weekly menus over Telegram to allow-listed users.
type Bot struct {
	api     chatAPI
	service MenuService
	stats   StatsSource
	allowed map[int64]struct{}
	logger  *zap.Logger
	now     func() time.Time
}

// NewBot initializes the Telegram Bot and sets the Webhook. stats may be nil.
func NewBot(cfg *config.Config, service MenuService, stats StatsSource, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook for %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("response", resp.Description))

	return newBot(api, service, stats, cfg.TelegramAllowedUserIDs, logger), nil
}

func newBot(api chatAPI, service MenuService, stats StatsSource, allowed []int64, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		api:     api,
		service: service,
		stats:   stats,
		allowed: make(map[int64]struct{}, len(allowed)),
		logger:  logger,
		now:     time.Now,
	}
	for _, id := range allowed {
		b.allowed[id] = struct{}{}
	}
	return b
}

// RegisterHandlers registers the webhook handler on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("failed to parse update", zap.Error(err))
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	// Planning can outlive the webhook request.
	go b.handleUpdate(context.Background(), update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if b.authorized(update.CallbackQuery.From) {
			b.handleCallbackQuery(ctx, update.CallbackQuery)
		}
	case update.Message != nil:
		if b.authorized(update.Message.From) {
			b.processMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) authorized(u *tgbotapi.User) bool {
	if u == nil {
		return false
	}
	if _, ok := b.allowed[u.ID]; ok {
		return true
	}
	b.logger.Warn("unauthorized access attempt", zap.Int64("user_id", u.ID), zap.String("username", u.UserName))
	return false
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "menu":
		b.handleMenuRequest(ctx, msg.Chat.ID)
	case "history":
		b.handleHistoryRequest(ctx, msg.Chat.ID)
	case "stats":
		b.handleStatsRequest(ctx, msg.Chat.ID)
	default:
		b.send(msg.Chat.ID, helpText)
	}
}

const helpText = "🍽 *Polední menu*\n\n" +
	"/menu - naplánovat menu na příští týden\n" +
	"/history - poslední uložená menu\n" +
	"/stats - statistika plánování"

func (b *Bot) handleMenuRequest(ctx context.Context, chatID int64) {
	monday := menu.NextWeekMonday(b.now())

	recent, err := b.service.History(ctx, 1)
	if err != nil {
		b.logger.Warn("failed to read menu history", zap.Error(err))
	}
	if len(recent) > 0 && recent[0].WeekStart.Equal(monday.Time) {
		text := fmt.Sprintf("🗓️ Menu na týden od *%s* už existuje.\nCo s ním?", monday.Format("2.1.2006"))
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Přeplánovat", "redo|"+recent[0].ID),
				tgbotapi.NewInlineKeyboardButtonData("⏭️ Další týden", "next|"+monday.AddDays(7).String()),
			),
		)
		reply := tgbotapi.NewMessage(chatID, text)
		reply.ParseMode = tgbotapi.ModeMarkdown
		reply.ReplyMarkup = keyboard
		b.sendChattable(reply)
		return
	}

	b.planAndSend(ctx, chatID, monday)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	action, arg, ok := strings.Cut(query.Data, "|")
	if !ok {
		return
	}
	switch action {
	case "redo":
		if err := b.service.DeleteMenu(ctx, arg); err != nil && !errors.Is(err, planner.ErrMenuNotFound) {
			b.sendError(chatID, "Chyba při mazání menu", err)
			return
		}
		b.planAndSend(ctx, chatID, menu.NextWeekMonday(b.now()))
	case "next":
		monday, err := menu.ParseDate(arg)
		if err != nil {
			b.logger.Warn("bad callback date", zap.String("data", query.Data), zap.Error(err))
			return
		}
		b.planAndSend(ctx, chatID, monday)
	}
}

func (b *Bot) planAndSend(ctx context.Context, chatID int64, monday menu.Date) {
	b.send(chatID, "🧑‍🍳 *Plánuji menu...*")
	b.logger.Info("planning menu", zap.Stringer("week", monday), zap.Int64("chat_id", chatID))

	res, err := b.service.GenerateMenu(ctx, monday)
	if err != nil {
		b.logger.Error("failed to generate menu", zap.Error(err))
		b.sendError(chatID, "Menu se nepodařilo naplánovat", err)
		return
	}

	m := res.Menu
	if err := b.service.SaveMenu(ctx, &m); err != nil {
		b.logger.Warn("failed to save menu", zap.Error(err))
	}
	b.send(chatID, formatMenuMarkdown(m))
}

func (b *Bot) handleHistoryRequest(ctx context.Context, chatID int64) {
	recent, err := b.service.History(ctx, historyLimit)
	if err != nil {
		b.sendError(chatID, "Chyba při čtení historie", err)
		return
	}
	b.send(chatID, formatHistoryMarkdown(recent))
}

func (b *Bot) handleStatsRequest(ctx context.Context, chatID int64) {
	if b.stats == nil {
		b.send(chatID, "_Statistiky nejsou k dispozici._")
		return
	}
	usage, err := b.stats.GetDailyUsage(ctx, 7)
	if err != nil {
		b.sendError(chatID, "Chyba při čtení statistik", err)
		return
	}
	top, err := b.stats.TopViolations(ctx, 3)
	if err != nil {
		b.sendError(chatID, "Chyba při čtení statistik", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 *Plánování za 7 dní*\n\n")
	if len(usage) == 0 {
		sb.WriteString("_Zatím žádná data_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d pokusů, %d přijato, %d tokenů\n", d.Date, d.Attempts, d.Accepted, d.TotalPrompt+d.TotalCompletion)
	}
	if len(top) > 0 {
		sb.WriteString("\n🚫 *Nejčastější porušení*\n")
		for _, v := range top {
			fmt.Fprintf(&sb, "• %s: %d\n", escape(v.Rule), v.Count)
		}
	}
	b.send(chatID, sb.String())
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.sendChattable(msg)
}

func (b *Bot) sendChattable(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("failed to send telegram message", zap.Error(err))
	}
}

func (b *Bot) sendError(chatID int64, title string, err error) {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	b.send(chatID, fmt.Sprintf("❌ *%s:*\n```\n%s\n```", title, safeErr))
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatMenuMarkdown(m menu.WeeklyMenu) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *%s*\n\n", escape(menu.Title(m)))
	if m.Specialty.Name != "" {
		fmt.Fprintf(&sb, "⭐ *Specialita týdne:* %s\n", escape(m.Specialty.Name))
		if m.Specialty.Reason != "" {
			fmt.Fprintf(&sb, "_%s_\n", escape(m.Specialty.Reason))
		}
		sb.WriteString("\n")
	}

	for _, d := range m.Days {
		fmt.Fprintf(&sb, "*%s %s*", d.DayName, d.Date.Format("2.1."))
		if d.Weather != nil {
			fmt.Fprintf(&sb, " _(%.0f °C, %s)_", d.Weather.TempMax, menu.ConditionLabel(d.Weather.Condition))
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "🥣 %s\n", escape(d.Soup.Name))
		for i, dr := range d.Dishes {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, escape(dr.Name))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatHistoryMarkdown(menus []menu.WeeklyMenu) string {
	if len(menus) == 0 {
		return "_Zatím žádná uložená menu._"
	}
	var sb strings.Builder
	sb.WriteString("🗂 *Poslední menu*\n\n")
	for _, m := range menus {
		fmt.Fprintf(&sb, "• *%s - %s*", m.WeekStart.Format("2.1."), m.WeekEnd.Format("2.1.2006"))
		if m.Specialty.Name != "" {
			fmt.Fprintf(&sb, ": %s", escape(m.Specialty.Name))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
