package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"filmwatch/internal/language"
	"filmwatch/internal/logging"
	"filmwatch/internal/metadata"
	"filmwatch/internal/search"
	"filmwatch/internal/session"
	"filmwatch/internal/store"
	"filmwatch/internal/watchlist"
)

// callbackAction is the compact payload carried by inline keyboard buttons,
// matching what buildCandidateKeyboard renders.
type callbackAction struct {
	Action  string `json:"a"`
	Payload string `json:"p,omitempty"`
}

const (
	actionMovie = "movie"
	actionAdd   = "add"
	actionBack  = "back"
)

// Handler routes incoming updates through the conversation flow.
type Handler struct {
	api         API
	store       *store.Store
	sessions    *session.Store
	resolver    *search.Resolver
	watchlist   *watchlist.Manager
	providers   metadata.Providers
	defaultLang string
	logger      *slog.Logger
}

// NewHandler wires the conversation flow. Providers bounds the languages a
// user may switch to: only languages with a configured metadata client are
// accepted.
func NewHandler(api API, st *store.Store, sessions *session.Store, resolver *search.Resolver, manager *watchlist.Manager, providers metadata.Providers, defaultLang string, logger *slog.Logger) *Handler {
	return &Handler{
		api:         api,
		store:       st,
		sessions:    sessions,
		resolver:    resolver,
		watchlist:   manager,
		providers:   providers,
		defaultLang: defaultLang,
		logger:      logging.NewComponentLogger(logger, "bot"),
	}
}

// Handle processes one update. Errors are handled inside: validation
// rejections become explanatory replies, everything else becomes a generic
// retry message, and the poll loop never sees a failure it has to interpret.
func (h *Handler) Handle(ctx context.Context, update Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	user, err := h.ensureUser(ctx, msg)
	if err != nil {
		h.logger.Error("user lookup failed", logging.Int64(logging.FieldUserID, userID), logging.Error(err))
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}

	switch {
	case text == "/start":
		h.sessions.Clear(userID)
		h.reply(ctx, chatID, msgWelcome, nil)
	case text == "/movies":
		h.replyWatchlist(ctx, chatID, user)
	case strings.HasPrefix(text, "/language"):
		h.handleLanguage(ctx, chatID, user, strings.TrimSpace(strings.TrimPrefix(text, "/language")))
	case text == "/cancel" || text == "/back":
		h.sessions.Clear(userID)
		h.reply(ctx, chatID, msgWhatNext, nil)
	case text == "":
		h.reply(ctx, chatID, msgWhatNext, nil)
	default:
		h.handleSearch(ctx, chatID, user, text)
	}
}

func (h *Handler) handleSearch(ctx context.Context, chatID int64, user *store.User, query string) {
	h.sessions.SetLanguage(user.ID, user.Language)

	candidates, err := h.resolver.Resolve(ctx, user.ID, user.Language, query)
	if err != nil {
		h.logger.Error("resolve failed", logging.Int64(logging.FieldUserID, user.ID), logging.Error(err))
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}
	if len(candidates) == 0 {
		h.reply(ctx, chatID, msgNoResults, nil)
		return
	}

	h.reply(ctx, chatID, msgPickCandidate, buildCandidateKeyboard(candidates))
}

func (h *Handler) handleLanguage(ctx context.Context, chatID int64, user *store.User, arg string) {
	lang := language.Normalize(arg)
	if _, ok := h.providers.ForLanguage(lang); !ok {
		h.reply(ctx, chatID, msgUnsupportedLanguage(h.supportedLanguages()), nil)
		return
	}
	if err := h.store.SetUserLanguage(ctx, user.ID, lang); err != nil {
		h.logger.Error("language update failed", logging.Int64(logging.FieldUserID, user.ID), logging.Error(err))
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}
	h.sessions.SetLanguage(user.ID, lang)
	h.reply(ctx, chatID, msgLanguageSet(lang), nil)
}

func (h *Handler) replyWatchlist(ctx context.Context, chatID int64, user *store.User) {
	movies, err := h.store.ListObserved(ctx, user.ID)
	if err != nil {
		h.logger.Error("watch-list load failed", logging.Int64(logging.FieldUserID, user.ID), logging.Error(err))
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}
	if len(movies) == 0 {
		h.reply(ctx, chatID, msgEmptyWatchlist, nil)
		return
	}

	var b strings.Builder
	for _, movie := range movies {
		b.WriteString(msgWatchlistLine(movie))
		b.WriteString("\n")
	}
	h.reply(ctx, chatID, strings.TrimRight(b.String(), "\n"), nil)
}

func (h *Handler) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if err := h.api.AnswerCallback(ctx, cb.ID); err != nil {
		h.logger.Debug("callback ack failed", logging.Error(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	userID := cb.From.ID

	var action callbackAction
	if err := json.Unmarshal([]byte(cb.Data), &action); err != nil {
		h.logger.Warn("unparseable callback data", logging.Int64(logging.FieldUserID, userID), logging.Error(err))
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}

	switch action.Action {
	case actionMovie:
		h.handleSelect(ctx, chatID, userID, action.Payload)
	case actionAdd:
		h.handleAdd(ctx, chatID, userID, action.Payload)
	case actionBack:
		h.sessions.ClearCandidates(userID)
		h.reply(ctx, chatID, msgWhatNext, nil)
	default:
		h.reply(ctx, chatID, msgGenericError, nil)
	}
}

func (h *Handler) handleSelect(ctx context.Context, chatID, userID int64, movieID string) {
	selected, err := h.resolver.SelectByID(userID, movieID)
	if err != nil {
		if errors.Is(err, session.ErrStaleSelection) {
			h.reply(ctx, chatID, msgNoResults, nil)
			return
		}
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}

	keyboard := Keyboard{{
		{Text: "Back", CallbackData: encodeAction(actionBack, "")},
		{Text: "Add", CallbackData: encodeAction(actionAdd, selected.ID)},
	}}
	h.reply(ctx, chatID, msgMovieFocus(selected.Title, selected.Year()), keyboard)
}

func (h *Handler) handleAdd(ctx context.Context, chatID, userID int64, movieID string) {
	user, err := h.store.GetUser(ctx, userID)
	if err != nil {
		h.logger.Error("user lookup failed", logging.Int64(logging.FieldUserID, userID), logging.Error(err))
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}

	candidate, ok := h.sessions.Selected(userID)
	if !ok || candidate.ID != movieID {
		candidate, err = h.resolver.SelectByID(userID, movieID)
		if err != nil {
			h.reply(ctx, chatID, msgNoResults, nil)
			return
		}
	}

	decision, err := h.watchlist.CanAdd(ctx, user, candidate)
	if err != nil {
		h.logger.Error("add-flow check failed",
			logging.Int64(logging.FieldUserID, userID),
			logging.String(logging.FieldMovieID, candidate.ID),
			logging.Error(err),
		)
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}
	if !decision.Allowed {
		h.reply(ctx, chatID, rejectionText(decision.Reason), nil)
		return
	}

	movie, err := h.watchlist.Commit(ctx, user, candidate)
	if err != nil {
		h.logger.Error("watch-list commit failed",
			logging.Int64(logging.FieldUserID, userID),
			logging.String(logging.FieldMovieID, candidate.ID),
			logging.Error(err),
		)
		h.reply(ctx, chatID, msgGenericError, nil)
		return
	}

	h.reply(ctx, chatID, msgAdded(movie), nil)
}

// ensureUser registers a first-contact user. The detected client language is
// only honored when a metadata client serves it; otherwise the configured
// default applies, so every stored user language has a working provider.
func (h *Handler) ensureUser(ctx context.Context, msg *Message) (*store.User, error) {
	lang := language.Normalize(msg.From.LanguageCode)
	if _, ok := h.providers.ForLanguage(lang); !ok {
		lang = h.defaultLang
	}
	return h.store.EnsureUser(ctx, msg.From.ID, lang)
}

func (h *Handler) supportedLanguages() []string {
	langs := make([]string, 0, len(h.providers))
	for lang := range h.providers {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, keyboard Keyboard) {
	if err := h.api.SendMessage(ctx, chatID, text, keyboard); err != nil {
		h.logger.Warn("reply delivery failed", logging.Int64("chat_id", chatID), logging.Error(err))
	}
}

func rejectionText(reason watchlist.Reason) string {
	switch reason {
	case watchlist.ReasonAlreadyReleased:
		return msgAlreadyReleased
	case watchlist.ReasonAlreadyObserving:
		return msgAlreadyWatching
	default:
		return msgGenericError
	}
}

func buildCandidateKeyboard(candidates []metadata.Result) Keyboard {
	keyboard := make(Keyboard, 0, len(candidates))
	for _, candidate := range candidates {
		label := fmt.Sprintf("(%d) %s", candidate.Year(), candidate.Title)
		keyboard = append(keyboard, []InlineButton{{
			Text:         label,
			CallbackData: encodeAction(actionMovie, candidate.ID),
		}})
	}
	return keyboard
}

func encodeAction(action, payload string) string {
	data, _ := json.Marshal(callbackAction{Action: action, Payload: payload})
	return string(data)
}
