// Package extension turns launcher events into rendered result items.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ljos/budzilla/internal/budzilla"
	"github.com/ljos/budzilla/internal/search"
	"github.com/ljos/budzilla/internal/session"
)

// TokenSource supplies bearer tokens; session.Provider implements it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate() error
}

// EntrySource fetches entries; budzilla.Client implements it.
type EntrySource interface {
	Entries(ctx context.Context, token string, opts budzilla.FetchOptions) ([]search.Entry, error)
}

// Options configures a Handler.
type Options struct {
	Tokens     TokenSource
	Entries    EntrySource
	Clipboard  Clipboard
	Threshold  int
	MaxResults int
	NoCache    bool
	Logger     *slog.Logger
}

// Handler answers query and item-enter events. Calls are expected one at a
// time.
type Handler struct {
	tokens     TokenSource
	entries    EntrySource
	clipboard  Clipboard
	threshold  int
	maxResults int
	noCache    bool
	logger     *slog.Logger
}

// NewHandler builds a Handler from opts.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cb := opts.Clipboard
	if cb == nil {
		cb = SystemClipboard{}
	}
	return &Handler{
		tokens:     opts.Tokens,
		entries:    opts.Entries,
		clipboard:  cb,
		threshold:  opts.Threshold,
		maxResults: opts.MaxResults,
		noCache:    opts.NoCache,
		logger:     logger,
	}
}

// OnQuery returns the items to display for query. Any failure produces a
// single explanatory item and no results.
func (h *Handler) OnQuery(ctx context.Context, query string) []Item {
	logger := h.logger.With("request_id", budzilla.RequestID(ctx))

	token, err := h.tokens.Token(ctx)
	if err != nil {
		if session.IsInvalidCredentials(err) {
			logger.Info("credentials rejected")
		} else {
			logger.Warn("no token", "error", err)
		}
		return errorItem("Error", describeAuthError(err))
	}

	entries, err := h.entries.Entries(ctx, token, budzilla.FetchOptions{NoCache: h.noCache})
	if err != nil {
		logger.Warn("fetching entries failed", "error", err)
		return h.fetchErrorItems(err)
	}

	ranked := search.Limit(search.Rank(query, entries, h.threshold), h.maxResults)
	logger.Debug("query ranked", "query", query, "entries", len(entries), "results", len(ranked))

	items := make([]Item, 0, len(ranked))
	for _, r := range ranked {
		items = append(items, Item{
			Title:       r.Entry.Title,
			Description: r.Entry.Body,
			Action:      CopyToClipboard(r.Entry.Body),
		})
	}
	return items
}

func (h *Handler) fetchErrorItems(err error) []Item {
	var (
		se *budzilla.StatusError
		fe *search.EntryFormatError
	)
	switch {
	case errors.Is(err, budzilla.ErrUnauthorized):
		h.invalidate()
		return errorItem("Unauthorized", "error 404")
	case errors.As(err, &se):
		h.invalidate()
		return errorItem("Error", fmt.Sprintf("error %d", se.Status))
	case errors.As(err, &fe):
		return errorItem("Error", "malformed entry: "+fe.Error())
	default:
		return errorItem("Error", err.Error())
	}
}

func (h *Handler) invalidate() {
	if err := h.tokens.Invalidate(); err != nil {
		h.logger.Warn("cannot clear session", "error", err)
	}
}

// OnItemEnter executes the action of a selected item.
func (h *Handler) OnItemEnter(a Action) error {
	switch a.Type {
	case ActionCopy:
		if err := h.clipboard.WriteAll(a.Text); err != nil {
			return fmt.Errorf("cannot copy to clipboard: %w", err)
		}
		h.logger.Debug("copied entry body", "bytes", len(a.Text))
		return nil
	case ActionHide:
		return nil
	default:
		return fmt.Errorf("unknown action %q", a.Type)
	}
}

func describeAuthError(err error) string {
	var ae *session.AuthError
	if !errors.As(err, &ae) {
		return err.Error()
	}
	if ae.Kind == session.ServiceError && ae.Status != 0 && ae.Err == nil {
		return fmt.Sprintf("%s (error %d)", ae.Message, ae.Status)
	}
	return ae.Message
}
