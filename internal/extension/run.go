package extension

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/ljos/budzilla/internal/budzilla"
)

// Event types read by Run.
const (
	EventQuery     = "query"
	EventItemEnter = "item_enter"
)

// Response types written by Run.
const (
	ResponseRender = "render"
	ResponseHide   = "hide"
	ResponseError  = "error"
)

// Event is one line of launcher input.
type Event struct {
	Type   string  `json:"type"`
	Query  string  `json:"query,omitempty"`
	Action *Action `json:"action,omitempty"`
}

// Response is one line of output.
type Response struct {
	Type  string `json:"type"`
	Items []Item `json:"items,omitempty"`
	Error string `json:"error,omitempty"`
}

// MarshalJSON always emits the item list of a render response, even when
// it is empty.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Type == ResponseRender {
		items := r.Items
		if items == nil {
			items = []Item{}
		}
		return json.Marshal(struct {
			Type  string `json:"type"`
			Items []Item `json:"items"`
		}{r.Type, items})
	}
	type plain Response
	return json.Marshal(plain(r))
}

const maxEventSize = 1 << 20

// Run reads JSON events from r, one per line, and writes one response per
// event to w. It returns when r is exhausted or ctx is done. Malformed
// events are answered with an error response and do not stop the loop.
func Run(ctx context.Context, r io.Reader, w io.Writer, h *Handler) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev Event
		var resp Response
		if err := json.Unmarshal(line, &ev); err != nil {
			resp = Response{Type: ResponseError, Error: "malformed event: " + err.Error()}
		} else {
			resp = h.dispatch(ctx, ev)
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("cannot write response: %w", err)
		}
	}
	return sc.Err()
}

func (h *Handler) dispatch(ctx context.Context, ev Event) Response {
	id := uuid.NewString()
	ctx = budzilla.WithRequestID(ctx, id)
	h.logger.Debug("event", "type", ev.Type, "request_id", id)

	switch ev.Type {
	case EventQuery:
		return Response{Type: ResponseRender, Items: h.OnQuery(ctx, ev.Query)}
	case EventItemEnter:
		if ev.Action == nil {
			return Response{Type: ResponseError, Error: "item_enter without action"}
		}
		if err := h.OnItemEnter(*ev.Action); err != nil {
			h.logger.Warn("action failed", "request_id", id, "error", err)
			return Response{Type: ResponseError, Error: err.Error()}
		}
		return Response{Type: ResponseHide}
	default:
		return Response{Type: ResponseError, Error: fmt.Sprintf("unknown event type %q", ev.Type)}
	}
}
