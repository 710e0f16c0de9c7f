package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/argo-analytics/internal/analytics"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// streamMessage is one frame of the compute stream. Exactly one of Table,
// Error or Done is set.
type streamMessage struct {
	Index int          `json:"index"`
	Total int          `json:"total"`
	Table *types.Table `json:"table,omitempty"`
	Error string       `json:"error,omitempty"`
	Done  bool         `json:"done,omitempty"`
}

// streamCompute upgrades to a websocket and sends every metric table as
// soon as it is computed. The run stops when the client goes away.
func (s *Server) streamCompute(w http.ResponseWriter, r *http.Request) {
	req, err := computeRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, err)

		return
	}

	frame, err := s.loadFrame(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", zap.Error(err))

		return
	}
	defer conn.Close()

	total := len(s.service.Catalogue().Names())

	send := func(msg streamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

		return conn.WriteJSON(msg)
	}

	var sendErr error

	onEnd := analytics.OnMetricEndCallback(func(index int, name string, table types.Table) {
		if sendErr != nil {
			return
		}

		sendErr = send(streamMessage{Index: index, Total: total, Table: &table})
	})
	onStart := analytics.OnMetricStartCallback(func(index int, name string, total int) error {
		return sendErr
	})

	_, err = s.service.ComputeAll(r.Context(), frame, req, analytics.Callbacks{
		OnMetricStart: &onStart,
		OnMetricEnd:   &onEnd,
	})

	switch {
	case sendErr != nil:
		s.log.Debug("Compute stream client went away", zap.Error(sendErr))

		return
	case err != nil:
		_ = send(streamMessage{Total: total, Error: err.Error()})
	default:
		_ = send(streamMessage{Index: total, Total: total, Done: true})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
