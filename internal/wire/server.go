package wire

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/AnishMulay/redisfs/internal/logging"
	"github.com/AnishMulay/redisfs/internal/store"
	"github.com/google/uuid"
)

// Server exposes a Host over HTTP: a single POST /exec endpoint runs one
// FS.* command against one key per request. Grounded on
// communication.HTTPCommunicator's Start/Stop/handleHTTPMessage shape,
// simplified since args here are always string tokens rather than typed
// payloads needing a reflect-based registry.
type Server struct {
	listenAddress string
	host          *store.Host
	log           logging.Logger
	httpServer    *http.Server
}

// NewServer constructs a Server that dispatches every request to host.
func NewServer(listenAddress string, host *store.Host, log logging.Logger) *Server {
	return &Server{listenAddress: listenAddress, host: host, log: log}
}

// Address returns the server's listen address.
func (s *Server) Address() string { return s.listenAddress }

// Start begins serving in the background. It returns once the listener
// is registered; ListenAndServe errors are logged asynchronously.
func (s *Server) Start() error {
	s.log.Info(logging.Event{
		Message:  "starting wire server",
		Metadata: map[string]any{"address": s.listenAddress},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/exec", s.handleExec)

	s.httpServer = &http.Server{Addr: s.listenAddress, Handler: mux}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error(logging.Event{
				Message:  "wire server error",
				Metadata: map[string]any{"address": s.listenAddress, "error": err.Error()},
			})
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	reqID := uuid.New().String()

	s.log.Debug(logging.Event{
		Message:  "exec",
		Metadata: map[string]any{"reqID": reqID, "key": req.Key, "cmd": req.Cmd, "remoteAddr": r.RemoteAddr},
	})

	reply, dispatchErr := s.host.Dispatch(req.Key, req.Cmd, req.Args)

	var resp Response
	if dispatchErr != nil {
		resp.Err = dispatchErr.Error()
		s.log.Debug(logging.Event{
			Message:  "exec error",
			Metadata: map[string]any{"reqID": reqID, "key": req.Key, "cmd": req.Cmd, "error": dispatchErr.Error()},
		})
	} else {
		raw, err := json.Marshal(reply)
		if err != nil {
			s.log.Error(logging.Event{
				Message:  "failed to marshal reply",
				Metadata: map[string]any{"reqID": reqID, "key": req.Key, "cmd": req.Cmd, "error": err.Error()},
			})
			http.Error(w, "failed to marshal reply", http.StatusInternalServerError)
			return
		}
		resp.Reply = raw
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error(logging.Event{
			Message:  "failed to encode response",
			Metadata: map[string]any{"error": err.Error()},
		})
	}
}
