package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Chart      *ChartHandler
	Operations *OperationHandler
	Rooms      *RoomHandler
	WebSocket  http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Auth != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/sessions/current", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		})
	}

	if cfg.Chart != nil {
		mux.HandleFunc("/chart", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Chart.Get(w, r)
		})
		mux.HandleFunc("/chart/suggestions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Chart.Suggest(w, r)
		})
	}

	if cfg.Operations != nil {
		mux.HandleFunc("/operations", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Operations.Start(w, r)
		})
		mux.HandleFunc("/operations/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/operations/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			if rest == "undo" {
				cfg.Operations.Undo(w, r)
				return
			}

			id, action, ok := strings.Cut(rest, "/")
			if !ok || id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithOperationID(r.Context(), id)
			r = r.WithContext(ctx)
			switch action {
			case "hover":
				cfg.Operations.Hover(w, r)
			case "drop":
				cfg.Operations.Drop(w, r)
			case "abort":
				cfg.Operations.Abort(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Rooms != nil {
		mux.HandleFunc("/rooms/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/rooms/")
			id, tail, ok := strings.Cut(rest, "/")
			if !ok || id == "" || tail != "status" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			ctx := ContextWithRoomID(r.Context(), id)
			cfg.Rooms.UpdateStatus(w, r.WithContext(ctx))
		})
	}

	if cfg.WebSocket != nil {
		mux.Handle("/ws", cfg.WebSocket)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
