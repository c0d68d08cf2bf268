package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/lovejourney/internal/auth"
	"github.com/dukerupert/lovejourney/internal/model"
)

// RelationshipFinder resolves the relationship a user belongs to.
type RelationshipFinder interface {
	Relationship(ctx context.Context, userID int64) (*model.Relationship, error)
}

// HandleWebSocket upgrades authenticated requests and subscribes the
// connection to the caller's relationship.
func HandleWebSocket(hub *Hub, rels RelationshipFinder, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		rel, err := rels.Relationship(r.Context(), ac.UserID)
		if err != nil {
			logger.Error("websocket: find relationship", "error", err, "user_id", ac.UserID)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if rel == nil {
			writeError(w, http.StatusNotFound, "relationship not found")
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket: accept", "error", err)
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn, rel.ID).Serve(r.Context())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
