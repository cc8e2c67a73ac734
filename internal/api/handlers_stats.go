package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleParserStats(w http.ResponseWriter, r *http.Request) {
	if s.parserStats == nil {
		jsonError(w, "parser stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"parser_url": s.cfg.ParserURL,
		"stats":      s.parserStats.Snapshot(),
		"queue":      s.orchestrator.QueueDepth(),
	})
}
