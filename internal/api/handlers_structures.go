package api

import (
	"encoding/json"
	"net/http"
)

// structureInfo is the catalog listing entry.
type structureInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind"` // pattern, formula, or counter
	Pattern     string `json:"tregex_pattern,omitempty"`
	Formula     string `json:"value_source,omitempty"`
}

// handleListStructures returns the loaded catalog in load order, plus
// the report column order.
func (s *Server) handleListStructures(w http.ResponseWriter, r *http.Request) {
	cat := s.orchestrator.Catalog()

	var structures []structureInfo
	for _, st := range cat.Structures() {
		info := structureInfo{
			Name:        st.Name,
			Description: st.Description,
			Pattern:     st.Pattern,
			Formula:     st.Formula,
		}
		switch {
		case st.Pattern != "":
			info.Kind = "pattern"
		case st.Formula != "":
			info.Kind = "formula"
		default:
			info.Kind = "counter"
		}
		structures = append(structures, info)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"structures": structures,
		"measures":   cat.Measures(),
	})
}
