package dashboard

import (
	"encoding/json"
	"net/http"
)

type statsResponse struct {
	ActiveConversations    int `json:"active_conversations"`
	CompletedConversations int `json:"completed_conversations"`
	Documents              int `json:"documents"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	var resp statsResponse
	if d.engine != nil {
		st, err := d.engine.Stats(r.Context())
		if err != nil {
			d.logger.Error("dashboard stats", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load stats"})
			return
		}
		resp.ActiveConversations = st.Active
		resp.CompletedConversations = st.Completed
	}
	if d.docs != nil {
		resp.Documents = d.docs.Count()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
