package http

import (
	"net/http"

	"github.com/work4inventions/financeInsight/internal/auth"
	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/store"
)

// render executes a template, falling back to a 500 when templates failed to
// parse at startup.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// snapshotFor returns the aggregation snapshot for the user, refreshing the
// store when it currently holds another user's data.
func (s *Server) snapshotFor(r *http.Request, userID string) (store.Snapshot, error) {
	snap := s.store.Snapshot()
	if snap.UserID == userID {
		return snap, nil
	}
	return s.store.Refresh(r.Context(), userID)
}

type balanceView struct {
	Balance       string
	TotalIncome   string
	TotalExpenses string
	Count         int
}

func newBalanceView(snap store.Snapshot) balanceView {
	return balanceView{
		Balance:       formatRupees(snap.Balance.Cents),
		TotalIncome:   formatRupees(snap.TotalIncome.Cents),
		TotalExpenses: formatRupees(snap.TotalExpenses.Cents),
		Count:         len(snap.Income) + len(snap.Expenses),
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	snap, err := s.snapshotFor(r, id.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Snapshot refresh failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
	}

	data := struct {
		Name       string
		Balance    balanceView
		HasData    bool
		FetchError bool
		PresetTags []string
	}{
		Name:       id.DisplayName,
		Balance:    newBalanceView(snap),
		HasData:    len(snap.Income)+len(snap.Expenses) > 0,
		FetchError: err != nil,
		PresetTags: core.PresetTags,
	}
	s.render(w, r, "index.html", data)
}

// handleBalancePartial re-renders the balance card after a mutation.
func (s *Server) handleBalancePartial(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	snap, err := s.snapshotFor(r, id.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Balance partial refresh failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
		_, _ = w.Write([]byte(`<div class="error">Could not load balance</div>`))
		return
	}
	s.render(w, r, "balance.html", newBalanceView(snap))
}
