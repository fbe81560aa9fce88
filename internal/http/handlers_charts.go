package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/work4inventions/financeInsight/internal/auth"
	"github.com/work4inventions/financeInsight/internal/charts"
	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/store"
)

// Chart PNGs are cached per user and snapshot time, so repeated page loads
// between mutations reuse the rendered image.
func (s *Server) chartCacheKey(kind string, snap store.Snapshot) string {
	return kind + ":" + snap.UserID + ":" + snap.FetchedAt.Format("20060102T150405.000000000")
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, id auth.Identity, kind string,
	render func(*bytes.Buffer, store.Snapshot) error) {

	snap, err := s.snapshotFor(r, id.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Chart refresh failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
		http.Error(w, "could not load data", http.StatusInternalServerError)
		return
	}

	key := s.chartCacheKey(kind, snap)
	if png, ok := s.chartCache.Get(key); ok {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, snap); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.logger.ErrorContext(r.Context(), "Chart render failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
		http.Error(w, "could not render chart", http.StatusInternalServerError)
		return
	}

	s.chartCache.Set(key, buf.Bytes())
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	s.serveChart(w, r, id, "monthly", func(buf *bytes.Buffer, snap store.Snapshot) error {
		return charts.RenderMonthly(buf,
			core.MonthlyBuckets(snap.Income),
			core.MonthlyBuckets(snap.Expenses))
	})
}

func (s *Server) handleTagChart(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	s.serveChart(w, r, id, "tags", func(buf *bytes.Buffer, snap store.Snapshot) error {
		return charts.RenderTags(buf, core.TagBuckets(snap.Expenses))
	})
}
