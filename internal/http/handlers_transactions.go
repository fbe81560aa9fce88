package http

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/work4inventions/financeInsight/internal/actions"
	"github.com/work4inventions/financeInsight/internal/auth"
	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/log"
	"github.com/work4inventions/financeInsight/internal/table"
)

// handleAdd records a new income or expense from the add form.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", log.FieldError, err)
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	t := core.Transaction{
		Type: core.TransactionType(strings.TrimSpace(r.Form.Get("type"))),
		Name: sanitizeInput(r.Form.Get("name")),
		Tag:  formTag(r),
	}

	amount, err := core.ParseAmount(strings.TrimSpace(r.Form.Get("amount")))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid amount: use a positive number with up to two decimals")
		return
	}
	t.Amount = amount

	date, err := core.ParseDate(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid date")
		return
	}
	t.Date = date

	if _, err := s.actions.Add(r.Context(), id.UserID, t); err != nil {
		s.writeActionError(w, r, err, "Could not save the transaction")
		return
	}

	w.Header().Set("HX-Trigger", `{"transaction:changed": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Saved: ` +
		template.HTMLEscapeString(t.Name) + ` — ` +
		template.HTMLEscapeString(formatRupees(t.Amount.Cents)) + `</div>`))
}

// handleUpdate edits the name and/or amount of an existing transaction.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	txID := strings.TrimSpace(r.Form.Get("id"))
	if txID == "" {
		writeError(w, http.StatusBadRequest, "Missing transaction id")
		return
	}

	var fields core.UpdateFields
	if name := sanitizeInput(r.Form.Get("name")); name != "" {
		fields.Name = &name
	}
	if raw := strings.TrimSpace(r.Form.Get("amount")); raw != "" {
		amount, err := core.ParseAmount(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid amount: use a positive number with up to two decimals")
			return
		}
		fields.Amount = &amount
	}

	if err := s.actions.Update(r.Context(), id.UserID, txID, fields); err != nil {
		s.writeActionError(w, r, err, "Could not update the transaction")
		return
	}

	w.Header().Set("HX-Trigger", `{"transaction:changed": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Transaction updated</div>`))
}

// handleDelete removes a transaction.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	txID := strings.TrimSpace(r.Form.Get("id"))
	if txID == "" {
		writeError(w, http.StatusBadRequest, "Missing transaction id")
		return
	}

	if err := s.actions.Delete(r.Context(), id.UserID, txID); err != nil {
		s.writeActionError(w, r, err, "Could not delete the transaction")
		return
	}

	w.Header().Set("HX-Trigger", `{"transaction:changed": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Transaction deleted</div>`))
}

type tableRow struct {
	ID     string
	Name   string
	Type   string
	Amount string
	Date   string
	Tag    string
}

type tableView struct {
	Rows      []tableRow
	Columns   []table.Column
	Visible   map[string]bool
	Page      int
	PageCount int
	PrevPage  int
	NextPage  int
	Total     int
	Query     tableQueryView
}

type tableQueryView struct {
	Type     string
	Search   string
	SortBy   string
	SortDir  string
	PageSize int
}

func (s *Server) buildTableView(r *http.Request, userID string) (tableView, error) {
	if _, err := s.snapshotFor(r, userID); err != nil {
		return tableView{}, err
	}

	q := table.Query{
		Type:     table.TypeFilter(r.URL.Query().Get("type")),
		Search:   r.URL.Query().Get("q"),
		SortBy:   table.Column(r.URL.Query().Get("sort")),
		SortDesc: r.URL.Query().Get("dir") == "desc",
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "size", table.DefaultPageSize),
		Hidden:   map[table.Column]bool{},
	}
	if !q.Type.IsValid() {
		q.Type = table.FilterAll
	}
	for _, c := range strings.Split(r.URL.Query().Get("hide"), ",") {
		col := table.Column(strings.TrimSpace(c))
		if col.IsValid() {
			q.Hidden[col] = true
		}
	}

	page := table.Build(s.store.All(), q)

	view := tableView{
		Columns:   page.Columns,
		Visible:   map[string]bool{},
		Page:      page.Page,
		PageCount: page.PageCount,
		PrevPage:  page.Page - 1,
		NextPage:  page.Page + 1,
		Total:     page.Total,
		Query: tableQueryView{
			Type:     string(q.Type),
			Search:   q.Search,
			SortBy:   string(q.SortBy),
			SortDir:  sortDir(q.SortDesc),
			PageSize: q.PageSize,
		},
	}
	for _, c := range page.Columns {
		view.Visible[string(c)] = true
	}
	for _, t := range page.Rows {
		view.Rows = append(view.Rows, tableRow{
			ID:     t.ID,
			Name:   t.Name,
			Type:   string(t.Type),
			Amount: formatRupees(t.Amount.Cents),
			Date:   t.Date.ISO(),
			Tag:    t.Tag,
		})
	}
	return view, nil
}

func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	view, err := s.buildTableView(r, id.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Table page refresh failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
	}
	data := struct {
		Name       string
		Table      tableView
		FetchError bool
	}{Name: id.DisplayName, Table: view, FetchError: err != nil}
	s.render(w, r, "transactions.html", data)
}

// handleTablePartial re-renders just the table for sort/filter/page changes.
func (s *Server) handleTablePartial(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	view, err := s.buildTableView(r, id.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Table partial refresh failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
		_, _ = w.Write([]byte(`<div class="error">Could not load transactions</div>`))
		return
	}
	s.render(w, r, "table.html", view)
}

// writeActionError maps an actions error to a status and an HTMX-friendly
// error fragment.
func (s *Server) writeActionError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var actErr *actions.Error
	if errors.As(err, &actErr) {
		switch actErr.Kind {
		case actions.KindValidation:
			writeError(w, http.StatusUnprocessableEntity, "Invalid data: "+actErr.Cause.Error())
			return
		case actions.KindNotFound:
			writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
	}
	s.logger.ErrorContext(r.Context(), "Action failed", log.FieldError, err)
	writeError(w, http.StatusInternalServerError, fallback)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(msg) + `</div>`))
}

func formTag(r *http.Request) string {
	tag := sanitizeInput(r.Form.Get("tag"))
	if tag == "Custom" {
		return sanitizeInput(r.Form.Get("custom_tag"))
	}
	return tag
}

func sortDir(desc bool) string {
	if desc {
		return "desc"
	}
	return "asc"
}
