package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askdb/askdb/internal/dispatch"
	"github.com/askdb/askdb/internal/schema"
)

const maxAskBodyBytes = 64 << 10

type askRequest struct {
	Question string `json:"question"`
}

type columnView struct {
	Name        string  `json:"name"`
	DataType    string  `json:"data_type"`
	Nullable    bool    `json:"nullable"`
	Default     *string `json:"default,omitempty"`
	Requirement string  `json:"requirement"`
}

type tableView struct {
	Name    string       `json:"name"`
	Columns []columnView `json:"columns"`
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "schema source is not configured", false, nil)
		return
	}
	snapshot, err := deps.Schema.Get(r.Context())
	if err != nil {
		writeSchemaUnavailable(w, r, err)
		return
	}
	writeSnapshot(w, snapshot, r.URL.Query().Get("search"))
}

func handleSchemaRefresh(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "schema source is not configured", false, nil)
		return
	}
	snapshot, err := deps.Schema.Refresh(r.Context())
	if err != nil {
		writeSchemaUnavailable(w, r, err)
		return
	}
	writeSnapshot(w, snapshot, "")
}

func writeSchemaUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	writeError(r.Context(), w, http.StatusServiceUnavailable, "SCHEMA_UNAVAILABLE", "could not load database schema", true,
		map[string]any{"details": err.Error()})
}

func writeSnapshot(w http.ResponseWriter, snapshot schema.Snapshot, search string) {
	total := len(snapshot.Tables)
	filtered := snapshot.Filter(search)

	tables := make([]tableView, 0, len(filtered.Tables))
	for _, table := range filtered.Tables {
		view := tableView{Name: table.Name, Columns: make([]columnView, 0, len(table.Columns))}
		for _, column := range table.Columns {
			view.Columns = append(view.Columns, columnView{
				Name:        column.Name,
				DataType:    column.DataType,
				Nullable:    column.Nullable,
				Default:     column.Default,
				Requirement: column.Requirement(),
			})
		}
		tables = append(tables, view)
	}

	response := map[string]any{
		"database_name": snapshot.DatabaseName,
		"table_count":   total,
		"tables":        tables,
	}
	if search != "" {
		response["search"] = search
	}
	writeJSON(w, http.StatusOK, response)
}

func handleQuestions(deps Dependencies, w http.ResponseWriter, _ *http.Request) {
	questions := deps.Questions
	if questions == nil {
		questions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Asker == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "question answering is not configured", false, nil)
		return
	}

	var req askRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}

	reply, err := deps.Asker.Answer(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, dispatch.ErrEmptyQuestion) {
			writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", err.Error(), false, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "ASK_FAILED", err.Error(), true, nil)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
