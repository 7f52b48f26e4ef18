package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kewo/kewo-rechner/internal/calculator"
	"github.com/kewo/kewo-rechner/internal/session"
)

const (
	maxComputeBody = 64 << 10

	exportNotice = "PDF-Generierung wird implementiert"
)

type resultsPayload struct {
	Inputs  calculator.Inputs  `json:"inputs"`
	Results calculator.Results `json:"results"`
	Display map[string]string  `json:"display"`
}

func newResultsPayload(in calculator.Inputs) resultsPayload {
	results := calculator.Compute(in)
	return resultsPayload{Inputs: in, Results: results, Display: results.Display()}
}

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	in, err := session.LoadOrDefault(r.Context(), s.store, sessionID(r))
	if err != nil {
		s.logger.Error("load session", zap.Error(err))
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "calculator.html", newCalculatorViewData(in))
}

func (s *server) handleFieldUpdate(w http.ResponseWriter, r *http.Request) {
	field, err := calculator.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, "Unbekanntes Feld.")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Ungültiges Formular.")
		return
	}

	value := r.PostForm.Get("value")
	in, err := s.store.Update(r.Context(), sessionID(r), func(in *calculator.Inputs) error {
		return in.Set(field, value)
	})
	if errors.Is(err, calculator.ErrInvalidFuelType) {
		s.respondError(w, r, http.StatusBadRequest, "Unbekannte Heizungsart.")
		return
	}
	if err != nil {
		s.logger.Error("update session", zap.String("field", string(field)), zap.Error(err))
		s.respondError(w, r, http.StatusInternalServerError, "Speichern fehlgeschlagen.")
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newResultsPayload(in))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleFormSubmit applies every known field present in the form at once.
// Clients without JavaScript post the whole form here.
func (s *server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	submitted := r.PostForm
	in, err := s.store.Update(r.Context(), sessionID(r), func(in *calculator.Inputs) error {
		for _, field := range calculator.Fields() {
			if _, ok := submitted[string(field)]; !ok {
				continue
			}
			if err := in.Set(field, submitted.Get(string(field))); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, calculator.ErrInvalidFuelType) {
		current, loadErr := session.LoadOrDefault(r.Context(), s.store, sessionID(r))
		if loadErr != nil {
			s.logger.Error("load session", zap.Error(loadErr))
			http.Error(w, "failed to load session", http.StatusInternalServerError)
			return
		}
		data := newCalculatorViewData(current)
		data.ErrorMessage = "Unbekannte Heizungsart. Bitte Gas oder Öl wählen."
		s.renderTemplate(w, http.StatusBadRequest, "calculator.html", data)
		return
	}
	if err != nil {
		s.logger.Error("update session", zap.Error(err))
		http.Error(w, "failed to save inputs", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newResultsPayload(in))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleAPIResults(w http.ResponseWriter, r *http.Request) {
	in, err := session.LoadOrDefault(r.Context(), s.store, sessionID(r))
	if err != nil {
		s.logger.Error("load session", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, messageResponse{Status: "error", Message: "failed to load session"})
		return
	}
	writeJSON(w, http.StatusOK, newResultsPayload(in))
}

// handleAPICompute computes results for the posted fields without touching
// any session.
func (s *server) handleAPICompute(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxComputeBody)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Status: "error", Message: "invalid JSON body"})
		return
	}

	var in calculator.Inputs
	for key, value := range body {
		field, err := calculator.ParseField(key)
		if err == nil {
			err = in.Set(field, value)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Status: "error", Message: err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, newResultsPayload(in))
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), sessionID(r)); err != nil {
		s.logger.Error("delete session", zap.Error(err))
		s.respondError(w, r, http.StatusInternalServerError, "Zurücksetzen fehlgeschlagen.")
		return
	}
	s.cookies.clearCookie(w)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, newResultsPayload(calculator.Inputs{}))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusNotImplemented, messageResponse{Status: "not_implemented", Message: exportNotice})
		return
	}
	http.Error(w, exportNotice, http.StatusNotImplemented)
}

func (s *server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		writeJSON(w, status, messageResponse{Status: "error", Message: message})
		return
	}
	http.Error(w, message, status)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
