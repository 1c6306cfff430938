package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"stockanalyzer/internal/config"
	"stockanalyzer/pkg/stockanalyzer"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var payload analyzePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome := h.core.Analyze(r.Context(), payload.Query)
	if outcome.Kind == stockanalyzer.OutcomeFailure {
		writeJSON(w, statusForErrorCode(outcome.Failure.Code), outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *handler) showcase(w http.ResponseWriter, r *http.Request) {
	rows := h.core.ShowcaseHoldings(r.Context())
	writeJSON(w, http.StatusOK, showcaseResponse{Holdings: rows})
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "ticker")))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	window := r.URL.Query().Get("range")

	points, err := h.core.FetchHistory(r.Context(), stockanalyzer.Ticker(ticker), window)
	if err != nil {
		writeErrorResponse(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Ticker: stockanalyzer.Ticker(ticker),
		Range:  windowOrDefault(window),
		Points: points,
	})
}

func (h *handler) generatorStatus(w http.ResponseWriter, r *http.Request) {
	status := generatorStatusResponse{State: string(stockanalyzer.GeneratorUninitialized)}
	if h.gen != nil {
		state, detail := h.gen.State()
		status.State = string(state)
		status.Detail = detail
		status.Model = h.gen.Model()
		status.Available = h.gen.Available()
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, redactAPIKey(config.LoadUserConfig()))
}

func (h *handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var payload config.UserConfig
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Preserve the stored key when the client sends back the redacted form.
	if payload.Generation.APIKey == redactedAPIKey {
		payload.Generation.APIKey = config.LoadUserConfig().Generation.APIKey
	}
	if err := config.SaveUserConfig(payload, true); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{
		Config: redactAPIKey(config.LoadUserConfig()),
		// Generation settings are read at startup; a restart applies them.
		RestartRequired: true,
	})
}

// Helpers.

const redactedAPIKey = "********"

func redactAPIKey(cfg config.UserConfig) config.UserConfig {
	if cfg.Generation.APIKey != "" {
		cfg.Generation.APIKey = redactedAPIKey
	}
	return cfg
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func windowOrDefault(window string) string {
	if window == "" {
		return "1mo"
	}
	return window
}

func statusForErrorCode(code stockanalyzer.ErrorCode) int {
	switch code {
	case stockanalyzer.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case stockanalyzer.ErrCodeNotFound:
		return http.StatusNotFound
	case stockanalyzer.ErrCodeBusy:
		return http.StatusConflict
	case stockanalyzer.ErrCodeTransient:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
