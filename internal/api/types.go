package api

import (
	"stockanalyzer/internal/config"
	"stockanalyzer/pkg/stockanalyzer"
)

type analyzePayload struct {
	Query string `json:"query"`
}

type showcaseResponse struct {
	Holdings []stockanalyzer.ShowcaseRow `json:"holdings"`
}

type historyResponse struct {
	Ticker stockanalyzer.Ticker         `json:"ticker"`
	Range  string                       `json:"range"`
	Points []stockanalyzer.HistoryPoint `json:"points"`
}

type generatorStatusResponse struct {
	State     string `json:"state"`
	Detail    string `json:"detail,omitempty"`
	Model     string `json:"model,omitempty"`
	Available bool   `json:"available"`
}

type settingsResponse struct {
	Config          config.UserConfig `json:"config"`
	RestartRequired bool              `json:"restart_required"`
}
