package api

import "time"

type LoginRequest struct {
	Secret string `json:"secret" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MigrateResponse struct {
	Migrated int `json:"migrated"`
}

type ReloadResponse struct {
	Source string `json:"source"`
}

type PreviewRequest struct {
	Markdown string `json:"markdown"`
}

// LanguageRequest selects a target language; an empty value toggles.
type LanguageRequest struct {
	Language string `json:"language"`
}
