package models

import "time"

// RatelimitConfig is a DB-backed rate limit row. Rate uses limiter's
// "<count>-<period>" notation, e.g. "5-S" or "100-M".
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
