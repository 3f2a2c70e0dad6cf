// Package api defines the wire contract of the Taatom SuperAdmin backend:
// the typed records the console lists, the response envelopes they arrive in,
// and the validation boundary that rejects mis-shaped payloads before any
// page state is touched.
package api

import "time"

// Endpoint paths of the SuperAdmin API.
const (
	EndpointLocales    = "/api/v1/locales"
	EndpointUsers      = "/api/v1/users"
	EndpointLogs       = "/api/v1/logs"
	EndpointQueryStats = "/api/v1/query-stats"
	EndpointTripScores = "/api/v1/trip-scores"
)

// Locale is a place record managed on the Locales page.
type Locale struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CountryCode string    `json:"countryCode"`
	City        string    `json:"city"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Category    string    `json:"category"`
	Active      bool      `json:"active"`
	VisitCount  int       `json:"visitCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// User is an account record managed on the Users page.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	PostCount   int        `json:"postCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// LogEntry is one row of the backend diagnostic log.
type LogEntry struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	RequestID string    `json:"requestId"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuerySample is one captured database query profile.
type QuerySample struct {
	ID         string    `json:"id"`
	Route      string    `json:"route"`
	Collection string    `json:"collection"`
	Operation  string    `json:"operation"`
	DurationMS float64   `json:"durationMs"`
	RowCount   int       `json:"rowCount"`
	Slow       bool      `json:"slow"`
	CapturedAt time.Time `json:"capturedAt"`
}

// TripScore is one user's aggregated travel score.
type TripScore struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	LocaleCount  int       `json:"localeCount"`
	CountryCount int       `json:"countryCount"`
	DistanceKM   float64   `json:"distanceKm"`
	Score        float64   `json:"score"`
	ComputedAt   time.Time `json:"computedAt"`
}
