package api

import (
	"encoding/json"
	"fmt"

	"github.com/Godevs04/taatom-admin-console/pkg/listing"
)

// LocaleList is the GET /api/v1/locales response envelope.
type LocaleList struct {
	Locales    []Locale           `json:"locales"`
	Pagination listing.Pagination `json:"pagination"`
	Statistics *LocaleStatistics  `json:"statistics,omitempty"`
}

// LocaleStatistics is the optional summary block of a locale list response.
type LocaleStatistics struct {
	TotalActive   int `json:"totalActive"`
	TotalInactive int `json:"totalInactive"`
	Countries     int `json:"countries"`
}

// UserList is the GET /api/v1/users response envelope.
type UserList struct {
	Users      []User             `json:"users"`
	Pagination listing.Pagination `json:"pagination"`
	Statistics *UserStatistics    `json:"statistics,omitempty"`
}

// UserStatistics is the optional summary block of a user list response.
type UserStatistics struct {
	TotalActive int `json:"totalActive"`
	TotalAdmins int `json:"totalAdmins"`
}

// LogList is the GET /api/v1/logs response envelope.
type LogList struct {
	Logs       []LogEntry         `json:"logs"`
	Pagination listing.Pagination `json:"pagination"`
	Statistics *LogStatistics     `json:"statistics,omitempty"`
}

// LogStatistics is the level distribution of a log list response.
type LogStatistics struct {
	Debug int `json:"debug"`
	Info  int `json:"info"`
	Warn  int `json:"warn"`
	Error int `json:"error"`
}

// QueryList is the GET /api/v1/query-stats response envelope.
type QueryList struct {
	Queries    []QuerySample      `json:"queries"`
	Pagination listing.Pagination `json:"pagination"`
	Statistics *QueryStatistics   `json:"statistics,omitempty"`
}

// QueryStatistics is the optional summary block of a query list response.
type QueryStatistics struct {
	SlowCount     int     `json:"slowCount"`
	AvgDurationMS float64 `json:"avgDurationMs"`
}

// TripScoreList is the GET /api/v1/trip-scores response envelope.
type TripScoreList struct {
	TripScores []TripScore          `json:"tripScores"`
	Pagination listing.Pagination   `json:"pagination"`
	Statistics *TripScoreStatistics `json:"statistics,omitempty"`
}

// TripScoreStatistics is the optional summary block of a trip score response.
type TripScoreStatistics struct {
	AvgScore float64 `json:"avgScore"`
	MaxScore float64 `json:"maxScore"`
}

// Envelope is the {success, data|error} wrapper mutation endpoints return.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Record decodes the canonical record the backend returned in Data.
func (e *Envelope) Record(dst any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: envelope has no data payload", ErrShape)
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("%w: decode envelope data: %v", ErrShape, err)
	}
	return nil
}

// DecodeLocaleList validates and decodes a locale list response body.
func DecodeLocaleList(body []byte) (*LocaleList, error) {
	if err := Validate(SchemaLocaleList, body); err != nil {
		return nil, err
	}
	var list LocaleList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decode locale list: %v", ErrShape, err)
	}
	return &list, nil
}

// DecodeUserList validates and decodes a user list response body.
func DecodeUserList(body []byte) (*UserList, error) {
	if err := Validate(SchemaUserList, body); err != nil {
		return nil, err
	}
	var list UserList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decode user list: %v", ErrShape, err)
	}
	return &list, nil
}

// DecodeLogList validates and decodes a log list response body.
func DecodeLogList(body []byte) (*LogList, error) {
	if err := Validate(SchemaLogList, body); err != nil {
		return nil, err
	}
	var list LogList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decode log list: %v", ErrShape, err)
	}
	return &list, nil
}

// DecodeQueryList validates and decodes a query stats response body.
func DecodeQueryList(body []byte) (*QueryList, error) {
	if err := Validate(SchemaQueryList, body); err != nil {
		return nil, err
	}
	var list QueryList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decode query list: %v", ErrShape, err)
	}
	return &list, nil
}

// DecodeTripScoreList validates and decodes a trip score response body.
func DecodeTripScoreList(body []byte) (*TripScoreList, error) {
	if err := Validate(SchemaTripScoreList, body); err != nil {
		return nil, err
	}
	var list TripScoreList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: decode trip score list: %v", ErrShape, err)
	}
	return &list, nil
}

// DecodeEnvelope validates and decodes a mutation response body.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	if err := Validate(SchemaEnvelope, body); err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrShape, err)
	}
	return &env, nil
}
