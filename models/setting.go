package models

import (
	"encoding/json"
	"time"
)

// Setting is a site-wide key/value entry such as the site title or footer links
type Setting struct {
	Key       string          `json:"key" db:"key"`
	Value     json.RawMessage `json:"value" db:"value"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Setting model
func (Setting) TableName() string {
	return "settings"
}

// NewSetting creates a setting with the given JSON value
func NewSetting(key string, value json.RawMessage) *Setting {
	return &Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
}
