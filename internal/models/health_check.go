package models

import "time"

type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Editors   int               `json:"editors"`
	Services  map[string]string `json:"services"`
}
