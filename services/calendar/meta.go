package calendar

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServiceAccountMeta is the identifying subset of a service-account key
// file, printed by the diagnostics so operators know which identity to
// share calendars with.
type ServiceAccountMeta struct {
	ClientEmail string `json:"client_email"`
	ProjectID   string `json:"project_id"`
}

// ReadServiceAccountMeta reads client_email and project_id from a
// service-account key file.
func ReadServiceAccountMeta(path string) (ServiceAccountMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceAccountMeta{}, fmt.Errorf("read key file: %w", err)
	}
	var meta ServiceAccountMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return ServiceAccountMeta{}, fmt.Errorf("parse key file: %w", err)
	}
	if meta.ClientEmail == "" {
		meta.ClientEmail = "unknown"
	}
	if meta.ProjectID == "" {
		meta.ProjectID = "unknown"
	}
	return meta, nil
}
