package storage

import "context"

// HealthCheck reports the export cache backend status.
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if err := s.backend.Ping(ctx); err != nil {
		status[s.backend.Name()] = "unhealthy: " + err.Error()
	} else {
		status[s.backend.Name()] = "healthy"
	}

	return status
}
