package instance

import "github.com/gestrans/gestrans-backend/pkg/env"

const defaultID = "local"

// GetID returns the identifier of the running process, as exposed by the
// platform it runs on, or "local".
func GetID() string {
	if id := env.First("GESTRANS_INSTANCE_ID", "DYNO", "HOSTNAME"); id != "" {
		return id
	}
	return defaultID
}
