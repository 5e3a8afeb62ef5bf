package instance

import (
	"os"

	"github.com/angelmondragon/courierdesk-backend/pkg/env"
)

// GetID identifies this process in locks and logs. COURIERDESK_INSTANCE_ID
// wins, then the dyno name, then the hostname.
func GetID() string {
	if id := env.Get("COURIERDESK_INSTANCE_ID", os.Getenv("DYNO")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
