package services

import (
	"strings"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
)

// ClientIP picks the rate-limit identity for a voter: the first entry of a
// comma-separated forwarding header, then the real-ip header, then the shared
// unknown bucket.
func ClientIP(forwardedFor string, realIP string) string {
	if first, _, _ := strings.Cut(forwardedFor, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if value := strings.TrimSpace(realIP); value != "" {
		return value
	}
	return entities.UnknownIP
}
