package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID string. Used for gateway
// request/order ids and callback-log ids, where insertion-ordered ids keep
// index pages hot.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}
