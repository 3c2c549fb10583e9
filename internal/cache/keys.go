package cache

import "fmt"

func RateLimitKey(identifier string) string {
	return fmt.Sprintf("ratelimit:%s", identifier)
}

// IdempotencyKey namespaces a client-supplied dedup key under its
// owner. Clients pick key values independently, so the owner segment is
// what keeps tenants from colliding into each other's cached responses.
func IdempotencyKey(owner, clientKey string) string {
	return fmt.Sprintf("idempotency:%s:%s", owner, clientKey)
}
