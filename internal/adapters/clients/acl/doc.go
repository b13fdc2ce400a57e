// Package acl is the anti-corruption layer between remote quote providers and
// the domain.
//
// Provider records never leave this package. Every adapter embeds
// [BaseAdapter], decodes the provider shape into unexported DTOs, and
// translates them into [domain.Quote] values with a [Translator]. Records that
// fail translation are dropped with [TranslateValid] and logged rather than
// failing the whole fetch.
//
// # Error Handling
//
// [MapHTTPError] turns transport failures and HTTP statuses into domain errors:
//   - 404 → [domain.ErrNotFound]
//   - 400/422 → [domain.ErrValidation]
//   - everything else, including circuit breaker and retry failures → [domain.ErrNetwork]
//
// A malformed response body is also reported as [domain.ErrNetwork], since the
// sync loop cannot tell it apart from a provider outage.
//
// # Providers
//
// [RemoteSource] talks to a JSONPlaceholder-style posts collection. Post IDs
// and user IDs are prefixed with [RemoteIDPrefix] so they never collide with
// locally minted quote IDs, and a quote whose ID carries the prefix is pushed
// back to the same post.
package acl
