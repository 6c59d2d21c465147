// package gateway is the only layer that talks HTTP to the YouTube Data API.
//
// Read traffic runs on a ring of API keys: a key that exhausts its daily
// quota is retired for the run and the request retries transparently on the
// next key. Only when every key is spent does a call return
// shared.ErrQuotaExhausted, which the stages treat as a clean, resumable
// stop. Mutations authenticate with OAuth instead and never rotate.
//
// All calls are paced by a shared rate limiter and retried with exponential
// backoff on transient failures.
package gateway
