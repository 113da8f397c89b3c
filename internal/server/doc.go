// Package server implements the HTTP side of the lead capture service. It
// routes the submission API, falls through to static assets for everything
// else, and carries the request logging, rate limiting, health, metrics
// and webhook plumbing around it.
package server
