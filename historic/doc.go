// Package historic validates and shapes requests for PRTG's historic data
// endpoint and tracks the per-process request rate the server tolerates.
//
// The rate window is held in memory and resets with every process. PRTG
// enforces the real limit per account on the server side, so the local
// limiter is advisory: it keeps a single invocation from hammering the
// endpoint, and a 429 from the server is still reported as RateLimited.
package historic
