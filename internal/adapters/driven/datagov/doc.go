// Package datagov is a client for the data.gov.in open-data REST API.
//
// Resources are fetched as JSON pages of flat records. Requests are
// throttled proactively with a token bucket, and a 429 response is
// retried after the server's Retry-After delay.
package datagov
