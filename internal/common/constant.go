package common

const (
	// APIKeyHeaderName carries the project anon key on every backend request.
	APIKeyHeaderName = "apikey"

	// ClientInfoHeaderName identifies this client to the backend.
	ClientInfoHeaderName = "X-Client-Info"

	// RequestIDHeaderName correlates a request with client-side log lines.
	RequestIDHeaderName = "X-Request-Id"

	// ClientName is sent in ClientInfoHeaderName.
	ClientName = "balancebuddy-cli"
)
