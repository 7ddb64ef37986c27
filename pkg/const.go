package pkg

const (
	HeaderTraceId   string = "X-Trace-Id"
	HeaderRequestId string = "X-Request-Id"
)

const (
	TraceId   string = "trace_id"
	RequestId string = "request_id"
)

// Pagination bounds for list endpoints.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)
