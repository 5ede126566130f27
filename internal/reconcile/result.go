package reconcile

// Result is what every handler hands back to the transport layer.
//
// Success decides the transport-level acknowledgment: the caller acks-and-drops
// on success and may let the processor retry otherwise. Message carries
// human-readable non-fatal diagnostics; Err carries unexpected failures only.
//
// The two failure shapes are deliberate:
//   - reject (Success=false, Message set, Err nil): the event cannot be
//     attributed (missing tenant, unmatched account). Retrying reproduces the
//     same gap, so the caller should acknowledge and log.
//   - fail (Success=false, Err set): gateway or store broke mid-flight. The
//     delivery should be retried.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func ok(message string) Result {
	return Result{Success: true, Message: message}
}

func reject(message string) Result {
	return Result{Success: false, Message: message}
}

func fail(err error) Result {
	return Result{Success: false, Err: err}
}
