package pkg

const (
	HeaderTraceId   string = "X-Trace-Id"
	HeaderRequestId string = "X-Request-Id"
)

const (
	TraceId   string = "trace_id"
	RequestId string = "request_id"
)

// Verdict is the rendered label of a scored transaction.
type Verdict string

const (
	VerdictFraudulent Verdict = "Fraudulent"
	VerdictLegitimate Verdict = "Legitimate"
)

// VerdictFor renders a classifier label. Only label 1 is fraud.
func VerdictFor(label int) Verdict {
	if label == 1 {
		return VerdictFraudulent
	}
	return VerdictLegitimate
}

const (
	PathSingle = "single"
	PathBatch  = "batch"
)
