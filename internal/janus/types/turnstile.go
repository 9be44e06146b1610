package types

type TurnstileRequest struct {
	Visitor int64 `json:"visitor"`
}

type Turnstile struct {
	ID        int64   `json:"id"`
	Visitor   int64   `json:"visitor"`
	EntryTime string  `json:"entry_time"`
	ExitTime  *string `json:"exit_time"`
}

// ScanRequest is the JSON body of POST /turnstile-logs. Turnstile hardware
// may send the same fields as a google.protobuf.Struct instead.
type ScanRequest struct {
	Turnstile  int64  `json:"turnstile"`
	QRCodeScan string `json:"qr_code_scan"`
	Status     string `json:"status"`
}

type Scan struct {
	ID         int64  `json:"id"`
	Turnstile  int64  `json:"turnstile"`
	QRCodeScan string `json:"qr_code_scan"`
	Status     string `json:"status"`
	ScannedAt  string `json:"scanned_at"`
}
