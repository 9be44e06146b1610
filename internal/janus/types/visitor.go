package types

// VisitorRequest is the body of POST /visitors and PUT /visitors/{id}.
// visit_code and qr_code are server-assigned and not accepted.
type VisitorRequest struct {
	VisitorName   string  `json:"visitor_name"`
	VisitorEmail  string  `json:"visitor_email"`
	VisitorMobile string  `json:"visitor_mobile"`
	RegisteredBy  *int64  `json:"registered_by,omitempty"`
	EmployeeName  *string `json:"employee_name,omitempty"`
	Purpose       string  `json:"purpose"`
}

// VisitorPatchRequest is the body of PATCH /visitors/{id}.
type VisitorPatchRequest struct {
	VisitorName   *string        `json:"visitor_name,omitempty"`
	VisitorEmail  *string        `json:"visitor_email,omitempty"`
	VisitorMobile *string        `json:"visitor_mobile,omitempty"`
	EmployeeName  OptionalString `json:"employee_name"`
	Purpose       *string        `json:"purpose,omitempty"`
}

type Visitor struct {
	VisitorID     int64   `json:"visitor_id"`
	VisitorName   string  `json:"visitor_name"`
	VisitorEmail  string  `json:"visitor_email"`
	VisitorMobile string  `json:"visitor_mobile"`
	RegisteredBy  *int64  `json:"registered_by"`
	EmployeeName  *string `json:"employee_name"`
	Purpose       string  `json:"purpose"`
	VisitCode     string  `json:"visit_code"`
	QRCode        string  `json:"qr_code"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}
