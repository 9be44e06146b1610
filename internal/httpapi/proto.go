package httpapi

import (
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

// isProtobuf reports whether the body is a binary protobuf message.
// Turnstile readers send "application/x-protobuf".
func isProtobuf(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-protobuf" ||
		ct == "application/protobuf" ||
		ct == "application/octet-stream"
}

// readStruct reads a google.protobuf.Struct from the body.
func readStruct(r *http.Request) (*structpb.Struct, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, err
	}
	msg := &structpb.Struct{}
	if err := proto.Unmarshal(body, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// scanRequestFromStruct maps the Struct keys onto a ScanRequest. Unknown
// keys are rejected like unknown JSON fields.
func scanRequestFromStruct(msg *structpb.Struct) (types.ScanRequest, error) {
	var req types.ScanRequest
	for k, v := range msg.GetFields() {
		switch k {
		case "turnstile":
			n, ok := v.GetKind().(*structpb.Value_NumberValue)
			if !ok || !isInt64(n.NumberValue) {
				return req, fmt.Errorf("turnstile: want integer")
			}
			req.Turnstile = int64(n.NumberValue)
		case "qr_code_scan":
			s, ok := v.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return req, fmt.Errorf("qr_code_scan: want string")
			}
			req.QRCodeScan = s.StringValue
		case "status":
			s, ok := v.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return req, fmt.Errorf("status: want string")
			}
			req.Status = s.StringValue
		default:
			return req, fmt.Errorf("unknown field %q", k)
		}
	}
	return req, nil
}

// isInt64 reports whether f converts to int64 exactly. float64(math.MaxInt64)
// rounds up to 2^63, hence the strict upper bound.
func isInt64(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	return f >= math.MinInt64 && f < math.MaxInt64
}
