// Package wire implements the proto3-wire-compatible codec for the VSS
// request/response messages of spec §6. No protoc toolchain is
// available in this environment, so every Marshal/Unmarshal pair is
// hand-written directly on top of
// google.golang.org/protobuf/encoding/protowire; no generated message
// types are used.
//
// Field numbers below match the schema in spec §6 exactly, in
// declaration order starting at 1. proto3 "optional" fields (fields with
// explicit presence) are represented as Go pointers so "absent" and
// "present with the zero value" stay distinguishable.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// KeyValue mirrors the wire KeyValue message: { string key = 1; int64
// version = 2; bytes value = 3; }.
type KeyValue struct {
	Key     string
	Version int64
	Value   []byte
}

func (m KeyValue) appendTo(b []byte) []byte {
	if m.Key != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Key)
	}
	if m.Version != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Version))
	}
	if len(m.Value) != 0 {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Value)
	}
	return b
}

// Marshal encodes m as a standalone top-level message.
func (m KeyValue) Marshal() []byte {
	return m.appendTo(nil)
}

func unmarshalKeyValue(b []byte) (KeyValue, error) {
	var m KeyValue
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return KeyValue{}, fmt.Errorf("wire: KeyValue: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return KeyValue{}, fmt.Errorf("wire: KeyValue.key: %w", protowire.ParseError(n))
			}
			m.Key = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return KeyValue{}, fmt.Errorf("wire: KeyValue.version: %w", protowire.ParseError(n))
			}
			m.Version = int64(v)
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return KeyValue{}, fmt.Errorf("wire: KeyValue.value: %w", protowire.ParseError(n))
			}
			m.Value = append([]byte(nil), v...)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return KeyValue{}, fmt.Errorf("wire: KeyValue: unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// UnmarshalKeyValue decodes a standalone top-level KeyValue message.
func UnmarshalKeyValue(b []byte) (KeyValue, error) {
	return unmarshalKeyValue(b)
}

// appendMessageField appends a length-delimited nested message field.
func appendMessageField(b []byte, num protowire.Number, payload []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(payload)))
	return append(b, payload...)
}

func consumeMessageField(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("wire: bad nested message: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

// GetObjectRequest: { string store_id = 1; string key = 2; }
type GetObjectRequest struct {
	StoreID string
	Key     string
}

func (m GetObjectRequest) Marshal() []byte {
	var b []byte
	if m.StoreID != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.StoreID)
	}
	if m.Key != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Key)
	}
	return b
}

func UnmarshalGetObjectRequest(b []byte) (GetObjectRequest, error) {
	var m GetObjectRequest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: GetObjectRequest: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: GetObjectRequest.store_id: %w", protowire.ParseError(n))
			}
			m.StoreID = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: GetObjectRequest.key: %w", protowire.ParseError(n))
			}
			m.Key = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: GetObjectRequest: unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// GetObjectResponse: { KeyValue value = 1; }
type GetObjectResponse struct {
	Value KeyValue
}

func (m GetObjectResponse) Marshal() []byte {
	return appendMessageField(nil, 1, m.Value.appendTo(nil))
}

func UnmarshalGetObjectResponse(b []byte) (GetObjectResponse, error) {
	var m GetObjectResponse
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: GetObjectResponse: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			payload, n, err := consumeMessageField(b)
			if err != nil {
				return m, fmt.Errorf("wire: GetObjectResponse.value: %w", err)
			}
			v, err := unmarshalKeyValue(payload)
			if err != nil {
				return m, err
			}
			m.Value = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: GetObjectResponse: unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// PutObjectRequest: { string store_id = 1; optional int64 global_version = 2;
// repeated KeyValue transaction_items = 3; repeated KeyValue delete_items = 4; }
type PutObjectRequest struct {
	StoreID          string
	GlobalVersion    *int64
	TransactionItems []KeyValue
	DeleteItems      []KeyValue
}

func (m PutObjectRequest) Marshal() []byte {
	var b []byte
	if m.StoreID != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.StoreID)
	}
	if m.GlobalVersion != nil {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*m.GlobalVersion))
	}
	for _, item := range m.TransactionItems {
		b = appendMessageField(b, 3, item.appendTo(nil))
	}
	for _, item := range m.DeleteItems {
		b = appendMessageField(b, 4, item.appendTo(nil))
	}
	return b
}

func UnmarshalPutObjectRequest(b []byte) (PutObjectRequest, error) {
	var m PutObjectRequest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: PutObjectRequest: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: PutObjectRequest.store_id: %w", protowire.ParseError(n))
			}
			m.StoreID = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: PutObjectRequest.global_version: %w", protowire.ParseError(n))
			}
			gv := int64(v)
			m.GlobalVersion = &gv
			b = b[n:]
		case 3:
			payload, n, err := consumeMessageField(b)
			if err != nil {
				return m, fmt.Errorf("wire: PutObjectRequest.transaction_items: %w", err)
			}
			item, err := unmarshalKeyValue(payload)
			if err != nil {
				return m, err
			}
			m.TransactionItems = append(m.TransactionItems, item)
			b = b[n:]
		case 4:
			payload, n, err := consumeMessageField(b)
			if err != nil {
				return m, fmt.Errorf("wire: PutObjectRequest.delete_items: %w", err)
			}
			item, err := unmarshalKeyValue(payload)
			if err != nil {
				return m, err
			}
			m.DeleteItems = append(m.DeleteItems, item)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: PutObjectRequest: unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// PutObjectResponse: {}
type PutObjectResponse struct{}

func (m PutObjectResponse) Marshal() []byte { return nil }

func UnmarshalPutObjectResponse(b []byte) (PutObjectResponse, error) {
	if err := skipUnknownOnly(b, "PutObjectResponse"); err != nil {
		return PutObjectResponse{}, err
	}
	return PutObjectResponse{}, nil
}

// DeleteObjectRequest: { string store_id = 1; KeyValue key_value = 2; }
type DeleteObjectRequest struct {
	StoreID  string
	KeyValue KeyValue
}

func (m DeleteObjectRequest) Marshal() []byte {
	var b []byte
	if m.StoreID != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.StoreID)
	}
	b = appendMessageField(b, 2, m.KeyValue.appendTo(nil))
	return b
}

func UnmarshalDeleteObjectRequest(b []byte) (DeleteObjectRequest, error) {
	var m DeleteObjectRequest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: DeleteObjectRequest: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: DeleteObjectRequest.store_id: %w", protowire.ParseError(n))
			}
			m.StoreID = v
			b = b[n:]
		case 2:
			payload, n, err := consumeMessageField(b)
			if err != nil {
				return m, fmt.Errorf("wire: DeleteObjectRequest.key_value: %w", err)
			}
			v, err := unmarshalKeyValue(payload)
			if err != nil {
				return m, err
			}
			m.KeyValue = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: DeleteObjectRequest: unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// DeleteObjectResponse: {}
type DeleteObjectResponse struct{}

func (m DeleteObjectResponse) Marshal() []byte { return nil }

func UnmarshalDeleteObjectResponse(b []byte) (DeleteObjectResponse, error) {
	if err := skipUnknownOnly(b, "DeleteObjectResponse"); err != nil {
		return DeleteObjectResponse{}, err
	}
	return DeleteObjectResponse{}, nil
}

// ListKeyVersionsRequest: { string store_id = 1; optional string key_prefix = 2;
// optional int32 page_size = 3; optional string page_token = 4; }
type ListKeyVersionsRequest struct {
	StoreID   string
	KeyPrefix *string
	PageSize  *int32
	PageToken *string
}

func (m ListKeyVersionsRequest) Marshal() []byte {
	var b []byte
	if m.StoreID != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.StoreID)
	}
	if m.KeyPrefix != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, *m.KeyPrefix)
	}
	if m.PageSize != nil {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(*m.PageSize)))
	}
	if m.PageToken != nil {
		b = protowire.AppendTag(b, 4, protowire.BytesType)
		b = protowire.AppendString(b, *m.PageToken)
	}
	return b
}

func UnmarshalListKeyVersionsRequest(b []byte) (ListKeyVersionsRequest, error) {
	var m ListKeyVersionsRequest
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: ListKeyVersionsRequest: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: ListKeyVersionsRequest.store_id: %w", protowire.ParseError(n))
			}
			m.StoreID = v
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: ListKeyVersionsRequest.key_prefix: %w", protowire.ParseError(n))
			}
			m.KeyPrefix = &v
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: ListKeyVersionsRequest.page_size: %w", protowire.ParseError(n))
			}
			ps := int32(uint32(v))
			m.PageSize = &ps
			b = b[n:]
		case 4:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: ListKeyVersionsRequest.page_token: %w", protowire.ParseError(n))
			}
			m.PageToken = &v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: ListKeyVersionsRequest: unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// ListKeyVersionsResponse: { repeated KeyValue key_versions = 1;
// optional string next_page_token = 2; optional int64 global_version = 3; }
//
// key_versions elements never carry Value (listing returns (key,
// version) only, per spec §4.3).
type ListKeyVersionsResponse struct {
	KeyVersions   []KeyValue
	NextPageToken *string
	GlobalVersion *int64
}

func (m ListKeyVersionsResponse) Marshal() []byte {
	var b []byte
	for _, kv := range m.KeyVersions {
		b = appendMessageField(b, 1, kv.appendTo(nil))
	}
	if m.NextPageToken != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, *m.NextPageToken)
	}
	if m.GlobalVersion != nil {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*m.GlobalVersion))
	}
	return b
}

func UnmarshalListKeyVersionsResponse(b []byte) (ListKeyVersionsResponse, error) {
	var m ListKeyVersionsResponse
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: ListKeyVersionsResponse: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			payload, n, err := consumeMessageField(b)
			if err != nil {
				return m, fmt.Errorf("wire: ListKeyVersionsResponse.key_versions: %w", err)
			}
			kv, err := unmarshalKeyValue(payload)
			if err != nil {
				return m, err
			}
			m.KeyVersions = append(m.KeyVersions, kv)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: ListKeyVersionsResponse.next_page_token: %w", protowire.ParseError(n))
			}
			m.NextPageToken = &v
			b = b[n:]
		case 3:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: ListKeyVersionsResponse.global_version: %w", protowire.ParseError(n))
			}
			gv := int64(v)
			m.GlobalVersion = &gv
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: ListKeyVersionsResponse: unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

// ErrorCode mirrors the wire ErrorCode enum.
type ErrorCode int32

const (
	ErrorCodeUnknown        ErrorCode = 0
	ErrorCodeConflict       ErrorCode = 1
	ErrorCodeInvalidRequest ErrorCode = 2
	ErrorCodeInternal       ErrorCode = 3
	ErrorCodeNoSuchKey      ErrorCode = 4
	ErrorCodeAuth           ErrorCode = 5
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeConflict:
		return "CONFLICT"
	case ErrorCodeInvalidRequest:
		return "INVALID_REQUEST"
	case ErrorCodeInternal:
		return "INTERNAL"
	case ErrorCodeNoSuchKey:
		return "NO_SUCH_KEY"
	case ErrorCodeAuth:
		return "AUTH"
	default:
		return "UNKNOWN"
	}
}

// ErrorResponse: { ErrorCode error_code = 1; string message = 2; }
type ErrorResponse struct {
	ErrorCode ErrorCode
	Message   string
}

func (m ErrorResponse) Marshal() []byte {
	var b []byte
	if m.ErrorCode != ErrorCodeUnknown {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.ErrorCode))
	}
	if m.Message != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Message)
	}
	return b
}

func UnmarshalErrorResponse(b []byte) (ErrorResponse, error) {
	var m ErrorResponse
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("wire: ErrorResponse: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, fmt.Errorf("wire: ErrorResponse.error_code: %w", protowire.ParseError(n))
			}
			m.ErrorCode = ErrorCode(v)
			b = b[n:]
		case 2:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return m, fmt.Errorf("wire: ErrorResponse.message: %w", protowire.ParseError(n))
			}
			m.Message = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, fmt.Errorf("wire: ErrorResponse: unknown field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return m, nil
}

func skipUnknownOnly(b []byte, msgName string) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: %s: bad tag: %w", msgName, protowire.ParseError(n))
		}
		b = b[n:]
		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return fmt.Errorf("wire: %s: unknown field %d: %w", msgName, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}
