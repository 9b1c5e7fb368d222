package handler

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// DateLayout は日付フィールドの書式です。
const DateLayout = "2006-01-02"

var errInvalidField = errors.New("handler: invalid field")

func fieldError(key, want string) error {
	return fmt.Errorf("%w: %s must be %s", errInvalidField, key, want)
}

// lookup はキーの値を返します。存在しない場合と null の場合は nil です。
func lookup(req *structpb.Struct, key string) *structpb.Value {
	v, ok := req.GetFields()[key]
	if !ok {
		return nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil
	}
	return v
}

func stringValue(req *structpb.Struct, key string) (string, error) {
	v, err := optionalString(req, key)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func optionalString(req *structpb.Struct, key string) (*string, error) {
	v := lookup(req, key)
	if v == nil {
		return nil, nil
	}
	kind, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, fieldError(key, "a string")
	}
	s := kind.StringValue
	return &s, nil
}

func numberValue(req *structpb.Struct, key string) (float64, error) {
	v, err := optionalNumber(req, key)
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

func optionalNumber(req *structpb.Struct, key string) (*float64, error) {
	v := lookup(req, key)
	if v == nil {
		return nil, nil
	}
	kind, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, fieldError(key, "a number")
	}
	n := kind.NumberValue
	return &n, nil
}

func intValue(req *structpb.Struct, key string) (int, error) {
	n, err := optionalNumber(req, key)
	if err != nil || n == nil {
		return 0, err
	}
	if *n != math.Trunc(*n) || math.Abs(*n) > math.MaxInt32 {
		return 0, fieldError(key, "an integer")
	}
	return int(*n), nil
}

func optionalBool(req *structpb.Struct, key string) (*bool, error) {
	v := lookup(req, key)
	if v == nil {
		return nil, nil
	}
	kind, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, fieldError(key, "a boolean")
	}
	b := kind.BoolValue
	return &b, nil
}

// optionalTime は RFC 3339 形式の時刻を読み取ります。
func optionalTime(req *structpb.Struct, key string) (*time.Time, error) {
	raw, err := optionalString(req, key)
	if err != nil || raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(*raw))
	if err != nil {
		return nil, fieldError(key, "an RFC 3339 timestamp")
	}
	t = t.UTC()
	return &t, nil
}

// dateValue は loc における暦日を読み取ります。未指定の場合はゼロ値を返します。
func dateValue(req *structpb.Struct, key string, loc *time.Location) (time.Time, error) {
	raw, err := stringValue(req, key)
	if err != nil || strings.TrimSpace(raw) == "" {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fieldError(key, "a date formatted as "+DateLayout)
	}
	return t, nil
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func stringOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// respond は map を structpb.Struct に変換します。
func respond(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}

func requireRequest(req *structpb.Struct) error {
	if req == nil {
		return status.Error(codes.InvalidArgument, "request is required")
	}
	return nil
}
