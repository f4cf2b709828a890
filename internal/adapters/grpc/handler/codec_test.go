package handler

import (
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestJSONCodec_ProtoMessages(t *testing.T) {
	t.Parallel()

	codec := jsonCodec{}

	raw, err := codec.Marshal(wrapperspb.String("E-100"))
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(raw) != `"E-100"` {
		t.Fatalf("expected protojson wrapper encoding, got %s", raw)
	}

	payDay := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)
	raw, err = codec.Marshal(timestamppb.New(payDay))
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(raw) != `"2024-03-25T00:00:00Z"` {
		t.Fatalf("expected RFC 3339 timestamp, got %s", raw)
	}

	var ts timestamppb.Timestamp
	if err := codec.Unmarshal(raw, &ts); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !ts.AsTime().Equal(payDay) {
		t.Fatalf("expected %v, got %v", payDay, ts.AsTime())
	}

	if err := codec.Unmarshal(nil, &emptypb.Empty{}); err != nil {
		t.Fatalf("expected empty body to decode into Empty, got %v", err)
	}
	if err := codec.Unmarshal([]byte(`{"seconds":"x"}`), &ts); err == nil {
		t.Fatal("expected protojson to reject a malformed timestamp")
	}
}

func TestJSONCodec_PlainStructs(t *testing.T) {
	t.Parallel()

	codec := jsonCodec{}

	raw, err := codec.Marshal(&IDRequest{ID: "rec-1"})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(raw) != `{"id":"rec-1"}` {
		t.Fatalf("unexpected encoding: %s", raw)
	}

	var req IDRequest
	if err := codec.Unmarshal(raw, &req); err != nil || req.ID != "rec-1" {
		t.Fatalf("Unmarshal = %+v, %v", req, err)
	}
	if codec.Name() != CodecName {
		t.Fatalf("unexpected codec name %s", codec.Name())
	}
}
