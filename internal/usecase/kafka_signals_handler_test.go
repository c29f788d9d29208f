package usecase

import (
	"context"
	"testing"
	"time"
)

func TestKafkaSignalsHandlerMissingVsZeroConfidence(t *testing.T) {
	inbox := NewSignalInbox(time.Minute)
	h := NewKafkaSignalsHandler("signals", inbox, nil)

	msg := []byte(`{"symbol":"BTCUSDT","source":"TECHNICAL","recommendation":"BUY"}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got := inbox.Snapshot("BTCUSDT")
	if len(got) != 1 || got[0].Confidence != 50 {
		t.Fatalf("expected omitted confidence to default to 50, got %+v", got)
	}

	msg = []byte(`{"symbol":"BTCUSDT","source":"TECHNICAL","recommendation":"BUY","confidence":0}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got = inbox.Snapshot("BTCUSDT")
	if len(got) != 1 || got[0].Confidence != 0 {
		t.Fatalf("expected explicit zero confidence to stay 0, got %+v", got)
	}
}

func TestKafkaSignalsHandlerRejectsMissingSymbol(t *testing.T) {
	inbox := NewSignalInbox(time.Minute)
	h := NewKafkaSignalsHandler("signals", inbox, nil)

	if err := h.Handle(context.Background(), []byte(`{"source":"TECHNICAL","recommendation":"BUY"}`)); err == nil {
		t.Fatalf("expected error for message without symbol")
	}
}

func TestKafkaSignalsHandlerTopic(t *testing.T) {
	h := NewKafkaSignalsHandler("signals", NewSignalInbox(time.Minute), nil)
	if h.Topic() != "signals" {
		t.Fatalf("unexpected topic %q", h.Topic())
	}
}
