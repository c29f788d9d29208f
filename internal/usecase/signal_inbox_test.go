package usecase

import (
	"testing"
	"time"

	"TradePilot/internal/domain/models"
)

func TestInboxKeepsLatestPerSource(t *testing.T) {
	inbox := NewSignalInbox(time.Minute)
	inbox.Put("BTCUSDT", models.Signal{Source: models.SourceTechnical, Recommendation: models.Buy, Confidence: 60})
	inbox.Put("BTCUSDT", models.Signal{Source: models.SourceTechnical, Recommendation: models.Sell, Confidence: 80})

	got := inbox.Snapshot("BTCUSDT")
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(got))
	}
	if got[0].Recommendation != models.Sell || got[0].Confidence != 80 {
		t.Fatalf("expected latest opinion, got %+v", got[0])
	}
}

func TestInboxExpiresEntries(t *testing.T) {
	inbox := NewSignalInbox(10 * time.Millisecond)
	inbox.Put("ETHUSDT", models.Signal{Source: models.SourceSentiment, Recommendation: models.Buy, Confidence: 70})

	time.Sleep(30 * time.Millisecond)
	if got := inbox.Snapshot("ETHUSDT"); len(got) != 0 {
		t.Fatalf("expected expired inbox, got %d signals", len(got))
	}
}

func TestInboxNormalizesOnPut(t *testing.T) {
	inbox := NewSignalInbox(time.Minute)
	inbox.Put("BTCUSDT", models.Signal{Source: models.SourceSimpleAI, Recommendation: "BULLISH", Confidence: 150})

	got := inbox.Snapshot("BTCUSDT")
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(got))
	}
	if got[0].Recommendation != models.Buy {
		t.Fatalf("expected BULLISH coerced to BUY, got %s", got[0].Recommendation)
	}
	if got[0].Confidence != 100 {
		t.Fatalf("expected confidence clamped to 100, got %v", got[0].Confidence)
	}
}

func TestInboxSeparatesSymbols(t *testing.T) {
	inbox := NewSignalInbox(time.Minute)
	inbox.Put("BTCUSDT", models.Signal{Source: models.SourceWyckoff, Recommendation: models.Buy, Confidence: 75})

	if got := inbox.Snapshot("ETHUSDT"); len(got) != 0 {
		t.Fatalf("expected empty snapshot for other symbol, got %d", len(got))
	}
}
