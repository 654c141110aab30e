package normalizer

import (
	"testing"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"smart-money-tracker/internal/domain"
)

const testMint = "So11111111111111111111111111111111111111112"

// onCurveWallet returns a base58 address that decodes to a valid curve point.
func onCurveWallet() string {
	return base58.Encode(edwards25519.NewGeneratorPoint().Bytes())
}

// offCurveWallet returns a 32-byte base58 address that is not a curve point.
func offCurveWallet(t *testing.T) string {
	t.Helper()
	b := edwards25519.NewGeneratorPoint().Bytes()
	for i := 0; i < 256; i++ {
		b[0] = byte(i)
		if _, err := new(edwards25519.Point).SetBytes(b); err != nil {
			return base58.Encode(b)
		}
	}
	t.Fatal("no off-curve encoding found")
	return ""
}

func validRaw() domain.RawTrade {
	return domain.RawTrade{
		TxType:          domain.ActionBuy,
		TraderPublicKey: onCurveWallet(),
		Mint:            testMint,
		Name:            "Test Token",
		Symbol:          "TEST",
		SolAmount:       1.5,
		TokenAmount:     1000,
		Signature:       "sig-1",
		TimestampMs:     1_700_000_000_000,
	}
}

func TestNormalize_ValidBuy(t *testing.T) {
	n := New()

	ev, ok := n.Normalize(validRaw())
	if !ok {
		t.Fatal("expected valid trade to normalize")
	}
	if ev.Action != domain.ActionBuy {
		t.Errorf("expected buy, got %s", ev.Action)
	}
	if ev.Timestamp != 1_700_000_000 {
		t.Errorf("expected seconds timestamp 1700000000, got %d", ev.Timestamp)
	}
	if ev.Price != 1.5/1000 {
		t.Errorf("expected price %f, got %f", 1.5/1000, ev.Price)
	}
	if ev.AmountSOL != 1.5 || ev.Signature != "sig-1" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestNormalize_Rejections(t *testing.T) {
	n := New()

	cases := []struct {
		name   string
		mutate func(*domain.RawTrade)
	}{
		{"create message", func(r *domain.RawTrade) { r.TxType = "create" }},
		{"empty tx type", func(r *domain.RawTrade) { r.TxType = "" }},
		{"empty signature", func(r *domain.RawTrade) { r.Signature = "" }},
		{"zero sol amount", func(r *domain.RawTrade) { r.SolAmount = 0 }},
		{"negative sol amount", func(r *domain.RawTrade) { r.SolAmount = -1 }},
		{"empty trader", func(r *domain.RawTrade) { r.TraderPublicKey = "" }},
		{"malformed trader", func(r *domain.RawTrade) { r.TraderPublicKey = "not-base58-0OIl" }},
		{"short trader", func(r *domain.RawTrade) { r.TraderPublicKey = "abc" }},
		{"empty mint", func(r *domain.RawTrade) { r.Mint = "" }},
		{"malformed mint", func(r *domain.RawTrade) { r.Mint = "zzz" }},
	}

	for _, tc := range cases {
		raw := validRaw()
		tc.mutate(&raw)
		if _, ok := n.Normalize(raw); ok {
			t.Errorf("%s: expected rejection", tc.name)
		}
	}
}

func TestNormalize_OffCurveTraderRejected(t *testing.T) {
	n := New()

	raw := validRaw()
	raw.TraderPublicKey = offCurveWallet(t)
	if _, ok := n.Normalize(raw); ok {
		t.Error("expected off-curve trader key to be rejected")
	}
}

func TestNormalize_OffCurveMintAccepted(t *testing.T) {
	// Mints are routinely program-derived, so only length is checked
	n := New()

	raw := validRaw()
	raw.Mint = offCurveWallet(t)
	if _, ok := n.Normalize(raw); !ok {
		t.Error("expected off-curve mint to be accepted")
	}
}

func TestNormalize_SellAccepted(t *testing.T) {
	n := New()

	raw := validRaw()
	raw.TxType = domain.ActionSell
	ev, ok := n.Normalize(raw)
	if !ok {
		t.Fatal("expected sell to normalize")
	}
	if ev.Action != domain.ActionSell {
		t.Errorf("expected sell, got %s", ev.Action)
	}
}

func TestNormalize_ZeroTokenAmountZeroesPrice(t *testing.T) {
	n := New()

	raw := validRaw()
	raw.TokenAmount = 0
	ev, ok := n.Normalize(raw)
	if !ok {
		t.Fatal("expected trade to normalize")
	}
	if ev.Price != 0 {
		t.Errorf("expected price 0 with zero token amount, got %f", ev.Price)
	}
}

func TestNormalize_MissingTimestampUsesClock(t *testing.T) {
	fixed := time.Unix(1_800_000_000, 0)
	n := NewWithClock(func() time.Time { return fixed })

	raw := validRaw()
	raw.TimestampMs = 0
	ev, ok := n.Normalize(raw)
	if !ok {
		t.Fatal("expected trade to normalize")
	}
	if ev.Timestamp != 1_800_000_000 {
		t.Errorf("expected clock timestamp, got %d", ev.Timestamp)
	}
}
