package middleware

import (
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func tick(symbol string) *models.PriceTick {
	return &models.PriceTick{Symbol: symbol, Price: 10, Volume: 1, Timestamp: time.Now().Unix()}
}

func TestAcceptThrottlesPerSymbol(t *testing.T) {
	th := NewTickThrottle(time.Hour)

	ok, err := th.Accept(tick("AAPL"))
	if err != nil || !ok {
		t.Fatalf("first tick should pass, ok=%v err=%v", ok, err)
	}
	ok, err = th.Accept(tick("AAPL"))
	if err != nil || ok {
		t.Fatalf("second tick within interval should drop, ok=%v err=%v", ok, err)
	}
	ok, err = th.Accept(tick("MSFT"))
	if err != nil || !ok {
		t.Fatalf("other symbols are independent, ok=%v err=%v", ok, err)
	}
}

func TestAcceptAllowsAfterInterval(t *testing.T) {
	th := NewTickThrottle(10 * time.Millisecond)
	if ok, _ := th.Accept(tick("AAPL")); !ok {
		t.Fatal("first tick should pass")
	}
	time.Sleep(20 * time.Millisecond)
	if ok, _ := th.Accept(tick("AAPL")); !ok {
		t.Fatal("tick after interval should pass")
	}
}

func TestAcceptRejectsInvalid(t *testing.T) {
	th := NewTickThrottle(0)
	cases := []*models.PriceTick{
		nil,
		{Symbol: "", Price: 1, Volume: 1, Timestamp: 1},
		{Symbol: "AAPL", Price: 1, Volume: 1, Timestamp: 0},
		{Symbol: "AAPL", Price: -1, Volume: 1, Timestamp: 1},
	}
	for i, c := range cases {
		if _, err := th.Accept(c); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}
