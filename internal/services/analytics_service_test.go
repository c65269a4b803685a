package services

import (
	"testing"
	"time"
)

func TestRangeSince(t *testing.T) {
	now := time.Now()

	since, err := rangeSince(Range7Days)
	if err != nil {
		t.Fatalf("7d: %v", err)
	}
	if since == nil || now.Sub(*since) < 6*24*time.Hour || now.Sub(*since) > 8*24*time.Hour {
		t.Errorf("7d since = %v", since)
	}

	since, err = rangeSince(Range30Days)
	if err != nil {
		t.Fatalf("30d: %v", err)
	}
	if since == nil || now.Sub(*since) < 29*24*time.Hour {
		t.Errorf("30d since = %v", since)
	}

	since, err = rangeSince(RangeAllTime)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if since != nil {
		t.Errorf("all-time must have no lower bound, got %v", since)
	}

	if _, err := rangeSince("yesterday"); err == nil {
		t.Fatal("expected error for unknown range")
	}
}
