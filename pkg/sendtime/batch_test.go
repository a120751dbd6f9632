package sendtime

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCalculateBatchAttributesResults(t *testing.T) {
	now := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // Monday
	c := newTestCalculator(t, now)

	contacts := make([]Contact, 20)
	for i := range contacts {
		contacts[i] = Contact{
			SubscriberKey: fmt.Sprintf("sub-%02d", i),
			CountryCode:   "US",
			EntryTime:     time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		}
	}
	contacts[7].SubscriberKey = "" // one invalid contact in the middle

	batch := c.CalculateBatch(context.Background(), contacts, ActivityConfig{SkipWeekends: true}, 4)

	if len(batch.Results) != len(contacts) {
		t.Fatalf("results = %d, want %d", len(batch.Results), len(contacts))
	}
	if batch.Succeeded != 19 || batch.Failed != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 19/1", batch.Succeeded, batch.Failed)
	}
	for i, r := range batch.Results {
		if i == 7 {
			if r.Success {
				t.Error("contact 7 should have failed")
			}
			continue
		}
		if r.SubscriberKey != contacts[i].SubscriberKey {
			t.Errorf("result %d attributed to %q, want %q", i, r.SubscriberKey, contacts[i].SubscriberKey)
		}
		if !r.Success {
			t.Errorf("result %d failed: %s", i, r.Error)
		}
	}
}

func TestCalculateBatchIndependentOfOrder(t *testing.T) {
	now := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	c := newTestCalculator(t, now)

	contacts := []Contact{
		{SubscriberKey: "a", CountryCode: "US", EntryTime: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)},
		{SubscriberKey: "b", CountryCode: "BR", EntryTime: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)},
		{SubscriberKey: "c", CountryCode: "IN", EntryTime: time.Date(2024, 3, 6, 3, 30, 0, 0, time.UTC)},
	}
	cfg := ActivityConfig{SkipWeekends: true, SkipHolidays: true}

	sequential := make([]Result, len(contacts))
	for i, contact := range contacts {
		sequential[i] = c.Calculate(context.Background(), contact, cfg)
	}

	batch := c.CalculateBatch(context.Background(), contacts, cfg, 3)
	for i := range contacts {
		if !batch.Results[i].OptimalSendTime.Equal(sequential[i].OptimalSendTime) {
			t.Errorf("contact %s: batch send time %v differs from sequential %v",
				contacts[i].SubscriberKey, batch.Results[i].OptimalSendTime, sequential[i].OptimalSendTime)
		}
	}
}

func TestCalculateBatchCanceledContext(t *testing.T) {
	now := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	c := newTestCalculator(t, now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	contacts := []Contact{
		{SubscriberKey: "a", CountryCode: "US"},
		{SubscriberKey: "b", CountryCode: "US"},
	}
	batch := c.CalculateBatch(ctx, contacts, ActivityConfig{}, 2)

	if len(batch.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(batch.Results))
	}
	for i, r := range batch.Results {
		if r.Success {
			t.Errorf("result %d succeeded under canceled context", i)
		}
		if r.SubscriberKey != contacts[i].SubscriberKey {
			t.Errorf("result %d lost its subscriber key", i)
		}
		if r.ErrorCategory != ErrCategoryCanceled {
			t.Errorf("result %d category = %q, want %q", i, r.ErrorCategory, ErrCategoryCanceled)
		}
	}
	if batch.Failed != 2 {
		t.Errorf("failed = %d, want 2", batch.Failed)
	}
}
