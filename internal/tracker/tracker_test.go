package tracker

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pricewatch/internal/model"
)

func dtPtr(t time.Time) *primitive.DateTime {
	dt := primitive.NewDateTimeFromTime(t)
	return &dt
}

func TestShouldNotifyCooldownSequence(t *testing.T) {
	cooldown := 24 * time.Hour
	now := time.Now()
	p := model.Product{TargetPrice: 50}

	// First drop at or below target fires.
	if !shouldNotify(p, 45, now, cooldown) {
		t.Fatal("first drop at/below target should notify")
	}
	p.NotifiedAt = dtPtr(now)

	// Still below target an hour later, inside the cooldown window.
	if shouldNotify(p, 44, now.Add(time.Hour), cooldown) {
		t.Error("drop within cooldown should not notify")
	}

	// Cooldown elapsed, still below target.
	if !shouldNotify(p, 44, now.Add(cooldown+time.Minute), cooldown) {
		t.Error("drop after cooldown should notify again")
	}
}

func TestShouldNotifyAboveTarget(t *testing.T) {
	p := model.Product{TargetPrice: 50}
	if shouldNotify(p, 50.01, time.Now(), time.Hour) {
		t.Error("price above target should not notify")
	}
	if !shouldNotify(p, 50, time.Now(), time.Hour) {
		t.Error("price exactly at target should notify")
	}
}

func TestShouldNotifyInvalidPrice(t *testing.T) {
	p := model.Product{TargetPrice: 50}
	for _, price := range []float64{0, -5} {
		if shouldNotify(p, price, time.Now(), time.Hour) {
			t.Errorf("invalid price %v should not notify", price)
		}
	}
}
