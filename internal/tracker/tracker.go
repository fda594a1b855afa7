// Package tracker drives the check pipeline: fetch, extract, parse, store
// update, alert decision. One product at a time, one pass at a time.
package tracker

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pricewatch/internal/cache"
	"pricewatch/internal/client"
	"pricewatch/internal/database"
	"pricewatch/internal/misc"
	"pricewatch/internal/model"
	"pricewatch/internal/notification"
)

type Tracker struct {
	DB       database.Database
	Client   client.Client
	Notifier notification.Notifier
	Cache    *cache.Cache // nil when the cache is disabled
	Logger   logger

	CheckInterval time.Duration
	Cooldown      time.Duration
	JitterMax     time.Duration
	RequestDelay  time.Duration
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Warn(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// Stats aggregates one monitoring pass.
type Stats struct {
	RunID   string `json:"run_id"`
	Checked int    `json:"checked"`
	Updated int    `json:"updated"`
	Alerts  int    `json:"alerts"`
	Errors  int    `json:"errors"`
}

// CheckResult is the outcome of a single product check.
type CheckResult struct {
	Price   float64
	Alerted bool
}

// shouldNotify decides whether an observed price constitutes an alertable
// drop: valid price at or below target, and outside the cooldown window.
func shouldNotify(p model.Product, price float64, now time.Time, cooldown time.Duration) bool {
	if price <= 0 || price > p.TargetPrice {
		return false
	}
	if p.NotifiedAt == nil {
		return true
	}
	return now.Sub(p.NotifiedAt.Time()) > cooldown
}

// CheckProduct runs one product through the pipeline. Every attempt leaves
// a history record; only successful ones touch current_price.
func (t Tracker) CheckProduct(ctx context.Context, p model.Product) (CheckResult, error) {
	name := misc.StringLimit(p.Name, 45)
	t.Logger.Debugf("CheckProduct: Checking product: %s, ID: %s, URL: %s", name, p.ID.Hex(), p.URL)

	info, err := t.Client.ScrapeProduct(ctx, p.URL)
	if err != nil {
		t.recordFailure(ctx, p, err)
		return CheckResult{}, err
	}

	if err := t.DB.ProductPriceUpdate(ctx, p, info.Price); err != nil {
		return CheckResult{}, errors.Wrapf(err, "error storing price for product: %s, ID: %s", name, p.ID.Hex())
	}
	price := info.Price
	ph := model.PriceHistory{
		ProductID:    p.ID,
		Price:        &price,
		Status:       model.HistoryStatusSuccess,
		Availability: info.Availability,
		Seller:       info.Seller,
		Timestamp:    primitive.NewDateTimeFromTime(time.Now()),
	}
	if err := t.DB.PriceHistoryInsert(ctx, ph); err != nil {
		return CheckResult{}, errors.Wrapf(err, "error storing history for product: %s, ID: %s", name, p.ID.Hex())
	}

	if t.Cache != nil {
		lp := cache.LatestPrice{
			ProductID: p.ID.Hex(),
			Name:      p.Name,
			Price:     info.Price,
			CheckedAt: time.Now(),
		}
		if err := t.Cache.SetLatestPrice(ctx, lp); err != nil {
			t.Logger.Warnf("CheckProduct: Error caching latest price for product: %s, ID: %s, err: %v",
				name, p.ID.Hex(), err)
		}
	}

	res := CheckResult{Price: info.Price}
	res.Alerted = t.maybeNotify(ctx, p, info)
	return res, nil
}

func (t Tracker) recordFailure(ctx context.Context, p model.Product, checkErr error) {
	ph := model.PriceHistory{
		ProductID:    p.ID,
		Status:       model.HistoryStatusError,
		ErrorMessage: checkErr.Error(),
		Timestamp:    primitive.NewDateTimeFromTime(time.Now()),
	}
	if err := t.DB.PriceHistoryInsert(ctx, ph); err != nil {
		t.Logger.Errorf("CheckProduct: Error storing failed-check history for ID: %s, err: %v", p.ID.Hex(), err)
	}
	if err := t.DB.ProductLastCheckedUpdate(ctx, p.ID); err != nil {
		t.Logger.Errorf("CheckProduct: Error stamping last_checked for ID: %s, err: %v", p.ID.Hex(), err)
	}
}

// maybeNotify fires the alert when the observed price is an actionable
// drop. The cooldown timestamp is written exactly once per alert, however
// many channels delivered.
func (t Tracker) maybeNotify(ctx context.Context, p model.Product, info model.ProductInfo) bool {
	now := time.Now()
	if !t.Notifier.Enabled() || !shouldNotify(p, info.Price, now, t.Cooldown) {
		return false
	}

	// First check ever: use the target as the reference old price.
	oldPrice := p.TargetPrice
	if p.CurrentPrice != nil {
		oldPrice = *p.CurrentPrice
	}
	alert := notification.Alert{
		ProductName: p.Name,
		ProductURL:  p.URL,
		Site:        p.Site,
		OldPrice:    oldPrice,
		NewPrice:    info.Price,
		TargetPrice: p.TargetPrice,
	}
	t.Logger.Infof("CheckProduct: Price drop for product: %s, ID: %s, %.2f <= target %.2f, notifying",
		misc.StringLimit(p.Name, 45), p.ID.Hex(), info.Price, p.TargetPrice)

	res := t.Notifier.Notify(alert)
	if !res.Any() {
		return false
	}

	if err := t.DB.ProductNotifiedUpdate(ctx, p.ID, now); err != nil {
		t.Logger.Errorf("CheckProduct: Error stamping notified_at for ID: %s, err: %v", p.ID.Hex(), err)
	}
	sentAt := primitive.NewDateTimeFromTime(now)
	if res.EmailSent {
		n := model.Notification{ProductID: p.ID, Channel: model.ChannelEmail, Price: info.Price, SentAt: sentAt, Success: true}
		if err := t.DB.NotificationInsert(ctx, n); err != nil {
			t.Logger.Errorf("CheckProduct: Error storing email Notification for ID: %s, err: %v", p.ID.Hex(), err)
		}
	}
	if res.DesktopSent {
		n := model.Notification{ProductID: p.ID, Channel: model.ChannelDesktop, Price: info.Price, SentAt: sentAt, Success: true}
		if err := t.DB.NotificationInsert(ctx, n); err != nil {
			t.Logger.Errorf("CheckProduct: Error storing desktop Notification for ID: %s, err: %v", p.ID.Hex(), err)
		}
	}
	return true
}

// CheckAll runs one pass over every due product. A product's failure is
// counted and logged, never fatal to the pass; failing to list due
// products aborts the pass.
func (t Tracker) CheckAll(ctx context.Context) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}

	ps, err := t.DB.ProductsFindDue(ctx, t.CheckInterval)
	if err != nil {
		return stats, errors.Wrap(err, "error getting due products from DB")
	}
	if len(ps) == 0 {
		t.Logger.Infof("CheckAll: No products due, run: %s", stats.RunID)
		return stats, nil
	}
	t.Logger.Infof("CheckAll: Checking %d product(s), run: %s", len(ps), stats.RunID)

	for _, p := range ps {
		if ctx.Err() != nil {
			t.Logger.Warnf("CheckAll: Pass cancelled, run: %s", stats.RunID)
			break
		}
		if t.JitterMax > 0 {
			if err := sleepCtx(ctx, time.Duration(rand.Int63n(int64(t.JitterMax)))); err != nil {
				break
			}
		}

		stats.Checked++
		res, err := t.CheckProduct(ctx, p)
		if err != nil {
			stats.Errors++
			t.Logger.Errorf("CheckAll: Error checking product: %s, ID: %s, err: %v",
				misc.StringLimit(p.Name, 45), p.ID.Hex(), err)
		} else {
			stats.Updated++
			if res.Alerted {
				stats.Alerts++
			}
		}

		if err := sleepCtx(ctx, t.RequestDelay); err != nil {
			break
		}
	}

	t.Logger.Infof("CheckAll: Pass complete, run: %s, checked: %d, updated: %d, alerts: %d, errors: %d",
		stats.RunID, stats.Checked, stats.Updated, stats.Alerts, stats.Errors)
	return stats, nil
}

// MonitorInInterval runs a pass immediately, then on every tick until the
// context is cancelled. OnPass, when set, receives each pass's stats.
func (t Tracker) MonitorInInterval(ctx context.Context, ticker *time.Ticker, onPass func(Stats)) {
	runPass := func() {
		stats, err := t.CheckAll(ctx)
		if err != nil {
			t.Logger.Errorf("MonitorInInterval: Pass aborted, err: %v", err)
			return
		}
		if onPass != nil {
			onPass(stats)
		}
	}

	runPass()
	for {
		select {
		case <-ctx.Done():
			t.Logger.Info("MonitorInInterval: Stopping, context cancelled")
			return
		case <-ticker.C:
			runPass()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tm.C:
		return nil
	}
}
