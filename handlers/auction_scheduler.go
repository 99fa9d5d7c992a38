package handlers

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"p9e.in/flytta/config"
	"p9e.in/flytta/models"
)

// AuctionScheduler owns the periodic auction task. There is exactly one per
// process; settings changes go through Reconfigure instead of swapping a
// package-level timer.
type AuctionScheduler struct {
	db     *gorm.DB
	engine *SettlementEngine

	mu           sync.Mutex
	ticker       *time.Ticker
	stopCh       chan struct{}
	disableTimer *time.Timer
}

func NewAuctionScheduler(engine *SettlementEngine) *AuctionScheduler {
	return &AuctionScheduler{
		db:     config.DB,
		engine: engine,
	}
}

// Start arms the auction ticker and the auto-disable timer from the current
// settings and blocks processing cycles until Stop is called.
func (as *AuctionScheduler) Start() {
	settings, err := models.LoadSettings(as.db)
	if err != nil {
		log.Printf("❌ Auction scheduler cannot load settings: %v", err)
		return
	}

	as.mu.Lock()
	as.stopCh = make(chan struct{})
	as.ticker = time.NewTicker(time.Duration(settings.AuctionIntervalMinutes) * time.Minute)
	as.armDisableTimerLocked(settings.AuctionAutoDisableMinutes)
	ticker := as.ticker
	stopCh := as.stopCh
	as.mu.Unlock()

	log.Printf("📅 Auction scheduler started: every %d min, auto-disable after %d min",
		settings.AuctionIntervalMinutes, settings.AuctionAutoDisableMinutes)

	for {
		select {
		case <-ticker.C:
			as.RunCycle()
		case <-stopCh:
			return
		}
	}
}

// Reconfigure re-reads the settings and re-arms the ticker and the
// auto-disable timer. Called by the admin settings endpoint.
func (as *AuctionScheduler) Reconfigure() {
	settings, err := models.LoadSettings(as.db)
	if err != nil {
		log.Printf("❌ Auction scheduler cannot reload settings: %v", err)
		return
	}

	as.mu.Lock()
	defer as.mu.Unlock()
	if as.ticker != nil {
		as.ticker.Reset(time.Duration(settings.AuctionIntervalMinutes) * time.Minute)
	}
	as.armDisableTimerLocked(settings.AuctionAutoDisableMinutes)
	log.Printf("📅 Auction scheduler reconfigured: every %d min, auto-disable after %d min",
		settings.AuctionIntervalMinutes, settings.AuctionAutoDisableMinutes)
}

// Stop halts the cycle loop and all timers.
func (as *AuctionScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.ticker != nil {
		as.ticker.Stop()
	}
	if as.disableTimer != nil {
		as.disableTimer.Stop()
	}
	if as.stopCh != nil {
		close(as.stopCh)
		as.stopCh = nil
	}
}

// armDisableTimerLocked (re)starts the auto-disable countdown. Auctions shut
// themselves off after the configured window so an admin has to confirm they
// should keep running. Caller holds as.mu.
func (as *AuctionScheduler) armDisableTimerLocked(minutes int) {
	if as.disableTimer != nil {
		as.disableTimer.Stop()
	}
	if minutes <= 0 {
		return
	}
	as.disableTimer = time.AfterFunc(time.Duration(minutes)*time.Minute, as.disableAuctions)
}

func (as *AuctionScheduler) disableAuctions() {
	if err := as.db.Model(&models.Settings{}).
		Where("auction_enabled = ?", true).
		Update("auction_enabled", false).Error; err != nil {
		log.Printf("❌ Failed to auto-disable auctions: %v", err)
		return
	}
	log.Println("⏸️  Auctions auto-disabled, waiting for admin re-confirmation")

	if err := NewNotificationService().NotifyAdmins(CreateNotificationParams{
		Type:    models.NotificationTypeAuctionDisabled,
		Title:   "Auctions paused",
		Message: "The scheduled auction was automatically disabled. Re-enable it in the settings to resume.",
	}); err != nil {
		log.Printf("⚠️  Failed to notify admins about auto-disable: %v", err)
	}
}

// RunCycle evaluates every open quotation with pending bids once. Settings
// are re-read per cycle so admin changes apply without a restart.
func (as *AuctionScheduler) RunCycle() {
	settings, err := models.LoadSettings(as.db)
	if err != nil {
		log.Printf("❌ Auction cycle cannot load settings: %v", err)
		return
	}
	if !settings.AuctionEnabled {
		log.Println("⏸️  Auctions disabled, skipping cycle")
		return
	}

	settled, skipped := 0, 0
	for _, qt := range models.AllQuotationTypes() {
		ids, err := models.OpenQuotationIDsWithPendingBids(as.db, qt)
		if err != nil {
			log.Printf("⚠️  Failed to list open %s quotations: %v", qt, err)
			continue
		}
		for _, id := range ids {
			ok, err := as.settleQuotation(qt, id, settings)
			if err != nil {
				log.Printf("⚠️  Auction settlement failed for %s/%s: %v", qt, id, err)
				continue
			}
			if ok {
				settled++
			} else {
				skipped++
			}
		}
	}
	log.Printf("🔍 Auction cycle done: %d settled, %d held back", settled, skipped)
}

// settleQuotation runs the high-value gate and, when clear, the settlement
// engine for one quotation. Returns false when the quotation was held back.
func (as *AuctionScheduler) settleQuotation(qt models.QuotationType, id uuid.UUID, settings *models.Settings) (bool, error) {
	bids, err := models.PendingBids(as.db, qt, id)
	if err != nil {
		return false, err
	}
	winner := SelectWinner(bids)
	if winner == nil {
		return false, nil
	}

	if ExceedsThreshold(winner.Total(), settings.HighValueThreshold) {
		held, err := as.gateHighValue(qt, id, winner, settings)
		if err != nil || held {
			return false, err
		}
	}

	_, err = as.engine.Settle(qt, id, SettleOptions{Actor: "auction"})
	if err != nil {
		// A concurrent manual accept winning the race is not a failure.
		if errors.Is(err, ErrAlreadySettled) || errors.Is(err, ErrNoPendingBids) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// gateHighValue records (or re-reads) the review marker for a high-value
// winner and reports whether settlement must still wait. The marker is
// persisted rather than slept on, so an admin acting inside the window simply
// wins the settle-exactly-once race.
func (as *AuctionScheduler) gateHighValue(qt models.QuotationType, id uuid.UUID, winner *models.Bid, settings *models.Settings) (bool, error) {
	var marker models.HighValueBid
	err := as.db.Where("quotation_type = ? AND quotation_id = ?", qt, id).First(&marker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		marker = models.HighValueBid{
			BidID:         winner.ID,
			QuotationType: qt,
			QuotationID:   id,
			BidTotal:      winner.Total(),
			Threshold:     settings.HighValueThreshold,
		}
		if err := as.db.Create(&marker).Error; err != nil {
			return false, err
		}
		log.Printf("⏳ High-value bid %s (%s SEK) on %s/%s held for review",
			winner.ID, winner.Total(), qt, id)

		if err := NewNotificationService().NotifyAdmins(CreateNotificationParams{
			Type:  models.NotificationTypeHighValueReview,
			Title: "High-value bid awaiting review",
			Message: fmt.Sprintf("A winning bid of %s SEK exceeds the %s SEK threshold. It settles automatically in %d minutes unless you intervene.",
				winner.Total(), settings.HighValueThreshold, settings.HighValueReviewDelayMinutes),
			ReferenceID:   &marker.ID,
			ReferenceType: "high_value_bid",
		}); err != nil {
			log.Printf("⚠️  Failed to notify admins about high-value bid: %v", err)
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	delay := time.Duration(settings.HighValueReviewDelayMinutes) * time.Minute
	if !ReviewWindowElapsed(marker.CreatedAt, time.Now(), delay) {
		return true, nil
	}
	return false, nil
}

// ExceedsThreshold reports whether a bid total trips the high-value gate.
// A zero or negative threshold disables the gate.
func ExceedsThreshold(total, threshold decimal.Decimal) bool {
	if !threshold.IsPositive() {
		return false
	}
	return total.GreaterThan(threshold)
}

// ReviewWindowElapsed reports whether the admin review window for a
// high-value marker has passed.
func ReviewWindowElapsed(markedAt, now time.Time, delay time.Duration) bool {
	return !now.Before(markedAt.Add(delay))
}
