package imapsync

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	idle "github.com/emersion/go-imap-idle"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/config"
	"github.com/adityaparmar/onebox/internal/core"
	"github.com/adityaparmar/onebox/internal/metrics"
)

// Engine synchronizes the configured mailbox accounts into the search
// index. Each account runs one goroutine with two phases: a bounded
// backfill at startup and an IDLE-driven live tail. Fetches never
// overlap with IDLE on the same connection, which serializes mailbox
// access per account.
type Engine struct {
	accounts           []config.AccountConfig
	svc                *core.IngestService
	index              core.EmailIndex
	notifier           core.Notifier
	logger             *zap.Logger
	backfillWindow     time.Duration
	emptyIndexLookback time.Duration
	stopCh             chan struct{}
	wg                 sync.WaitGroup
}

// NewEngine creates a sync engine for the given accounts.
func NewEngine(
	accounts []config.AccountConfig,
	svc *core.IngestService,
	index core.EmailIndex,
	notifier core.Notifier,
	logger *zap.Logger,
	backfillWindow time.Duration,
	emptyIndexLookback time.Duration,
) *Engine {
	return &Engine{
		accounts:           accounts,
		svc:                svc,
		index:              index,
		notifier:           notifier,
		logger:             logger,
		backfillWindow:     backfillWindow,
		emptyIndexLookback: emptyIndexLookback,
		stopCh:             make(chan struct{}),
	}
}

// Start ensures every account's collection exists and launches the
// per-account sync goroutines.
func (e *Engine) Start() error {
	if len(e.accounts) == 0 {
		e.logger.Warn("No IMAP accounts configured, sync engine is idle")
		return nil
	}

	for _, acct := range e.accounts {
		if err := e.index.EnsureCollection(context.Background(), CollectionName(acct.Name)); err != nil {
			return fmt.Errorf("failed to ensure collection for %s: %w", acct.Name, err)
		}
	}

	for _, acct := range e.accounts {
		e.wg.Add(1)
		go func(acct config.AccountConfig) {
			defer e.wg.Done()
			e.runAccount(acct)
		}(acct)
	}

	return nil
}

// Stop terminates all account flows and waits for them to exit.
func (e *Engine) Stop() error {
	close(e.stopCh)
	e.wg.Wait()
	return nil
}

// runAccount drives one account from connect through backfill into the
// live tail. Connection failure is fatal to this account; there is no
// reconnect loop.
func (e *Engine) runAccount(acct config.AccountConfig) {
	logger := e.logger.With(zap.String("account", acct.Name))

	c, err := connectAndLogin(acct)
	if err != nil {
		logger.Error("IMAP connection failed, giving up on account", zap.Error(err))
		return
	}
	defer func() {
		_ = c.Logout()
		logger.Info("Logged out from IMAP server")
	}()

	logger.Info("Connected to IMAP", zap.String("host", acct.Host))

	collection := CollectionName(acct.Name)

	if err := e.backfill(c, acct, collection, logger); err != nil {
		logger.Error("Backfill aborted", zap.Error(err))
		return
	}

	e.liveTail(c, acct, collection, logger)
}

// connectAndLogin establishes a TLS connection to the account's IMAP
// server, logs in and selects the INBOX.
func connectAndLogin(acct config.AccountConfig) (*client.Client, error) {
	address := fmt.Sprintf("%s:%d", acct.Host, acct.Port)

	tlsConfig := &tls.Config{
		ServerName: acct.Host,
	}

	c, err := client.DialTLS(address, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(acct.Username, acct.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	if _, err := c.Select(inboxFolder, false); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	return c, nil
}

// backfill indexes every message newer than the configured window,
// strictly sequentially.
func (e *Engine) backfill(c *client.Client, acct config.AccountConfig, collection string, logger *zap.Logger) error {
	since := time.Now().Add(core.TimeOffset).Add(-e.backfillWindow)

	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	msgs, section, err := searchAndFetch(c, criteria)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, msg := range msgs {
		email := Normalize(msg, section, acct.Name)
		if err := e.svc.Ingest(ctx, collection, email); err != nil {
			return fmt.Errorf("failed to index backfill message: %w", err)
		}
		metrics.EmailsIndexed.WithLabelValues(acct.Name, "backfill").Inc()
		metrics.ClassificationResults.WithLabelValues(email.Category).Inc()
	}

	logger.Info("Backfill complete",
		zap.Int("messages", len(msgs)),
		zap.Time("since", since))
	return nil
}

// liveTail waits for new-mail notifications via IDLE and indexes
// messages past the watermark. IDLE is stopped before each fetch and
// restarted afterwards, so notifications for one account are handled
// one at a time; updates arriving during a fetch stay buffered and
// coalesce into the next round.
func (e *Engine) liveTail(c *client.Client, acct config.AccountConfig, collection string, logger *zap.Logger) {
	updates := make(chan client.Update, 64) // buffered so the server is never blocked mid-command
	c.Updates = updates

	idleClient := idle.NewClient(c)

	for {
		stop := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- idleClient.IdleWithFallback(stop, 0)
		}()

		newMail := false
		waiting := true
		for waiting {
			select {
			case <-e.stopCh:
				close(stop)
				<-done
				return
			case err := <-done:
				// IDLE ended on its own: the connection is gone and
				// this account's sync stops here.
				if err != nil {
					logger.Error("IDLE terminated", zap.Error(err))
				}
				return
			case update := <-updates:
				if _, ok := update.(*client.MailboxUpdate); ok {
					logger.Info("New email detected")
					newMail = true
					waiting = false
				}
			}
		}

		close(stop)
		if err := <-done; err != nil {
			logger.Error("Failed to stop IDLE", zap.Error(err))
			return
		}

		if newMail {
			if err := e.syncNew(c, acct, collection, logger); err != nil {
				logger.Error("Live sync failed", zap.Error(err))
			}
		}
	}
}

// syncNew determines the watermark from the index and processes unseen
// messages strictly newer than it.
func (e *Engine) syncNew(c *client.Client, acct config.AccountConfig, collection string, logger *zap.Logger) error {
	ctx := context.Background()
	watermark := e.watermark(ctx, collection, logger)

	criteria := imap.NewSearchCriteria()
	criteria.Since = watermark
	criteria.WithoutFlags = []string{imap.SeenFlag}

	msgs, section, err := searchAndFetch(c, criteria)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if _, err := e.ingestNew(ctx, msg, section, acct.Name, collection, watermark, logger); err != nil {
			return err
		}
	}

	return nil
}

// ingestNew normalizes one fetched message and, when its date is
// strictly after the watermark, indexes and notifies it. Returns
// whether the message was indexed.
func (e *Engine) ingestNew(
	ctx context.Context,
	msg *imap.Message,
	section *imap.BodySectionName,
	account string,
	collection string,
	watermark time.Time,
	logger *zap.Logger,
) (bool, error) {
	email := Normalize(msg, section, account)

	// SINCE has day granularity, so the fetch can return messages
	// at or before the watermark; only strictly newer ones count.
	if !email.Date.After(watermark) {
		return false, nil
	}

	if err := e.svc.Ingest(ctx, collection, email); err != nil {
		return false, fmt.Errorf("failed to index new message: %w", err)
	}
	metrics.EmailsIndexed.WithLabelValues(account, "live").Inc()
	metrics.ClassificationResults.WithLabelValues(email.Category).Inc()

	// TODO: gate the webhook on CategoryInterested once product
	// confirms; today every newly indexed message notifies. This is
	// the recorded discrepancy in DESIGN.md (notifier gating) — do
	// not change without revisiting that decision.
	if err := e.notifier.NotifyNewMail(ctx, email); err != nil {
		metrics.NotificationFailures.Inc()
		logger.Error("Webhook notification failed", zap.Error(err))
	}

	logger.Info("Indexed new email",
		zap.String("sender", email.Sender),
		zap.String("category", email.Category))
	return true, nil
}

// watermark is the date of the most recently indexed record, or a
// fixed lookback when the collection is empty. It is recomputed on
// every trigger rather than tracked in memory.
func (e *Engine) watermark(ctx context.Context, collection string, logger *zap.Logger) time.Time {
	last, err := e.index.LastIndexedDate(ctx, collection)
	if err != nil {
		logger.Warn("Failed to read last indexed date, using lookback", zap.Error(err))
		return time.Now().Add(-e.emptyIndexLookback)
	}
	if last.IsZero() {
		return time.Now().Add(-e.emptyIndexLookback)
	}

	logger.Info("Last indexed email datetime", zap.Time("watermark", last))
	return last
}

// searchAndFetch runs a search and fetches envelope, UID and full body
// section for every match.
func searchAndFetch(c *client.Client, criteria *imap.SearchCriteria) ([]*imap.Message, *imap.BodySectionName, error) {
	section := &imap.BodySectionName{}

	uids, err := c.Search(criteria)
	if err != nil {
		return nil, section, fmt.Errorf("failed to search: %w", err)
	}
	if len(uids) == 0 {
		return nil, section, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchUid,
		section.FetchItem(),
	}

	ch := make(chan *imap.Message, len(uids))
	if err := c.Fetch(seqset, items, ch); err != nil {
		return nil, section, fmt.Errorf("failed to fetch messages: %w", err)
	}

	msgs := make([]*imap.Message, 0, len(uids))
	for msg := range ch {
		msgs = append(msgs, msg)
	}
	return msgs, section, nil
}
