package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"minimarket/config"
	"minimarket/metrics"
	"minimarket/models"
	"minimarket/reports"
	"minimarket/store"
)

const metricsFileName = "metrics.prom"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := config.SetupLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	s, err := run(cfg, time.Now, os.Stdout, os.Stderr)
	if err != nil {
		zap.S().Errorf("store stopped: %v", err)
		_ = logger.Sync()
		os.Exit(1)
	}

	if cfg.Daemon {
		if err := serveReports(cfg, s); err != nil {
			zap.S().Errorf("scheduler stopped: %v", err)
			_ = logger.Sync()
			os.Exit(1)
		}
	}
	_ = logger.Sync()
}

// run plays the demo day: one cashier, two products, one sale, then the closing summary.
// A failed sale is reported on stderr and does not stop the summary.
func run(cfg *config.AppConfig, now func() time.Time, stdout, stderr io.Writer) (*store.Store, error) {
	if err := os.MkdirAll(cfg.ReceiptDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create receipt dir %s", cfg.ReceiptDir)
	}

	m := metrics.New()
	s := store.New(store.Pricing{
		FoodMarkup:          cfg.FoodMarkup,
		NonFoodMarkup:       cfg.NonFoodMarkup,
		ExpiryThresholdDays: cfg.ExpiryThresholdDays,
		DiscountPercent:     cfg.DiscountPercent,
	},
		store.WithReceiptDir(cfg.ReceiptDir),
		store.WithMetrics(m),
		store.WithClock(now),
	)

	p := s.Pricing()
	zap.S().Infof("pricing: food markup %s%%, non-food markup %s%%, %s%% off within %d days of expiry",
		p.FoodMarkup, p.NonFoodMarkup, p.DiscountPercent, p.ExpiryThresholdDays)

	cashier, err := seedDemo(s, now())
	if err != nil {
		return nil, err
	}

	order := map[string]int{"P1": 2, "P2": 1}
	if _, err := s.SellProducts(cashier, order); err != nil {
		fmt.Fprintln(stderr, err)
	}

	for _, line := range reports.Summarize(s).Lines() {
		fmt.Fprintln(stdout, line)
	}

	if _, err := reports.WriteJournal(cfg.ReceiptDir, s); err != nil {
		zap.S().Warnf("sales journal not written: %v", err)
	}
	if err := m.WriteTextfile(filepath.Join(cfg.ReceiptDir, metricsFileName)); err != nil {
		zap.S().Warnf("metrics not written: %v", err)
	}
	return s, nil
}

// seedDemo registers the demo cashier and stock.
func seedDemo(s *store.Store, today time.Time) (models.Cashier, error) {
	cashier, err := models.NewCashier("001", "Иван Иванов", decimal.NewFromInt(1200))
	if err != nil {
		return models.Cashier{}, err
	}
	s.AddCashier(cashier)

	milk, err := models.NewProduct("P1", "Мляко", decimal.RequireFromString("1.20"), models.CategoryFood, today.AddDate(0, 0, 3), 10)
	if err != nil {
		return models.Cashier{}, err
	}
	soap, err := models.NewProduct("P2", "Сапун", decimal.RequireFromString("0.80"), models.CategoryNonFood, today.AddDate(0, 6, 0), 5)
	if err != nil {
		return models.Cashier{}, err
	}
	s.AddProduct(milk)
	s.AddProduct(soap)
	return cashier, nil
}

// serveReports keeps the process alive and exports the journal every day until SIGINT/SIGTERM.
func serveReports(cfg *config.AppConfig, s *store.Store) error {
	sched, err := reports.NewScheduler(cfg.Location)
	if err != nil {
		return err
	}
	if _, err := reports.ScheduleDailyExport(sched, cfg.ReportAt, cfg.ReceiptDir, s); err != nil {
		return err
	}
	sched.StartAsync()
	zap.S().Infof("daily export scheduled at %s (%s)", cfg.ReportAt, cfg.Location)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	sched.Stop()
	zap.S().Info("scheduler stopped")
	return nil
}
