package reports

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewScheduler returns a scheduler running in the shop's time zone.
func NewScheduler(location string) (*gocron.Scheduler, error) {
	loc, err := time.LoadLocation(location)
	if err != nil {
		return nil, errors.Wrapf(err, "load time zone %q", location)
	}
	return gocron.NewScheduler(loc), nil
}

// ScheduleDailyExport registers the end-of-day job: write the journal and log the summary.
func ScheduleDailyExport(s *gocron.Scheduler, at, dir string, l Ledger) (*gocron.Job, error) {
	job, err := s.Every(1).Day().At(at).Do(DailyExport, dir, l)
	if err != nil {
		return nil, errors.Wrapf(err, "schedule daily export at %q", at)
	}
	return job, nil
}

// DailyExport is the job body run by the scheduler.
func DailyExport(dir string, l Ledger) {
	zap.S().Info("daily sales journal export started")

	path, err := WriteJournal(dir, l)
	if err != nil {
		zap.S().Errorf("daily export failed: %v", err)
		return
	}
	sum := Summarize(l)
	zap.S().Infow("daily export done",
		"file", path,
		"receipts", sum.ReceiptCount,
		"revenue", sum.Revenue.StringFixed(2),
		"expenses", sum.Expenses.StringFixed(2),
		"profit", sum.Profit.StringFixed(2),
	)
}
