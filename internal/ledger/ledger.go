// Package ledger implements the campus cash-register lifecycle, the debt ledger
// and the transaction allocator on top of a storage.Store.
//
// Every mutation runs inside a single store transaction. Business failures are
// reported with the apperr taxonomy; anything else is an infrastructure error.
package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mariafernandaa20/prexun-caja/internal/apperr"
	"github.com/mariafernandaa20/prexun-caja/internal/audit"
	"github.com/mariafernandaa20/prexun-caja/internal/metrics"
	"github.com/mariafernandaa20/prexun-caja/internal/storage"
)

// DefaultFolioWidth is the zero padding used when rendering folios on receipts.
const DefaultFolioWidth = 6

// Ledger groups the three components sharing one store.
type Ledger struct {
	Registers    *Registers
	Debts        *Debts
	Transactions *Allocator
}

// deps are shared by every component.
type deps struct {
	store      storage.Store
	folios     *FolioGenerator
	directory  Directory
	events     audit.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	folioWidth int
}

// Option configures a Ledger.
type Option func(*deps)

// WithClock overrides time.Now, mainly for tests around due dates.
func WithClock(now func() time.Time) Option {
	return func(d *deps) {
		d.now = now
	}
}

// WithDirectory sets the lookup used to reject unknown campuses and students.
func WithDirectory(dir Directory) Option {
	return func(d *deps) {
		d.directory = dir
	}
}

// WithEvents sets the audit logger. Events are emitted after commit.
func WithEvents(l audit.Logger) Option {
	return func(d *deps) {
		d.events = l
	}
}

// WithMetrics sets the Prometheus instruments. A nil Metrics records nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) {
		d.metrics = m
	}
}

// WithFolioWidth sets the zero padding of rendered folios.
func WithFolioWidth(width int) Option {
	return func(d *deps) {
		if width > 0 {
			d.folioWidth = width
		}
	}
}

// New creates a Ledger backed by store.
func New(store storage.Store, opts ...Option) *Ledger {
	d := &deps{
		store:      store,
		folios:     &FolioGenerator{},
		directory:  StaticDirectory{},
		events:     audit.Discard,
		now:        func() time.Time { return time.Now().UTC() },
		folioWidth: DefaultFolioWidth,
	}
	for _, opt := range opts {
		opt(d)
	}

	debts := &Debts{deps: d}
	return &Ledger{
		Registers:    &Registers{deps: d},
		Debts:        debts,
		Transactions: &Allocator{deps: d, debts: debts},
	}
}

func (d *deps) emit(eventType string, data any, operator string) {
	e := audit.NewEvent(audit.WithType(eventType), audit.WithData(data))
	if operator != "" {
		e.Metadata["operator"] = operator
	}
	d.events.Log(e)
}

func (d *deps) checkCampus(ctx context.Context, campusID int64) error {
	if campusID <= 0 {
		return apperr.Validation("campus_id must be positive")
	}
	ok, err := d.directory.CampusExists(ctx, campusID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("campus %d", campusID)
	}
	return nil
}

func (d *deps) checkStudent(ctx context.Context, studentID int64) error {
	if studentID < 0 {
		return apperr.Validation("student_id must be positive")
	}
	if studentID == 0 {
		return nil
	}
	ok, err := d.directory.StudentExists(ctx, studentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("student %d", studentID)
	}
	return nil
}

// notFound converts storage.ErrNotFound into the business error for entity.
func notFound(err error, entity, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("%s %s", entity, id)
	}
	return err
}

// checkCents rejects amounts finer than a cent. field names the input in the message.
func checkCents(field string, amount decimal.Decimal) error {
	if !wholeCents(amount) {
		return apperr.Validation("%s $%s has more than two decimals", field, amount.String())
	}
	return nil
}

func wholeCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
