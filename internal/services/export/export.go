// Package export produces CSV reports and full JSON backup snapshots,
// and restores a snapshot back into the database.
package export

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Repository defines the bulk read and restore operations.
type Repository interface {
	ListAllTransactions(ctx context.Context) ([]*models.Transaction, error)
	ListAllSubscriptionEntries(ctx context.Context) ([]*models.SubscriptionEntry, error)
	ListAllBillingHistory(ctx context.Context) ([]*models.BillingHistoryEntry, error)
	ListPacks(ctx context.Context) ([]*models.Pack, error)
	ListRegions(ctx context.Context) ([]*models.Region, error)
	ListSubscribers(ctx context.Context, filter models.SubscriberFilter) ([]*models.Subscriber, error)
	ListComplaints(ctx context.Context, subscriberID, status string) ([]*models.Complaint, error)
	ListSTBs(ctx context.Context, status string) ([]*models.STB, error)
	GetCompanySettings(ctx context.Context) (*models.CompanySettings, error)
	RestoreSnapshot(ctx context.Context,
		packs []*models.Pack,
		regions []*models.Region,
		subscribers []*models.Subscriber,
		entries []*models.SubscriptionEntry,
		transactions []*models.Transaction,
		billing []*models.BillingHistoryEntry,
		complaints []*models.Complaint,
		stbs []*models.STB,
		settings *models.CompanySettings,
	) error
}

// Snapshot is the full JSON backup document.
type Snapshot struct {
	ExportedAt      time.Time                    `json:"exported_at"`
	CompanySettings *models.CompanySettings      `json:"company_settings"`
	Regions         []*models.Region             `json:"regions"`
	Packs           []*models.Pack               `json:"packs"`
	Subscribers     []*models.Subscriber         `json:"subscribers"`
	Subscriptions   []*models.SubscriptionEntry  `json:"subscriptions"`
	Transactions    []*models.Transaction        `json:"transactions"`
	BillingHistory  []*models.BillingHistoryEntry `json:"billing_history"`
	Complaints      []*models.Complaint          `json:"complaints"`
	STBs            []*models.STB                `json:"stbs"`
}

// subscriberRow is the CSV shape of a subscriber account.
type subscriberRow struct {
	ID           string `csv:"id"`
	Name         string `csv:"name"`
	Mobile       string `csv:"mobile"`
	Region       string `csv:"region"`
	Balance      string `csv:"balance"`
	CurrentPack  string `csv:"current_pack"`
	BillingCycle string `csv:"billing_cycle"`
	CreatedAt    string `csv:"created_at"`
}

// transactionRow is the CSV shape of a ledger entry.
type transactionRow struct {
	ID           string `csv:"id"`
	SubscriberID string `csv:"subscriber_id"`
	Type         string `csv:"type"`
	Amount       string `csv:"amount"`
	Description  string `csv:"description"`
	Date         string `csv:"date"`
}

// subscriptionRow is the CSV shape of a subscription entry.
type subscriptionRow struct {
	ID             string `csv:"id"`
	SubscriberID   string `csv:"subscriber_id"`
	PackName       string `csv:"pack_name"`
	PackPrice      string `csv:"pack_price"`
	StartDate      string `csv:"start_date"`
	EndDate        string `csv:"end_date"`
	DurationMonths int    `csv:"duration_months"`
	Status         string `csv:"status"`
}

// billingRow is the CSV shape of a billing history record.
type billingRow struct {
	ID            int    `csv:"id"`
	SubscriberID  string `csv:"subscriber_id"`
	BillingCycle  string `csv:"billing_cycle"`
	Amount        string `csv:"amount"`
	DueDate       string `csv:"due_date"`
	GeneratedAt   string `csv:"generated_at"`
	TransactionID string `csv:"transaction_id"`
	Status        string `csv:"status"`
}

// Service implements exports and backups.
type Service struct {
	repo Repository
	clk  clock.Clock
	log  *slog.Logger
}

// New creates an export Service.
func New(repo Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		log:  log,
	}
}

// SubscribersCSV renders all subscriber accounts as CSV.
func (s *Service) SubscribersCSV(ctx context.Context) ([]byte, error) {
	subscribers, err := s.repo.ListSubscribers(ctx, models.SubscriberFilter{})
	if err != nil {
		return nil, err
	}

	rows := make([]*subscriberRow, 0, len(subscribers))
	for _, sub := range subscribers {
		rows = append(rows, &subscriberRow{
			ID:           sub.ID,
			Name:         sub.Name,
			Mobile:       sub.Mobile,
			Region:       sub.Region,
			Balance:      sub.Balance.StringFixed(2),
			CurrentPack:  sub.CurrentPack,
			BillingCycle: sub.BillingCycle,
			CreatedAt:    sub.CreatedAt.Format(time.RFC3339),
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TransactionsCSV renders the full ledger as CSV.
func (s *Service) TransactionsCSV(ctx context.Context) ([]byte, error) {
	transactions, err := s.repo.ListAllTransactions(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]*transactionRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, &transactionRow{
			ID:           t.ID,
			SubscriberID: t.SubscriberID,
			Type:         t.Type,
			Amount:       t.Amount.StringFixed(2),
			Description:  t.Description,
			Date:         t.Date.Format(time.RFC3339),
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SubscriptionsCSV renders all subscription entries as CSV.
func (s *Service) SubscriptionsCSV(ctx context.Context) ([]byte, error) {
	entries, err := s.repo.ListAllSubscriptionEntries(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]*subscriptionRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, &subscriptionRow{
			ID:             e.ID,
			SubscriberID:   e.SubscriberID,
			PackName:       e.PackName,
			PackPrice:      e.PackPrice.StringFixed(2),
			StartDate:      e.StartDate.Format(time.RFC3339),
			EndDate:        e.EndDate.Format(time.RFC3339),
			DurationMonths: e.DurationMonths,
			Status:         e.Status,
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BillingHistoryCSV renders the auto-billing audit trail as CSV.
func (s *Service) BillingHistoryCSV(ctx context.Context) ([]byte, error) {
	history, err := s.repo.ListAllBillingHistory(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]*billingRow, 0, len(history))
	for _, h := range history {
		row := &billingRow{
			ID:           h.ID,
			SubscriberID: h.SubscriberID,
			BillingCycle: h.BillingCycle,
			Amount:       h.Amount.StringFixed(2),
			DueDate:      h.DueDate.Format(time.RFC3339),
			GeneratedAt:  h.GeneratedAt.Format(time.RFC3339),
			Status:       h.Status,
		}
		if h.TransactionID != nil {
			row.TransactionID = *h.TransactionID
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Backup collects the full database state into a snapshot document.
func (s *Service) Backup(ctx context.Context) (*Snapshot, error) {
	settings, err := s.repo.GetCompanySettings(ctx)
	if err != nil {
		return nil, err
	}
	regions, err := s.repo.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	packs, err := s.repo.ListPacks(ctx)
	if err != nil {
		return nil, err
	}
	subscribers, err := s.repo.ListSubscribers(ctx, models.SubscriberFilter{})
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListAllSubscriptionEntries(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := s.repo.ListAllTransactions(ctx)
	if err != nil {
		return nil, err
	}
	billing, err := s.repo.ListAllBillingHistory(ctx)
	if err != nil {
		return nil, err
	}
	complaints, err := s.repo.ListComplaints(ctx, "", "")
	if err != nil {
		return nil, err
	}
	stbs, err := s.repo.ListSTBs(ctx, "")
	if err != nil {
		return nil, err
	}

	s.log.Info("built backup snapshot",
		slog.Int("subscribers", len(subscribers)),
		slog.Int("transactions", len(transactions)))
	return &Snapshot{
		ExportedAt:      s.clk.Now(),
		CompanySettings: settings,
		Regions:         regions,
		Packs:           packs,
		Subscribers:     subscribers,
		Subscriptions:   entries,
		Transactions:    transactions,
		BillingHistory:  billing,
		Complaints:      complaints,
		STBs:            stbs,
	}, nil
}

// Restore replaces the database contents with the snapshot. All tables
// are swapped in one transaction.
func (s *Service) Restore(ctx context.Context, snap *Snapshot) error {
	err := s.repo.RestoreSnapshot(ctx,
		snap.Packs,
		snap.Regions,
		snap.Subscribers,
		snap.Subscriptions,
		snap.Transactions,
		snap.BillingHistory,
		snap.Complaints,
		snap.STBs,
		snap.CompanySettings,
	)
	if err != nil {
		return err
	}

	s.log.Info("restored snapshot",
		slog.Int("subscribers", len(snap.Subscribers)),
		slog.Int("transactions", len(snap.Transactions)))
	return nil
}
