package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
)

// AccountResponse represents a cari account in API responses.
type AccountResponse struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Kind        string          `json:"kind"`
	Currency    string          `json:"currency"`
	TaxNo       string          `json:"tax_no,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Bakiye      decimal.Decimal `json:"bakiye"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Kind:        string(a.Kind),
		Currency:    a.Currency,
		TaxNo:       a.TaxNo,
		Phone:       a.Phone,
		Bakiye:      a.CachedBakiye,
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Unit      string          `json:"unit,omitempty"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductFromDomain converts a domain product to a response.
func ProductFromDomain(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Unit:      p.Unit,
		OnHand:    p.OnHand,
		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProductsFromDomain converts domain products to responses.
func ProductsFromDomain(products []*domain.Product) []*ProductResponse {
	result := make([]*ProductResponse, len(products))
	for i, p := range products {
		result[i] = ProductFromDomain(p)
	}
	return result
}

// LineItemResponse is one product line of an entry.
type LineItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID            string             `json:"id"`
	AccountID     string             `json:"account_id"`
	SaleNo        string             `json:"sale_no,omitempty"`
	Type          string             `json:"type"`
	Direction     string             `json:"direction"`
	Amount        decimal.Decimal    `json:"amount"`
	Currency      string             `json:"currency"`
	FxRate        decimal.Decimal    `json:"fx_rate"`
	Items         []LineItemResponse `json:"items,omitempty"`
	Note          string             `json:"note,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	RefEntryID    string             `json:"ref_entry_id,omitempty"`
	RefSaleNo     string             `json:"ref_sale_no,omitempty"`
	Status        string             `json:"status"`
	IsDeleted     bool               `json:"is_deleted"`
	Date          time.Time          `json:"date"`
	CreatedAt     time.Time          `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	var items []LineItemResponse
	if len(e.Items) > 0 {
		items = make([]LineItemResponse, len(e.Items))
		for i, item := range e.Items {
			items[i] = LineItemResponse{
				ProductID: item.ProductID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
		}
	}

	return &EntryResponse{
		ID:            e.ID,
		AccountID:     e.AccountID,
		SaleNo:        e.SaleNo,
		Type:          string(e.Type),
		Direction:     string(e.Direction),
		Amount:        e.Amount,
		Currency:      e.Currency,
		FxRate:        e.FxRate,
		Items:         items,
		Note:          e.Note,
		PaymentMethod: string(e.PaymentMethod),
		RefEntryID:    e.RefEntryID,
		RefSaleNo:     e.RefSaleNo,
		Status:        string(e.Status),
		IsDeleted:     e.IsDeleted,
		Date:          e.Date,
		CreatedAt:     e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse represents a computed balance.
type BalanceResponse struct {
	Borc   decimal.Decimal `json:"borc"`
	Alacak decimal.Decimal `json:"alacak"`
	Bakiye decimal.Decimal `json:"bakiye"`
}

// BalanceFromDomain converts a domain balance to a response.
func BalanceFromDomain(b domain.Balance) BalanceResponse {
	return BalanceResponse{
		Borc:   b.Borc,
		Alacak: b.Alacak,
		Bakiye: b.Bakiye,
	}
}

// StatementRowResponse is one ekstre line.
type StatementRowResponse struct {
	EntryID       string          `json:"entry_id"`
	Date          time.Time       `json:"date"`
	SaleNo        string          `json:"sale_no,omitempty"`
	Type          string          `json:"type"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Aciklama      string          `json:"aciklama"`
	RunningBakiye decimal.Decimal `json:"running_bakiye"`
}

// StatementResponse represents an account statement.
type StatementResponse struct {
	Account *AccountResponse       `json:"account"`
	Rows    []StatementRowResponse `json:"rows"`
	Totals  BalanceResponse        `json:"totals"`
}

// StatementFromUseCase converts a statement projection to a response.
func StatementFromUseCase(s *usecase.Statement) *StatementResponse {
	rows := make([]StatementRowResponse, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = StatementRowResponse{
			EntryID:       row.EntryID,
			Date:          row.Date,
			SaleNo:        row.SaleNo,
			Type:          string(row.Type),
			Direction:     string(row.Direction),
			Amount:        row.Amount,
			Aciklama:      row.Aciklama,
			RunningBakiye: row.RunningBakiye,
		}
	}

	return &StatementResponse{
		Account: AccountFromDomain(s.Account),
		Rows:    rows,
		Totals:  BalanceFromDomain(s.Totals),
	}
}

// ReconciliationResponse is the drift report for one account.
type ReconciliationResponse struct {
	AccountID     string          `json:"account_id"`
	CachedBakiye  decimal.Decimal `json:"cached_bakiye"`
	JournalBakiye decimal.Decimal `json:"journal_bakiye"`
	Difference    decimal.Decimal `json:"difference"`
	EntryCount    int64           `json:"entry_count"`
	IsReconciled  bool            `json:"is_reconciled"`
	CheckedAt     time.Time       `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:     r.AccountID,
		CachedBakiye:  r.CachedBakiye,
		JournalBakiye: r.JournalBakiye,
		Difference:    r.Difference,
		EntryCount:    r.EntryCount,
		IsReconciled:  r.IsReconciled,
		CheckedAt:     r.CheckedAt,
	}
}

// ReconciliationReportResponse is the scope-wide drift report.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a scope report to a response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}

	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
