package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/satistakip/cariledger/internal/domain"
	"github.com/satistakip/cariledger/internal/usecase"
)

// CreateAccountRequest represents a request to create a cari account.
type CreateAccountRequest struct {
	DisplayName string `json:"display_name"`
	Kind        string `json:"kind"`
	Currency    string `json:"currency"`
	TaxNo       string `json:"tax_no,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(scope domain.Scope) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Scope:       scope,
		DisplayName: r.DisplayName,
		Kind:        domain.AccountKind(r.Kind),
		Currency:    r.Currency,
		TaxNo:       r.TaxNo,
		Phone:       r.Phone,
	}
}

// CreateProductRequest represents a request to create a product.
type CreateProductRequest struct {
	Name    string          `json:"name"`
	SKU     string          `json:"sku,omitempty"`
	Unit    string          `json:"unit,omitempty"`
	Initial decimal.Decimal `json:"initial"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateProductRequest) ToUseCaseInput(scope domain.Scope) usecase.CreateProductInput {
	return usecase.CreateProductInput{
		Scope:   scope,
		Name:    r.Name,
		SKU:     r.SKU,
		Unit:    r.Unit,
		Initial: r.Initial,
	}
}

// LineItemRequest is one product line of a sale or purchase.
type LineItemRequest struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func lineItemsToDomain(items []LineItemRequest) []domain.LineItem {
	if len(items) == 0 {
		return nil
	}

	result := make([]domain.LineItem, len(items))
	for i, item := range items {
		result[i] = domain.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	return result
}

// AmountAliases carries the amount field together with the aliases older
// clients still send. Precedence: amount, then total, then total_try.
type AmountAliases struct {
	Amount   decimal.Decimal `json:"amount"`
	Total    decimal.Decimal `json:"total"`
	TotalTRY decimal.Decimal `json:"total_try"`
}

// Normalize resolves the alias precedence into a single amount.
func (a AmountAliases) Normalize() decimal.Decimal {
	if !a.Amount.IsZero() {
		return a.Amount
	}
	if !a.Total.IsZero() {
		return a.Total
	}

	return a.TotalTRY
}

// PostSaleRequest represents a sale posting. A positive paid_amount posts a
// companion payment entry under the same sale number.
type PostSaleRequest struct {
	AmountAliases

	AccountID     string            `json:"account_id"`
	SaleNo        string            `json:"sale_no"`
	Currency      string            `json:"currency,omitempty"`
	FxRate        decimal.Decimal   `json:"fx_rate,omitempty"`
	Date          *time.Time        `json:"date,omitempty"`
	Items         []LineItemRequest `json:"items,omitempty"`
	Note          string            `json:"note,omitempty"`
	PaidAmount    decimal.Decimal   `json:"paid_amount,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostSaleRequest) ToUseCaseInput(scope domain.Scope) usecase.PostSaleInput {
	return usecase.PostSaleInput{
		Scope:         scope,
		AccountID:     r.AccountID,
		SaleNo:        r.SaleNo,
		Amount:        r.Normalize(),
		Currency:      r.Currency,
		FxRate:        r.FxRate,
		Date:          r.Date,
		Items:         lineItemsToDomain(r.Items),
		Note:          r.Note,
		PaidAmount:    r.PaidAmount,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
	}
}

// PostPurchaseRequest represents a purchase posting.
type PostPurchaseRequest struct {
	AmountAliases

	AccountID string            `json:"account_id"`
	SaleNo    string            `json:"sale_no"`
	Currency  string            `json:"currency,omitempty"`
	FxRate    decimal.Decimal   `json:"fx_rate,omitempty"`
	Date      *time.Time        `json:"date,omitempty"`
	Items     []LineItemRequest `json:"items,omitempty"`
	Note      string            `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostPurchaseRequest) ToUseCaseInput(scope domain.Scope) usecase.PostPurchaseInput {
	return usecase.PostPurchaseInput{
		Scope:     scope,
		AccountID: r.AccountID,
		SaleNo:    r.SaleNo,
		Amount:    r.Normalize(),
		Currency:  r.Currency,
		FxRate:    r.FxRate,
		Date:      r.Date,
		Items:     lineItemsToDomain(r.Items),
		Note:      r.Note,
	}
}

// PostPaymentRequest represents a standalone payment posting.
type PostPaymentRequest struct {
	AmountAliases

	AccountID string     `json:"account_id"`
	SaleNo    string     `json:"sale_no,omitempty"`
	Kind      string     `json:"kind"`
	Method    string     `json:"method,omitempty"`
	Currency  string     `json:"currency,omitempty"`
	Date      *time.Time `json:"date,omitempty"`
	Note      string     `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *PostPaymentRequest) ToUseCaseInput(scope domain.Scope) usecase.PostPaymentInput {
	return usecase.PostPaymentInput{
		Scope:     scope,
		AccountID: r.AccountID,
		SaleNo:    r.SaleNo,
		Kind:      usecase.PaymentKind(r.Kind),
		Method:    domain.PaymentMethod(r.Method),
		Amount:    r.Normalize(),
		Currency:  r.Currency,
		Date:      r.Date,
		Note:      r.Note,
	}
}

// CancelRequest represents a cancellation of an entry or sale group.
type CancelRequest struct {
	Note string `json:"note,omitempty"`
}

// ReturnSaleRequest represents a sale return, optionally settled immediately.
type ReturnSaleRequest struct {
	AmountAliases

	Items      []LineItemRequest `json:"items,omitempty"`
	Settlement string            `json:"settlement,omitempty"`
	Note       string            `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReturnSaleRequest) ToUseCaseInput(scope domain.Scope, saleEntryID string) usecase.ReturnSaleInput {
	return usecase.ReturnSaleInput{
		Scope:       scope,
		SaleEntryID: saleEntryID,
		Amount:      r.Normalize(),
		Items:       lineItemsToDomain(r.Items),
		Settlement:  usecase.ReturnSettlement(r.Settlement),
		Note:        r.Note,
	}
}

// SettleReturnRequest settles a previously posted open return.
type SettleReturnRequest struct {
	Settlement string `json:"settlement"`
}
