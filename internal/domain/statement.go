package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementRow is one line of an ekstre: the entry plus the running bakiye
// as of that row.
type StatementRow struct {
	EntryID       string
	Date          time.Time
	SaleNo        string
	Type          EntryType
	Direction     Direction
	Amount        decimal.Decimal
	Aciklama      string
	RunningBakiye decimal.Decimal
}

// aciklama lookup table keyed by entry type; payment wording depends on
// direction (tahsilat collects, odeme pays out).
var aciklamalar = map[EntryType]string{
	EntrySale:           "Satis",
	EntrySaleReturn:     "Satis iadesi",
	EntrySaleCancel:     "Satis iptali",
	EntryPurchase:       "Alis",
	EntryPurchaseCancel: "Alis iptali",
	EntryTahsilatCancel: "Tahsilat iptali",
}

// Aciklama returns the human-readable statement label for an entry.
func Aciklama(t EntryType, d Direction, method PaymentMethod) string {
	if t == EntryPayment {
		switch {
		case method == MethodMahsup:
			return "Mahsup"
		case method == MethodIade:
			return "Iade odemesi"
		case d == DirectionBorc:
			return "Tahsilat"
		default:
			return "Odeme"
		}
	}

	if s, ok := aciklamalar[t]; ok {
		return s
	}

	return string(t)
}

// BuildStatement folds entries (ordered by date ascending) into statement
// rows, maintaining the running bakiye with the same borc - alacak convention
// FoldBalance uses. Entries that do not count in balance are skipped.
func BuildStatement(entries []*Entry) []StatementRow {
	rows := make([]StatementRow, 0, len(entries))
	running := decimal.Zero

	for _, e := range entries {
		if !e.CountsInBalance() {
			continue
		}

		running = running.Add(e.BalanceDelta())

		rows = append(rows, StatementRow{
			EntryID:       e.ID,
			Date:          e.Date,
			SaleNo:        e.SaleNo,
			Type:          e.Type,
			Direction:     e.Direction,
			Amount:        e.Amount,
			Aciklama:      Aciklama(e.Type, e.Direction, e.PaymentMethod),
			RunningBakiye: running,
		})
	}

	return rows
}
