package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/receipt"
)

// archivePageSize bounds how many settled trades one archive run scans per
// status. Runs are daily and idempotent, so a backlog drains across runs.
const archivePageSize = 500

// SettledTradeStore is the slice of the snapshot store the archiver needs.
type SettledTradeStore interface {
	ListByStatus(ctx context.Context, status domain.DisplayStatus, opts domain.ListOpts) ([]domain.TradeSnapshot, error)
}

// ReceiptArchiver implements domain.ReceiptArchiver. It writes one JSON
// receipt per settled trade to object storage, keyed by the month the trade
// was created:
//
//	receipts/2025/01/trade-42.json
//
// Uploads are idempotent: a receipt that already exists is skipped, so the
// archiver can run on a schedule without re-writing history.
type ReceiptArchiver struct {
	writer domain.BlobWriter
	reader domain.BlobReader
	snaps  SettledTradeStore
	logger *slog.Logger
}

// NewReceiptArchiver creates a ReceiptArchiver.
func NewReceiptArchiver(writer domain.BlobWriter, reader domain.BlobReader, snaps SettledTradeStore, logger *slog.Logger) *ReceiptArchiver {
	return &ReceiptArchiver{
		writer: writer,
		reader: reader,
		snaps:  snaps,
		logger: logger,
	}
}

// ArchiveReceipts uploads receipts for completed trades that have not been
// archived yet and returns the number uploaded.
func (a *ReceiptArchiver) ArchiveReceipts(ctx context.Context) (int64, error) {
	snaps, err := a.snaps.ListByStatus(ctx, domain.StatusCompleted, domain.ListOpts{Limit: archivePageSize})
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive receipts query: %w", err)
	}

	var uploaded int64
	for _, snap := range snaps {
		if err := ctx.Err(); err != nil {
			return uploaded, fmt.Errorf("s3blob: archive receipts: %w", err)
		}

		path := receiptPath(snap)

		exists, err := a.reader.Exists(ctx, path)
		if err != nil {
			return uploaded, fmt.Errorf("s3blob: archive receipts head %s: %w", path, err)
		}
		if exists {
			continue
		}

		rcpt, err := receipt.Build(snap, time.Now())
		if err != nil {
			// A malformed snapshot must not wedge the whole run.
			a.logger.WarnContext(ctx, "receipt build failed, skipping",
				slog.String("trade_id", snap.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		data, err := marshalReceipt(rcpt)
		if err != nil {
			return uploaded, fmt.Errorf("s3blob: archive receipts marshal %s: %w", snap.ID, err)
		}

		if err := a.writer.Put(ctx, path, bytes.NewReader(data), "application/json"); err != nil {
			return uploaded, fmt.Errorf("s3blob: archive receipts upload %s: %w", path, err)
		}
		uploaded++
	}

	return uploaded, nil
}

// receiptPath builds the object key for a trade's receipt, partitioned by
// the year and month the trade was created.
func receiptPath(snap domain.TradeSnapshot) string {
	created := time.Unix(snap.CreatedAt, 0).UTC()
	return fmt.Sprintf("receipts/%s/trade-%s.json", created.Format("2006/01"), snap.ID)
}

func marshalReceipt(r receipt.Receipt) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.ReceiptArchiver = (*ReceiptArchiver)(nil)
