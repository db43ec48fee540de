package services

import (
	"blinkpay/blink-debit-client-go/internal/app/auth"
	"blinkpay/blink-debit-client-go/internal/app/classifier"
	"blinkpay/blink-debit-client-go/internal/app/transport"
	"blinkpay/blink-debit-client-go/internal/models"
	"context"

	"golang.org/x/exp/slog"
)

const metaPath = basePath + "/meta"

type MetadataService struct {
	client *apiClient
}

func NewMetadataService(t transport.Transport, tokens auth.TokenSupplier, logger *slog.Logger) *MetadataService {
	return &MetadataService{
		client: newAPIClient(t, tokens, logger, "metadata"),
	}
}

// GetMeta lists the banks and the flows each one supports. Elements are
// decoded as the stream is read.
func (s *MetadataService) GetMeta(ctx context.Context, opts ...CallOption) *classifier.Stream[models.BankMetadata] {
	return stream[models.BankMetadata](ctx, s.client, metaPath, opts)
}
