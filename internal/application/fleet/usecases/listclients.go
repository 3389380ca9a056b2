package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// ClientDTO represents the data transfer object for clients. Config and
// LiveStatus are populated on single-client reads only.
type ClientDTO struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Status         string        `json:"status"`
	LiveStatus     string        `json:"live_status,omitempty"`
	CurrentVersion *string       `json:"current_version"`
	TargetVersion  *string       `json:"target_version"`
	LastSeenAt     *string       `json:"last_seen_at"`
	Config         *fleet.Config `json:"config,omitempty"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}

func newClientDTO(c *fleet.Client, status fleet.Status) *ClientDTO {
	dto := &ClientDTO{
		ID:             c.SID(),
		Name:           c.Name(),
		Status:         string(status),
		CurrentVersion: c.CurrentVersion(),
		TargetVersion:  c.TargetVersion(),
		CreatedAt:      c.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      c.UpdatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
	if seen := c.LastSeenAt(); seen != nil {
		formatted := seen.Format("2006-01-02T15:04:05Z07:00")
		dto.LastSeenAt = &formatted
	}
	return dto
}

// ListClientsQuery represents the input for listing clients.
type ListClientsQuery struct {
	Page     int
	PageSize int
	Name     string
	// Status filters rows by derived status after computation; pagination
	// counts are unaffected by it.
	Status string
}

// ListClientsResult represents the output of listing clients.
type ListClientsResult struct {
	Clients []*ClientDTO
	Total   int64
	Page    int
	Pages   int
}

// ListClientsUseCase handles listing clients with derived status per row.
type ListClientsUseCase struct {
	repo         fleet.Repository
	ledger       LedgerStatusReader
	offlineAfter time.Duration
	logger       logger.Interface
}

// NewListClientsUseCase creates a new ListClientsUseCase.
func NewListClientsUseCase(
	repo fleet.Repository,
	ledger LedgerStatusReader,
	offlineAfter time.Duration,
	logger logger.Interface,
) *ListClientsUseCase {
	return &ListClientsUseCase{
		repo:         repo,
		ledger:       ledger,
		offlineAfter: offlineAfter,
		logger:       logger,
	}
}

// Execute retrieves a page of clients, newest first.
func (uc *ListClientsUseCase) Execute(ctx context.Context, query ListClientsQuery) (*ListClientsResult, error) {
	uc.logger.Debugw("executing list clients use case", "page", query.Page, "page_size", query.PageSize)

	if query.Status != "" && !fleet.Status(query.Status).IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid status filter: %s", query.Status))
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	clients, total, err := uc.repo.List(ctx, fleet.ListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Name:     query.Name,
	})
	if err != nil {
		uc.logger.Errorw("failed to list clients", "error", err)
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	pages := int(total) / query.PageSize
	if int(total)%query.PageSize > 0 {
		pages++
	}

	dtos := make([]*ClientDTO, 0, len(clients))
	for _, client := range clients {
		status, err := resolveStatus(ctx, uc.ledger, client, uc.offlineAfter)
		if err != nil {
			uc.logger.Errorw("failed to derive client status", "sid", client.SID(), "error", err)
			return nil, fmt.Errorf("failed to derive client status: %w", err)
		}
		if query.Status != "" && string(status) != query.Status {
			continue
		}
		dtos = append(dtos, newClientDTO(client, status))
	}

	return &ListClientsResult{
		Clients: dtos,
		Total:   total,
		Page:    query.Page,
		Pages:   pages,
	}, nil
}
