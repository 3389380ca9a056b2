package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/fleet"
	"github.com/drover-dev/drover/internal/domain/rollout"
	"github.com/drover-dev/drover/internal/shared/errors"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// UpdateLogDTO represents the data transfer object for ledger entries.
// Client fields are blank when the owning client has been deleted.
type UpdateLogDTO struct {
	ID           string  `json:"id"`
	ClientID     string  `json:"client_id,omitempty"`
	ClientName   string  `json:"client_name,omitempty"`
	FromVersion  *string `json:"from_version"`
	ToVersion    string  `json:"to_version"`
	Status       string  `json:"status"`
	IsRollback   bool    `json:"is_rollback"`
	ErrorMessage *string `json:"error_message,omitempty"`
	StartedAt    string  `json:"started_at"`
	CompletedAt  *string `json:"completed_at,omitempty"`
}

// ListUpdateLogsQuery represents the input for listing ledger entries.
type ListUpdateLogsQuery struct {
	Page     int
	PageSize int
	Status   string
	// ClientSID narrows the view to one client's history.
	ClientSID string
}

// ListUpdateLogsResult represents the output of listing ledger entries.
type ListUpdateLogsResult struct {
	Updates []*UpdateLogDTO
	Total   int64
	Page    int
	Pages   int
}

// ListUpdateLogsUseCase handles update history queries, newest first.
type ListUpdateLogsUseCase struct {
	ledger  rollout.Repository
	clients fleet.Repository
	logger  logger.Interface
}

// NewListUpdateLogsUseCase creates a new ListUpdateLogsUseCase.
func NewListUpdateLogsUseCase(
	ledger rollout.Repository,
	clients fleet.Repository,
	logger logger.Interface,
) *ListUpdateLogsUseCase {
	return &ListUpdateLogsUseCase{
		ledger:  ledger,
		clients: clients,
		logger:  logger,
	}
}

// Execute retrieves a page of ledger entries.
func (uc *ListUpdateLogsUseCase) Execute(ctx context.Context, query ListUpdateLogsQuery) (*ListUpdateLogsResult, error) {
	uc.logger.Debugw("executing list update logs use case",
		"page", query.Page,
		"page_size", query.PageSize,
		"status", query.Status,
		"client_sid", query.ClientSID,
	)

	if query.Status != "" && !rollout.Status(query.Status).IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid status filter: %s", query.Status))
	}

	filter := rollout.ListFilter{Status: rollout.Status(query.Status)}
	if query.ClientSID != "" {
		client, err := uc.clients.GetBySID(ctx, query.ClientSID)
		if err != nil {
			uc.logger.Errorw("failed to get client", "sid", query.ClientSID, "error", err)
			return nil, fmt.Errorf("failed to get client: %w", err)
		}
		if client == nil {
			return nil, errors.NewNotFoundError("client", query.ClientSID)
		}
		filter.ClientID = client.ID()
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
	filter.Page = query.Page
	filter.PageSize = query.PageSize

	entries, total, err := uc.ledger.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list update logs", "error", err)
		return nil, fmt.Errorf("failed to list update logs: %w", err)
	}

	pages := int(total) / query.PageSize
	if int(total)%query.PageSize > 0 {
		pages++
	}

	// Most pages cover few distinct clients; resolve each once.
	resolved := make(map[uint]*fleet.Client)
	dtos := make([]*UpdateLogDTO, 0, len(entries))
	for _, entry := range entries {
		client, ok := resolved[entry.ClientID()]
		if !ok {
			client, err = uc.clients.GetByID(ctx, entry.ClientID())
			if err != nil {
				uc.logger.Errorw("failed to resolve client", "client_id", entry.ClientID(), "error", err)
				return nil, fmt.Errorf("failed to resolve client: %w", err)
			}
			resolved[entry.ClientID()] = client
		}
		dtos = append(dtos, newUpdateLogDTO(entry, client))
	}

	return &ListUpdateLogsResult{
		Updates: dtos,
		Total:   total,
		Page:    query.Page,
		Pages:   pages,
	}, nil
}

func newUpdateLogDTO(entry *rollout.UpdateLog, client *fleet.Client) *UpdateLogDTO {
	dto := &UpdateLogDTO{
		ID:           entry.SID(),
		FromVersion:  entry.FromVersion(),
		ToVersion:    entry.ToVersion(),
		Status:       string(entry.Status()),
		IsRollback:   entry.IsRollback(),
		ErrorMessage: entry.ErrorMessage(),
		StartedAt:    entry.StartedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
	if client != nil {
		dto.ClientID = client.SID()
		dto.ClientName = client.Name()
	}
	if completed := entry.CompletedAt(); completed != nil {
		formatted := completed.Format("2006-01-02T15:04:05Z07:00")
		dto.CompletedAt = &formatted
	}
	return dto
}
