package usecases

import (
	"context"
	"fmt"

	"github.com/drover-dev/drover/internal/domain/release"
	"github.com/drover-dev/drover/internal/shared/logger"
)

// VersionDTO represents the data transfer object for versions.
type VersionDTO struct {
	ID           string `json:"id"`
	Version      string `json:"version"`
	Checksum     string `json:"checksum"`
	Size         int64  `json:"size"`
	ReleaseNotes string `json:"release_notes,omitempty"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func newVersionDTO(v *release.Version) *VersionDTO {
	return &VersionDTO{
		ID:           v.SID(),
		Version:      v.Version(),
		Checksum:     v.Checksum(),
		Size:         v.Size(),
		ReleaseNotes: v.ReleaseNotes(),
		IsActive:     v.IsActive(),
		CreatedAt:    v.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    v.UpdatedAt().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListVersionsQuery represents the input for listing versions.
type ListVersionsQuery struct {
	Page       int
	PageSize   int
	ActiveOnly bool
}

// ListVersionsResult represents the output of listing versions.
type ListVersionsResult struct {
	Versions []*VersionDTO
	Total    int64
	Page     int
	Pages    int
}

// ListVersionsUseCase handles listing published versions.
type ListVersionsUseCase struct {
	repo   release.Repository
	logger logger.Interface
}

// NewListVersionsUseCase creates a new ListVersionsUseCase.
func NewListVersionsUseCase(repo release.Repository, logger logger.Interface) *ListVersionsUseCase {
	return &ListVersionsUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Execute retrieves a page of versions, newest first.
func (uc *ListVersionsUseCase) Execute(ctx context.Context, query ListVersionsQuery) (*ListVersionsResult, error) {
	uc.logger.Debugw("executing list versions use case", "page", query.Page, "page_size", query.PageSize)

	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	versions, total, err := uc.repo.List(ctx, release.ListFilter{
		Page:       query.Page,
		PageSize:   query.PageSize,
		ActiveOnly: query.ActiveOnly,
	})
	if err != nil {
		uc.logger.Errorw("failed to list versions", "error", err)
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	pages := int(total) / query.PageSize
	if int(total)%query.PageSize > 0 {
		pages++
	}

	dtos := make([]*VersionDTO, len(versions))
	for i, v := range versions {
		dtos[i] = newVersionDTO(v)
	}

	return &ListVersionsResult{
		Versions: dtos,
		Total:    total,
		Page:     query.Page,
		Pages:    pages,
	}, nil
}
