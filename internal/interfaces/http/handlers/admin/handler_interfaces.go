package admin

import (
	"context"

	fleetUsecases "github.com/drover-dev/drover/internal/application/fleet/usecases"
	releaseUsecases "github.com/drover-dev/drover/internal/application/release/usecases"
	rolloutUsecases "github.com/drover-dev/drover/internal/application/rollout/usecases"
)

// Use case interfaces for ClientHandler - enables unit testing with mocks.

type registerClientUseCase interface {
	Execute(ctx context.Context, cmd fleetUsecases.RegisterClientCommand) (*fleetUsecases.RegisterClientResult, error)
}

type listClientsUseCase interface {
	Execute(ctx context.Context, query fleetUsecases.ListClientsQuery) (*fleetUsecases.ListClientsResult, error)
}

type getClientUseCase interface {
	Execute(ctx context.Context, query fleetUsecases.GetClientQuery) (*fleetUsecases.ClientDTO, error)
}

type updateClientConfigUseCase interface {
	Execute(ctx context.Context, cmd fleetUsecases.UpdateClientConfigCommand) (*fleetUsecases.UpdateClientConfigResult, error)
}

type regenerateClientTokenUseCase interface {
	Execute(ctx context.Context, cmd fleetUsecases.RegenerateClientTokenCommand) (*fleetUsecases.RegenerateClientTokenResult, error)
}

type deleteClientUseCase interface {
	Execute(ctx context.Context, cmd fleetUsecases.DeleteClientCommand) error
}

// Use case interfaces for VersionHandler.

type publishVersionUseCase interface {
	Execute(ctx context.Context, cmd releaseUsecases.PublishVersionCommand) (*releaseUsecases.PublishVersionResult, error)
}

type listVersionsUseCase interface {
	Execute(ctx context.Context, query releaseUsecases.ListVersionsQuery) (*releaseUsecases.ListVersionsResult, error)
}

type getVersionUseCase interface {
	Execute(ctx context.Context, query releaseUsecases.GetVersionQuery) (*releaseUsecases.VersionDTO, error)
}

type setVersionActiveUseCase interface {
	Execute(ctx context.Context, cmd releaseUsecases.SetVersionActiveCommand) (*releaseUsecases.VersionDTO, error)
}

type downloadArtifactUseCase interface {
	Execute(ctx context.Context, query releaseUsecases.DownloadArtifactQuery) (*releaseUsecases.DownloadArtifactResult, error)
}

// Use case interfaces for UpdateHandler.

type deployVersionUseCase interface {
	Execute(ctx context.Context, cmd rolloutUsecases.DeployVersionCommand) (*rolloutUsecases.DeployVersionResult, error)
}

type listUpdateLogsUseCase interface {
	Execute(ctx context.Context, query rolloutUsecases.ListUpdateLogsQuery) (*rolloutUsecases.ListUpdateLogsResult, error)
}
