package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/synthworks/gengate/internal/config"
	"github.com/synthworks/gengate/internal/domain"
	"github.com/synthworks/gengate/internal/files"
	"github.com/synthworks/gengate/internal/task"
)

// ModuleDispatcher executes the backend call shape of a single module.
type ModuleDispatcher interface {
	Dispatch(ctx context.Context, payload map[string]any) (*task.Outcome, error)
}

// Registry routes payloads to the dispatcher serving their module. It is the
// runner's Dispatcher: the set of modules is closed, so construction wires
// exactly one entry per supported module and nothing else is ever added.
type Registry struct {
	dispatchers map[domain.Module]ModuleDispatcher
}

// NewRegistry builds the full dispatcher set from the backend configuration.
func NewRegistry(cfg config.BackendsConfig, fm *files.Manager, logger *slog.Logger) *Registry {
	return &Registry{
		dispatchers: map[domain.Module]ModuleDispatcher{
			domain.ModuleVoiceDesign: NewVoiceDesign(cfg.VoiceDesign, fm, logger),
			domain.ModuleTTS:         NewTTS(cfg.TTS, fm, logger),
			domain.ModuleEnvAudio:    NewEnvAudio(cfg.EnvAudio, fm, logger),
		},
	}
}

// Dispatch runs the payload against the backend serving the module.
func (r *Registry) Dispatch(
	ctx context.Context,
	module domain.Module,
	payload map[string]any,
) (*task.Outcome, error) {
	d, ok := r.dispatchers[module]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownModule, module)
	}
	return d.Dispatch(ctx, payload)
}
