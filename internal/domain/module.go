package domain

// Module identifies one of the generation services the gateway fronts.
type Module string

// The three supported generation modules.
const (
	ModuleVoiceDesign Module = "voice_design"
	ModuleTTS         Module = "tts"
	ModuleEnvAudio    Module = "env_audio"
)

// Modules returns the supported modules in catalog order.
func Modules() []Module {
	return []Module{ModuleVoiceDesign, ModuleTTS, ModuleEnvAudio}
}

// ParseModule maps a request path segment to a Module.
// Returns ErrUnknownModule for anything outside the supported set.
func ParseModule(s string) (Module, error) {
	m := Module(s)
	if !isValidModule(m) {
		return "", ErrUnknownModule
	}
	return m, nil
}

// isValidModule checks if the given module is one of the supported set.
func isValidModule(m Module) bool {
	switch m {
	case ModuleVoiceDesign, ModuleTTS, ModuleEnvAudio:
		return true
	default:
		return false
	}
}

// DisplayName returns the human readable name used by the module catalog.
func (m Module) DisplayName() string {
	switch m {
	case ModuleVoiceDesign:
		return "Voice Design"
	case ModuleTTS:
		return "Speech Synthesis"
	case ModuleEnvAudio:
		return "Environment Audio"
	default:
		return string(m)
	}
}
