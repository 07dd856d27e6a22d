package hook

// Type identifies a lifecycle event the plugin may subscribe a target to.
type Type uint32

// Hook types, in loader enumeration order.
const (
	// Runtime support pairs, fired around the plugin's lifetime.
	InitMalloc Type = iota
	FiniMalloc
	InitNewlib
	FiniNewlib
	InitStdcpp
	FiniStdcpp
	InitDevoptab
	FiniDevoptab

	// Socket runtime pair. Weak: the backing runtime symbol may be absent,
	// in which case the wrapper must no-op.
	InitSockets
	FiniSockets

	// Wrapper pair around the plugin's static construction and teardown.
	InitWrapper
	FiniWrapper

	// Subsystem initialization, fired with the loader-provided collaborator.
	InitConfig
	InitStorage

	// Plugin init/deinit.
	InitPlugin
	DeinitPlugin

	// Application lifecycle transitions.
	ApplicationStarts
	ApplicationRequestsExit
	ApplicationEnds
	ReleaseForeground
	AcquiredForeground
)

// String returns the loader-facing name of the hook type.
func (t Type) String() string {
	switch t {
	case InitMalloc:
		return "init_malloc"
	case FiniMalloc:
		return "fini_malloc"
	case InitNewlib:
		return "init_newlib"
	case FiniNewlib:
		return "fini_newlib"
	case InitStdcpp:
		return "init_stdcpp"
	case FiniStdcpp:
		return "fini_stdcpp"
	case InitDevoptab:
		return "init_devoptab"
	case FiniDevoptab:
		return "fini_devoptab"
	case InitSockets:
		return "init_sockets"
	case FiniSockets:
		return "fini_sockets"
	case InitWrapper:
		return "init_wrapper"
	case FiniWrapper:
		return "fini_wrapper"
	case InitConfig:
		return "init_config"
	case InitStorage:
		return "init_storage"
	case InitPlugin:
		return "init_plugin"
	case DeinitPlugin:
		return "deinit_plugin"
	case ApplicationStarts:
		return "application_starts"
	case ApplicationRequestsExit:
		return "application_requests_exit"
	case ApplicationEnds:
		return "application_ends"
	case ReleaseForeground:
		return "release_foreground"
	case AcquiredForeground:
		return "acquired_foreground"
	default:
		return "unknown"
	}
}
