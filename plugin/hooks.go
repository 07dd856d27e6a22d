package plugin

import (
	"github.com/halcyonic/pluginkit/config"
	"github.com/halcyonic/pluginkit/hook"
)

// Runtime support symbols consumed by the standard hooks. The loader binds
// them through hook.Registry.BindRuntime before firing any runtime hook.
const (
	symInit = "__init"
	symFini = "__fini"
)

// runtimePair describes one init/fini runtime support pair.
type runtimePair struct {
	init, fini hook.Type
	name       string
	weak       bool
}

var runtimePairs = []runtimePair{
	{hook.InitMalloc, hook.FiniMalloc, "malloc", false},
	{hook.InitNewlib, hook.FiniNewlib, "newlib", false},
	{hook.InitStdcpp, hook.FiniStdcpp, "stdcpp", false},
	{hook.InitDevoptab, hook.FiniDevoptab, "devoptab", false},
	{hook.InitSockets, hook.FiniSockets, "sockets", true},
}

// registerStandardHooks adds the hook set every plugin carries: the runtime
// support pairs, the init/fini wrappers and the config-subsystem init. Called
// once from Declare.
func registerStandardHooks(pluginName string) {
	for _, pair := range runtimePairs {
		hook.Register(pair.init, runtimeWrapper("__init_"+pair.name, pair.weak))
		hook.Register(pair.fini, runtimeWrapper("__fini_"+pair.name, pair.weak))
	}

	hook.Register(hook.InitWrapper, func() {
		if hook.Default.Probe(hook.ProbeKey) != hook.ProbeMagic {
			fatalf("%s", linkingOrderMessage(pluginName))
			panic("plugin: fatalf returned")
		}
		if fn := hook.Default.RuntimeFunc(symInit); fn != nil {
			fn()
		}
	})
	hook.Register(hook.FiniWrapper, func() {
		if fn := hook.Default.RuntimeFunc(symFini); fn != nil {
			fn()
		}
	})

	hook.Register(hook.InitConfig, func(h config.Host) {
		config.BindHost(h)
	})
}

// runtimeWrapper builds the target for one runtime support hook. A weak
// wrapper tolerates an absent symbol and no-ops; a required wrapper treats
// absence as a linking defect and aborts.
func runtimeWrapper(symbol string, weak bool) func() {
	return func() {
		fn := hook.Default.RuntimeFunc(symbol)
		if fn == nil {
			if weak {
				return
			}
			fatalf("plugin: required runtime symbol %q is missing; check module linking order", symbol)
			panic("plugin: fatalf returned")
		}
		fn()
	}
}
