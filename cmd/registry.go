package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"endpoint.GO/core/registry"
)

func registered() map[string]*cobra.Command {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCmd); ok && v != nil {
		return v.(map[string]*cobra.Command)
	}
	return map[string]*cobra.Command{}
}

// Register adds an extension command. Call from init() in custom packages.
// Panics after Apply or when the name is already taken by a built-in or another extension.
func Register(c *cobra.Command) {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		panic("cmd/registry: locked (register only during init before Apply)")
	}
	name := c.Name()
	cmds := registered()
	if _, ok := cmds[name]; ok || builtin(name) {
		panic(fmt.Sprintf("cmd/registry: duplicate command %q", name))
	}
	next := make(map[string]*cobra.Command, len(cmds)+1)
	for k, v := range cmds {
		next[k] = v
	}
	next[name] = c
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCmd, next)
}

func builtin(name string) bool {
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// Registered lists extension command names in the order Apply adds them.
func Registered() []string {
	cmds := registered()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply attaches extension commands to the root command and locks the registry.
// Calling it again adds nothing.
func Apply() {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		return
	}
	cmds := registered()
	for _, name := range Registered() {
		rootCmd.AddCommand(cmds[name])
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryCmd)
}
