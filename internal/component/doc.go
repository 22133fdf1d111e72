// SPDX-License-Identifier: MPL-2.0

// Package component declares worker components (spouts and bolts) for a
// process-supervision host in two phases.
//
// At declaration time a component composes its worker arguments and hands
// the host a command built for the default interpreter. Just before first
// use, Prepare rebuilds the command with whatever portable interpreter was
// configured in the meantime and replaces the host's command through the
// Host interface. A host that refuses the replacement is logged and the
// declaration-time command stays in effect.
package component
