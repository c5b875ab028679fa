// Package dockermanage finds and cleans up Docker containers started by mongotest.
//
// Every container started through the engine package carries the [ManagedLabelKey] label. A
// [Manager] wraps the native Docker client and uses that label for bulk operations like
// [Manager.StopManaged] and [Manager.RemoveManaged], which is how leftovers from crashed test runs
// are pruned.
package dockermanage
