// Package app wires the configuration loaders, the registrar, the cycle
// driver, and the simulated plant into a runnable application. It owns the
// features it builds; the registrar only ever sees weak references to them.
package app
