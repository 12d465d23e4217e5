// Package effects implements Sources which transform the samples of other Sources.
package effects
