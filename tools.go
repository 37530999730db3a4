//go:build tools
// +build tools

// Package tools tracks build-time tool dependencies such as mockgen so that
// `go generate` works from a fresh checkout.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
