// Package main is the entry point of the rbicalc CLI.
package main

import (
	"github.com/huangsam/rbicalc/cmd"
	"github.com/huangsam/rbicalc/internal/contract"
	"github.com/huangsam/rbicalc/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Cannot stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot run rbicalc", err)
	}
}
