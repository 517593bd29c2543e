// Package main starts the agent engine's REST server.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"teamresumes/agent-engine/api/rest"
	"teamresumes/agent-engine/pkg/engine"
	"teamresumes/agent-engine/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	workflowDir := flag.String("workflows", "", "directory of workflow YAML files to load at startup")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	eng := engine.New(&engine.Config{LogLevel: *logLevel})
	log := logger.Component("main")

	if *workflowDir != "" {
		count, err := eng.LoadWorkflowDirectory(*workflowDir)
		if err != nil {
			log.Error("loading workflows from %s: %v", *workflowDir, err)
			os.Exit(1)
		}
		log.Info("loaded %d workflows from %s", count, *workflowDir)
	}

	cfg := rest.DefaultConfig()
	cfg.Address = *addr
	server := rest.NewServer(eng, cfg)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown: %v", err)
		}
	}()

	log.Info("listening on %s", *addr)
	if err := server.Start(); err != nil {
		log.Error("server: %v", err)
		os.Exit(1)
	}
}
