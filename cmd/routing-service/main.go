package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/andrescamacho/seafaring-go/internal/adapters/memory"
	"github.com/andrescamacho/seafaring-go/internal/adapters/routing"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/config"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/logging"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/pidfile"
)

const defaultListen = "0.0.0.0:50051"

func main() {
	// Parse command-line flags
	scenarioPath := flag.String("scenario", "", "Scenario file providing port positions and ship speed")
	listen := flag.String("listen", defaultListen, "Address to serve the cost oracle on")
	configPath := flag.String("config", "", "Config file (default: search ./, ./configs, /etc/seafaring)")
	pidPath := flag.String("pid-file", "", "Refuse to start while the process named in this file is alive")
	flag.Parse()

	if *scenarioPath == "" {
		log.Fatal("--scenario is required")
	}

	if err := start(*configPath, *pidPath, *scenarioPath, *listen); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

// start sets up logging and the optional pid file lock, then serves until a
// signal arrives
func start(configPath, pidPath, scenarioPath, listen string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	if pidPath != "" {
		pf := pidfile.New(pidPath)
		if err := pf.Acquire(); err != nil {
			return fmt.Errorf("failed to acquire PID file lock: %w", err)
		}
		defer func() {
			if err := pf.Release(); err != nil {
				log.Printf("Warning: failed to release PID file: %v", err)
			}
		}()
	}

	return run(scenarioPath, listen, logger.With("routing-service"))
}

func run(scenarioPath, listen string, logger logging.Logger) error {
	scenario, err := memory.LoadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	world := scenario.Build()
	oracle := routing.NewEuclideanOracle(world, world.Speed())

	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listen, err)
	}

	server := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	routing.RegisterCostOracleServer(server, routing.NewCostOracleServer(oracle))

	logger.Log("INFO", "[RoutingService] Serving cost oracle", map[string]interface{}{
		"address": lis.Addr().String(),
		"ports":   len(world.Ports()),
		"speed":   world.Speed(),
	})

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Log("INFO", "[RoutingService] Received signal, shutting down", map[string]interface{}{"signal": sig.String()})
		stopped := make(chan struct{})
		go func() {
			server.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			logger.Log("WARNING", "[RoutingService] Timeout waiting for calls to drain, stopping", nil)
			server.Stop()
		}
	}()

	if err := server.Serve(lis); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// loggingInterceptor logs every call at DEBUG and failures at WARNING
func loggingInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		metadata := map[string]interface{}{
			"method":   info.FullMethod,
			"duration": time.Since(start).String(),
		}
		if err != nil {
			metadata["error"] = err.Error()
			logger.Log("WARNING", "[RoutingService] Call failed", metadata)
			return resp, err
		}
		logger.Log("DEBUG", "[RoutingService] Call served", metadata)
		return resp, nil
	}
}
