package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chakchat/cascadecrypt/pkg/directory"
	"github.com/chakchat/cascadecrypt/pkg/identity"
	"github.com/chakchat/cascadecrypt/pkg/metrics"
	"github.com/chakchat/cascadecrypt/pkg/ratelimit"
	"github.com/chakchat/cascadecrypt/pkg/session"
)

func runDemo(mode, addr, message string, verbose bool, obsAddr, logLevel, logFormat, tracing string) {
	collector, logger, err := setupObservability(logLevel, logFormat, tracing)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch mode {
	case "server":
		runDemoServer(addr, verbose, obsAddr, collector, logger)
	case "client":
		runDemoClient(addr, message, verbose, collector, logger)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s (use 'server' or 'client')\n", mode)
		os.Exit(1)
	}
}

func runDemoServer(addr string, verbose bool, obsAddr string, collector *metrics.Collector, logger *metrics.Logger) {
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║      Cascade-Crypt Secure Channel Demo Server            ║")
	fmt.Println("║      Hybrid: ML-KEM-1024 + X25519                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	if verbose {
		fmt.Println("Security Properties:")
		fmt.Println("  • Post-Quantum: ML-KEM-1024 (NIST Category 5)")
		fmt.Println("  • Classical: X25519 (128-bit)")
		fmt.Println("  • Hybrid: Secure if EITHER algorithm is secure")
		fmt.Println("  • Encryption: XChaCha20-Poly1305 -> AES-256-GCM -> ChaCha20-Poly1305")
		fmt.Println()
	}

	serverIdentity, err := identity.GenerateIdentity()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to generate identity: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting server on %s...\n", addr)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to start listener: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = listener.Close() }()

	rateLimitObserver := metrics.NewRateLimitObserver(collector, logger)
	handshakeLimiter := ratelimit.NewTokenBucketLimiter(50, 10)
	peerLimiter := ratelimit.NewPeerLimiter(3)

	directoryObserver := metrics.NewDirectoryObserver(collector, metrics.GetTracer(), logger)
	peerStore := directory.NewStore()
	peerStore.SetObserver(directoryObserver)
	defer peerStore.Close()

	// The server's own record is trusted by construction, so it is published
	// unsigned; VerifyRecord exists for records accepted from untrusted peers.
	selfRecord := directory.PeerRecord{
		Username:   "server",
		PublicKey:  serverIdentity.PublicKeyBytes(),
		SignKey:    serverIdentity.Ed25519Public,
		Endpoints:  []string{listener.Addr().String()},
		TTLSeconds: 3600,
	}
	if err := peerStore.Publish(context.Background(), selfRecord); err != nil {
		logger.Error("failed to publish server directory record", metrics.Fields{"error": err.Error()})
	}
	peerStore.StartReaper(context.Background(), time.Minute)

	actualAddr := listener.Addr().String()
	fmt.Printf("✓ Server listening on %s\n", actualAddr)
	fmt.Println("Waiting for connections... (Press Ctrl+C to stop)")
	fmt.Println()

	if obsAddr != "" {
		server := metrics.NewServer(metrics.ServerConfig{
			Collector:        collector,
			Version:          version,
			Namespace:        "cascadecrypt",
			EnablePrometheus: true,
			EnableHealth:     true,
			UseClientGolang:  true,
		})

		go func() {
			if err := server.ListenAndServe(obsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("observability server error", metrics.Fields{"error": err.Error()})
			}
		}()

		fmt.Printf("✓ Observability server on %s (metrics: /metrics, health: /health)\n", obsAddr)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down server...")
		logger.Info("final handshake latency", metrics.Fields{
			"p99_ms": collector.HandshakeLatencyP99(),
		})
		_ = listener.Close()
		os.Exit(0)
	}()

	connectionNum := 0
	for {
		connectionNum++
		fmt.Printf("[%s] Waiting for connection #%d...\n", time.Now().Format("15:04:05"), connectionNum)

		conn, err := listener.Accept()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Accept error: %v\n", err)
			continue
		}

		if !handshakeLimiter.Allow() {
			rateLimitObserver.OnHandshakeRateLimit(conn.RemoteAddr().String())
			_ = conn.Close()
			continue
		}

		if !peerLimiter.Allow(conn.RemoteAddr().String()) {
			rateLimitObserver.OnHandshakeRateLimit(conn.RemoteAddr().String())
			_ = conn.Close()
			continue
		}

		fmt.Printf("[%s] ✓ Connection #%d established\n", time.Now().Format("15:04:05"), connectionNum)

		go handleConnection(conn, connectionNum, verbose, serverIdentity, collector, peerLimiter)
	}
}

func handleConnection(conn net.Conn, connNum int, verbose bool, serverIdentity *identity.Keypair, collector *metrics.Collector, peerLimiter *ratelimit.PeerLimiter) {
	defer peerLimiter.Release(conn.RemoteAddr().String())

	observer := metrics.NewSessionObserver(metrics.SessionObserverConfig{
		Collector: collector,
		Role:      "responder",
	})

	sess, err := session.Accept(conn, serverIdentity, observer)
	if err != nil {
		observer.OnSessionFailed(err)
		fmt.Printf("[%s] [Conn #%d] Handshake failed: %v\n", time.Now().Format("15:04:05"), connNum, err)
		_ = conn.Close()
		return
	}
	defer func() { _ = sess.Close() }()

	if verbose {
		fmt.Printf("  Remote: %s\n", sess.RemoteAddr())
		fmt.Printf("  Local: %s\n", sess.LocalAddr())
		fmt.Printf("  Session ID: %x...\n", firstBytes(sess.ID, 8))
	}

	for {
		if verbose {
			fmt.Printf("[%s] [Conn #%d] Waiting for data...\n", time.Now().Format("15:04:05"), connNum)
		}

		data, err := sess.Receive()
		if err != nil {
			if err == io.EOF || strings.Contains(err.Error(), "closed") {
				fmt.Printf("[%s] [Conn #%d] Client disconnected\n", time.Now().Format("15:04:05"), connNum)
			} else {
				fmt.Printf("[%s] [Conn #%d] Receive error: %v\n", time.Now().Format("15:04:05"), connNum, err)
			}
			return
		}

		fmt.Printf("[%s] [Conn #%d] ← Received: %q (%d bytes)\n",
			time.Now().Format("15:04:05"), connNum, string(data), len(data))

		// Echo back
		response := fmt.Sprintf("Echo: %s", data)
		if err := sess.Send([]byte(response)); err != nil {
			fmt.Printf("[%s] [Conn #%d] Send error: %v\n", time.Now().Format("15:04:05"), connNum, err)
			return
		}

		if verbose {
			fmt.Printf("[%s] [Conn #%d] → Sent: %q\n", time.Now().Format("15:04:05"), connNum, response)
		}
	}
}

func runDemoClient(addr, message string, verbose bool, collector *metrics.Collector, logger *metrics.Logger) {
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║      Cascade-Crypt Secure Channel Demo Client            ║")
	fmt.Println("║      Hybrid: ML-KEM-1024 + X25519                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	if verbose {
		fmt.Println("Handshake Protocol:")
		fmt.Println("  1. ClientHello → hybrid public key (X25519 || ML-KEM-1024, 1600 bytes)")
		fmt.Println("  2. ServerHello ← hybrid ciphertext (X25519 || ML-KEM-1024, 1600 bytes)")
		fmt.Println("  3. ClientFinished → Ed25519 signature over transcript")
		fmt.Println("  4. ServerFinished ← Ed25519 signature over transcript")
		fmt.Println()
	}

	clientIdentity, err := identity.GenerateIdentity()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to generate identity: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Connecting to %s...\n", addr)

	observer := metrics.NewSessionObserver(metrics.SessionObserverConfig{
		Collector: collector,
		Role:      "initiator",
	})

	startHandshake := time.Now()
	client, err := session.Dial(context.Background(), "tcp", addr, clientIdentity, observer)
	if err != nil {
		observer.OnSessionFailed(err)
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	handshakeDuration := time.Since(startHandshake)

	fmt.Printf("✓ Connected successfully\n")
	if verbose {
		fmt.Printf("  Handshake time: %v\n", handshakeDuration)
		fmt.Printf("  Local: %s\n", client.LocalAddr())
		fmt.Printf("  Remote: %s\n", client.RemoteAddr())
		fmt.Printf("  Session ID: %x...\n", firstBytes(client.ID, 8))
	}
	fmt.Println()

	// If message is "-", read from stdin
	if message == "-" {
		fmt.Println("Interactive mode (type messages, Ctrl+D to exit):")
		runInteractiveClient(client, verbose)
		return
	}

	// Send single message
	fmt.Printf("Sending: %q\n", message)
	if err := client.Send([]byte(message)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Send failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Message sent")

	fmt.Println("Waiting for response...")
	response, err := client.Receive()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Receive failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Received: %q\n", string(response))

	if verbose {
		stats := client.Stats()
		fmt.Println()
		fmt.Println("Session Statistics:")
		fmt.Printf("  Bytes sent: %d\n", stats.BytesSent)
		fmt.Printf("  Bytes received: %d\n", stats.BytesRecv)
		fmt.Printf("  Messages sent: %d\n", stats.MessagesSent)
		fmt.Printf("  Messages received: %d\n", stats.MessagesRecv)
	}
}

func runInteractiveClient(client *session.Session, verbose bool) {
	scanner := bufio.NewScanner(os.Stdin)
	messageNum := 0

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break // EOF or error
		}

		message := scanner.Text()
		if message == "" {
			continue
		}

		messageNum++

		if verbose {
			fmt.Printf("[%d] Sending: %q\n", messageNum, message)
		}

		if err := client.Send([]byte(message)); err != nil {
			fmt.Fprintf(os.Stderr, "Send error: %v\n", err)
			return
		}

		if verbose {
			fmt.Printf("[%d] Waiting for response...\n", messageNum)
		}

		response, err := client.Receive()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Receive error: %v\n", err)
			return
		}

		fmt.Printf("← %s\n", string(response))
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Input error: %v\n", err)
	}
}

func setupObservability(logLevel, logFormat, tracing string) (*metrics.Collector, *metrics.Logger, error) {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return nil, nil, err
	}

	format, err := parseLogFormat(logFormat)
	if err != nil {
		return nil, nil, err
	}

	logger := metrics.NewLogger(
		metrics.WithOutput(os.Stderr),
		metrics.WithLevel(level),
		metrics.WithFormat(format),
		metrics.WithFields(metrics.Fields{"app": "cascadecrypt"}),
	)
	metrics.SetLogger(logger)

	switch strings.ToLower(tracing) {
	case "none":
		metrics.SetTracer(metrics.NoOpTracer{})
	case "simple":
		metrics.SetTracer(metrics.NewSimpleTracer())
	case "otel":
		if !metrics.OTelEnabled() {
			return nil, nil, fmt.Errorf("otel tracing not enabled (build with -tags otel)")
		}
		metrics.SetTracer(metrics.NewOTelTracer("cascadecrypt"))
	default:
		return nil, nil, fmt.Errorf("invalid tracing mode: %s (use none, simple, or otel)", tracing)
	}

	collector := metrics.NewCollector(metrics.Labels{
		"service": "cascadecrypt",
	})
	metrics.SetGlobal(collector)

	return collector, logger, nil
}

func parseLogLevel(level string) (metrics.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return metrics.LevelDebug, nil
	case "info":
		return metrics.LevelInfo, nil
	case "warn", "warning":
		return metrics.LevelWarn, nil
	case "error":
		return metrics.LevelError, nil
	case "silent", "off", "none":
		return metrics.LevelSilent, nil
	default:
		return metrics.LevelInfo, fmt.Errorf("invalid log level: %s (use debug, info, warn, error, silent)", level)
	}
}

func parseLogFormat(format string) (metrics.Format, error) {
	switch strings.ToLower(format) {
	case "text":
		return metrics.FormatText, nil
	case "json":
		return metrics.FormatJSON, nil
	default:
		return metrics.FormatText, fmt.Errorf("invalid log format: %s (use text or json)", format)
	}
}

func firstBytes(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}
