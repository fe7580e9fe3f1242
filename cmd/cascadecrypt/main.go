package main

import (
	"flag"
	"fmt"
	"os"

	pkgversion "github.com/chakchat/cascadecrypt/pkg/version"
)

// Build-time variables (set via -ldflags)
var (
	version   = ""        // Set via -ldflags "-X main.version=x.y.z"
	buildTime = "unknown" // Set via -ldflags "-X main.buildTime=..."
	gitCommit = "unknown" // Set via -ldflags "-X main.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "demo":
		demoCommand()
	case "bench":
		benchCommand()
	case "example":
		exampleCommand()
	case "version":
		fmt.Printf("cascadecrypt version %s\n", getVersion())
		if buildTime != "unknown" {
			fmt.Printf("Built: %s\n", buildTime)
		}
		if gitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", gitCommit)
		}
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`cascadecrypt - Hybrid Post-Quantum Secure Channel Demo & Benchmark Tool

USAGE:
    cascadecrypt <command> [options]

COMMANDS:
    demo      Run interactive demo (client/server handshake + cascade messaging)
    bench     Run performance benchmarks
    example   Show example usage with explanations
    version   Print version information
    help      Show this help message

Run 'cascadecrypt <command> --help' for more information on a command.

EXAMPLES:
    # Start demo server
    cascadecrypt demo --mode server --addr :8443

    # Connect demo client
    cascadecrypt demo --mode client --addr localhost:8443

    # Run handshake benchmark
    cascadecrypt bench --handshakes 100

    # Run cascade throughput benchmark
    cascadecrypt bench --throughput --size 1GB --duration 30s

    # Show interactive examples
    cascadecrypt example

PROJECT:
    cascadecrypt - hybrid classical+post-quantum handshake and triple-cascade
    authenticated encryption for peer-to-peer secure messaging.

    Key agreement: X25519 (RFC 7748) + ML-KEM-1024 (NIST FIPS 203), combined
    so the session remains secure if EITHER algorithm holds.
    Message encryption: XChaCha20-Poly1305 -> AES-256-GCM -> ChaCha20-Poly1305,
    each layer under an independently derived subkey.`)
}

func demoCommand() {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	mode := fs.String("mode", "server", "Mode: server or client")
	addr := fs.String("addr", "localhost:8443", "Address to listen/connect")
	message := fs.String("message", "Hello from cascadecrypt!", "Message to send (client mode)")
	verbose := fs.Bool("verbose", false, "Verbose output")
	obsAddr := fs.String("obs-addr", ":9090", "Observability server address (server mode). Empty disables")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error, silent")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	tracing := fs.String("tracing", "none", "Tracing mode: none, simple, otel (requires -tags otel)")

	fs.Usage = func() {
		fmt.Println(`USAGE: cascadecrypt demo [options]

Run an interactive client/server demo of the hybrid handshake followed by
triple-cascade encrypted messaging.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Terminal 1: Start server
    cascadecrypt demo --mode server --addr :8443

    # Terminal 2: Connect client
    cascadecrypt demo --mode client --addr localhost:8443 --message "Test message"

    # Verbose output (show handshake details)
    cascadecrypt demo --mode server --addr :8443 --verbose`)
	}

	_ = fs.Parse(os.Args[2:])

	runDemo(*mode, *addr, *message, *verbose, *obsAddr, *logLevel, *logFormat, *tracing)
}

func benchCommand() {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	handshakes := fs.Int("handshakes", 0, "Number of handshakes to benchmark (0 = skip)")
	throughput := fs.Bool("throughput", false, "Run throughput benchmark")
	size := fs.String("size", "100MB", "Data size for throughput test (e.g., 100MB, 1GB)")
	duration := fs.String("duration", "10s", "Duration for throughput test (e.g., 10s, 1m)")
	messageSize := fs.Int("message-size", 4096, "Plaintext size per cascade message, in bytes")

	fs.Usage = func() {
		fmt.Println(`USAGE: cascadecrypt bench [options]

Run performance benchmarks for the hybrid handshake and cascade message
throughput.

OPTIONS:`)
		fs.PrintDefaults()
		fmt.Println(`
EXAMPLES:
    # Benchmark 100 handshakes
    cascadecrypt bench --handshakes 100

    # Benchmark throughput for 30 seconds
    cascadecrypt bench --throughput --duration 30s

    # Benchmark 1GB of cascade-encrypted traffic with 16KB messages
    cascadecrypt bench --throughput --size 1GB --message-size 16384

    # Run all benchmarks
    cascadecrypt bench --handshakes 100 --throughput --size 500MB`)
	}

	_ = fs.Parse(os.Args[2:])

	runBench(*handshakes, *throughput, *size, *duration, *messageSize)
}

func exampleCommand() {
	if len(os.Args) > 2 && (os.Args[2] == "--help" || os.Args[2] == "-h") {
		fmt.Println(`USAGE: cascadecrypt example

Display interactive examples with code snippets showing how to use the library.

This command shows:
  - Basic client/server handshake setup
  - Low-level hybrid key-agreement API usage
  - Peer directory publish/lookup
  - Security considerations`)
		return
	}

	showExamples()
}
