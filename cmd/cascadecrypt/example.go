package main

import (
	"fmt"
	"strings"
)

func showExamples() {
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║      Cascade-Crypt: Interactive Examples                 ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	examples := []struct {
		title       string
		description string
		code        string
	}{
		{
			title:       "Example 1: Basic Server/Client",
			description: "Simple echo server and client using the high-level session API",
			code: `package main

import (
    "context"
    "fmt"
    "net"

    "github.com/chakchat/cascadecrypt/pkg/identity"
    "github.com/chakchat/cascadecrypt/pkg/session"
)

func main() {
    serverIdentity, _ := identity.GenerateIdentity()

    // SERVER
    listener, _ := net.Listen("tcp", ":8443")
    defer listener.Close()

    go func() {
        for {
            conn, _ := listener.Accept()
            go func(c net.Conn) {
                sess, _ := session.Accept(c, serverIdentity, nil)
                defer sess.Close()
                data, _ := sess.Receive()
                fmt.Printf("Received: %s\n", data)
                sess.Send([]byte("Echo: " + string(data)))
            }(conn)
        }
    }()

    // CLIENT
    clientIdentity, _ := identity.GenerateIdentity()
    client, _ := session.Dial(context.Background(), "tcp", "localhost:8443", clientIdentity, nil)
    defer client.Close()

    client.Send([]byte("Hello, cascade world!"))
    response, _ := client.Receive()
    fmt.Printf("Server replied: %s\n", response)
}`,
		},
		{
			title:       "Example 2: Low-Level Hybrid Key Agreement",
			description: "Direct use of X25519 + ML-KEM-1024 combined via pkg/hybrid",
			code: `package main

import (
    "bytes"
    "fmt"

    "github.com/chakchat/cascadecrypt/pkg/hybrid"
    "github.com/chakchat/cascadecrypt/pkg/identity"
    "github.com/chakchat/cascadecrypt/pkg/kem"
)

func main() {
    // RESPONDER: generate an ephemeral X25519 keypair and an ML-KEM keypair
    responderID, _ := identity.GenerateIdentity()
    kemKP, _ := kem.GenerateKeypair()

    // INITIATOR: ECDH against the responder's X25519 public key, and KEM
    // encapsulation against its ML-KEM public key
    initiatorID, _ := identity.GenerateIdentity()
    classicalSecret, _ := identity.ComputeSharedSecret(initiatorID.X25519Private, responderID.X25519Public)
    ciphertext, quantumSecretInitiator, _ := kem.Encapsulate(kemKP.EncapsulationKey)

    sessionSecretInitiator, _ := hybrid.Combine(classicalSecret, quantumSecretInitiator)

    // RESPONDER: mirrors the same two primitives
    responderClassicalSecret, _ := identity.ComputeSharedSecret(responderID.X25519Private, initiatorID.X25519Public)
    quantumSecretResponder, _ := kem.Decapsulate(kemKP.DecapsulationKey, ciphertext)
    sessionSecretResponder, _ := hybrid.Combine(responderClassicalSecret, quantumSecretResponder)

    fmt.Printf("Secrets match: %v\n", bytes.Equal(sessionSecretInitiator, sessionSecretResponder))
}`,
		},
		{
			title:       "Example 3: Peer Directory Publish/Lookup",
			description: "Publishing a signed peer record and looking it up by username",
			code: `package main

import (
    "context"
    "fmt"

    "github.com/chakchat/cascadecrypt/pkg/directory"
)

func main() {
    store := directory.NewStore()
    defer store.Close()

    record := directory.PeerRecord{
        Username:   "alice",
        PublicKey:  []byte("..."), // hybrid public key bytes
        SignKey:    []byte("..."), // Ed25519 identity public key
        Endpoints:  []string{"203.0.113.10:8443"},
        TTLSeconds: 300,
    }
    // Signature must cover the record's signed payload; see pkg/directory.
    if err := store.Publish(context.Background(), record); err != nil {
        fmt.Printf("publish failed: %v\n", err)
        return
    }

    found, ok := store.Lookup(context.Background(), "alice")
    fmt.Printf("found: %v, endpoints: %v\n", ok, found.Endpoints)
}`,
		},
		{
			title:       "Example 4: Session Statistics",
			description: "Monitoring session state and traffic counters",
			code: `package main

import (
    "context"
    "fmt"

    "github.com/chakchat/cascadecrypt/pkg/identity"
    "github.com/chakchat/cascadecrypt/pkg/session"
)

func main() {
    clientIdentity, _ := identity.GenerateIdentity()
    client, _ := session.Dial(context.Background(), "tcp", "server:8443", clientIdentity, nil)
    defer client.Close()

    fmt.Printf("Session ID: %x\n", client.ID)
    fmt.Printf("Role: %v\n", client.Role)
    fmt.Printf("Peer identity: %x\n", client.PeerIdentity)

    client.Send([]byte("Test data"))
    client.Receive()

    stats := client.Stats()
    fmt.Printf("Bytes sent: %d\n", stats.BytesSent)
    fmt.Printf("Bytes received: %d\n", stats.BytesRecv)
    fmt.Printf("Messages sent: %d\n", stats.MessagesSent)
    fmt.Printf("Messages received: %d\n", stats.MessagesRecv)
}`,
		},
		{
			title:       "Example 5: Error Handling",
			description: "Proper error handling and resource cleanup",
			code: `package main

import (
    "context"
    "fmt"
    "log"

    cerrors "github.com/chakchat/cascadecrypt/internal/errors"
    "github.com/chakchat/cascadecrypt/pkg/identity"
    "github.com/chakchat/cascadecrypt/pkg/session"
)

func main() {
    clientIdentity, _ := identity.GenerateIdentity()
    client, err := session.Dial(context.Background(), "tcp", "server:8443", clientIdentity, nil)
    if err != nil {
        log.Fatalf("Connection failed: %v", err)
    }
    defer client.Close()

    if err := client.Send([]byte("Important data")); err != nil {
        switch {
        case cerrors.Is(err, cerrors.ErrCounterOverflow):
            fmt.Println("session exhausted its message counter, must be re-established")
        case cerrors.Is(err, cerrors.ErrEncryptionError):
            fmt.Println("encryption rejected the plaintext")
        default:
            log.Printf("send error: %v", err)
        }
        return
    }

    data, err := client.Receive()
    if err != nil {
        log.Printf("receive error: %v", err)
        return
    }
    fmt.Printf("Received: %s\n", data)
}`,
		},
		{
			title:       "Example 6: Security Best Practices",
			description: "Important security considerations",
			code: `package main

// BEST PRACTICE 1: Persist long-term identities.
// identity.GenerateIdentity() produces a fresh random seed every call; a
// real deployment loads one identity.Keypair from a stored seed at startup
// (see identity.NewIdentityFromSeed) so a peer's public key stays stable
// across restarts.

// BEST PRACTICE 2: Verify peer identity out of band.
// The handshake authenticates whichever Ed25519 key the peer presents, but
// binding that key to a human identity (e.g. a directory.PeerRecord fetched
// over a trusted channel, or a manually verified fingerprint) is the
// caller's responsibility.

// BEST PRACTICE 3: One Engine per session, never cloned.
// cascade.Engine keeps a monotonic per-message counter; sharing or cloning
// one across connections risks nonce/counter reuse. Establish a fresh
// session (and therefore a fresh Engine) per peer connection.

// BEST PRACTICE 4: Rotate sessions instead of rekeying in place.
// cascadecrypt uses a single static session secret per session by design;
// when a session has been open a long time, tear it down and run a fresh
// handshake rather than trying to derive new traffic keys in place.

// BEST PRACTICE 5: Rate-limit handshakes.
// pkg/ratelimit's TokenBucketLimiter and PeerLimiter guard the handshake
// listener (as the demo server does) against a single remote address
// flooding it.
`,
		},
	}

	for i, ex := range examples {
		fmt.Printf("┌%s┐\n", strings.Repeat("─", 58))
		fmt.Printf("│ %s%s │\n", ex.title, strings.Repeat(" ", 58-len(ex.title)-2))
		fmt.Printf("└%s┘\n", strings.Repeat("─", 58))
		fmt.Println()
		fmt.Println(ex.description)
		fmt.Println()
		fmt.Println(ex.code)
		fmt.Println()

		if i < len(examples)-1 {
			fmt.Println()
		}
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                    Next Steps                             ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("Try the demo:")
	fmt.Println("  1. Terminal 1: cascadecrypt demo --mode server --addr :8443")
	fmt.Println("  2. Terminal 2: cascadecrypt demo --mode client --addr localhost:8443")
	fmt.Println()
	fmt.Println("Run benchmarks:")
	fmt.Println("  cascadecrypt bench --handshakes 100 --throughput")
	fmt.Println()
	fmt.Println("Documentation:")
	fmt.Println("  https://github.com/chakchat/cascadecrypt")
	fmt.Println("  https://pkg.go.dev/github.com/chakchat/cascadecrypt")
	fmt.Println()
	fmt.Println("Security:")
	fmt.Println("  See Example 6 above for security best practices")
	fmt.Println()
}
