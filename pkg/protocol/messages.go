// Package protocol defines message types for the Cascade-Crypt handshake
// and peer-directory bootstrap protocol.
//
// This file (messages.go) implements the handshake message flow:
//
//	Initiator                              Responder
//	    |                                      |
//	    | -------- ClientHello --------------> |
//	    |                                      |
//	    | <------- ServerHello --------------- |
//	    |                                      |
//	    | -------- ClientFinished -----------> |
//	    |                                      |
//	    | <------- ServerFinished ------------ |
//	    |                                      |
//	    |   === cascade.Engine established === |
//
// plus PeerPublish/PeerLookup/PeerLookupReply for directory bootstrap,
// which ride the same length-prefixed framing.
//
// All messages are length-prefixed with a 4-byte big-endian length field.
package protocol

import (
	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
)

// MessageType identifies the type of protocol message.
type MessageType uint8

// Protocol message types for handshake, directory bootstrap, and error
// signaling. Handshake tags reuse the teacher's byte values (0x01-0x04,
// 0xF0); directory tags (0x20-0x22) are new.
const (
	// MessageTypeClientHello initiates the handshake from the initiator.
	MessageTypeClientHello MessageType = 0x01
	// MessageTypeServerHello responds to ClientHello with responder parameters.
	MessageTypeServerHello MessageType = 0x02
	// MessageTypeClientFinished confirms handshake completion from the initiator.
	MessageTypeClientFinished MessageType = 0x03
	// MessageTypeServerFinished confirms handshake completion from the responder.
	MessageTypeServerFinished MessageType = 0x04

	// MessageTypePeerPublish requests a PeerRecord be published to the directory.
	MessageTypePeerPublish MessageType = 0x20
	// MessageTypePeerLookup requests a PeerRecord by username.
	MessageTypePeerLookup MessageType = 0x21
	// MessageTypePeerLookupReply carries the result of a PeerLookup.
	MessageTypePeerLookupReply MessageType = 0x22

	// MessageTypeAlert signals an error condition.
	MessageTypeAlert MessageType = 0xF0
)

// String returns a human-readable name for the message type.
func (mt MessageType) String() string {
	switch mt {
	case MessageTypeClientHello:
		return "ClientHello"
	case MessageTypeServerHello:
		return "ServerHello"
	case MessageTypeClientFinished:
		return "ClientFinished"
	case MessageTypeServerFinished:
		return "ServerFinished"
	case MessageTypePeerPublish:
		return "PeerPublish"
	case MessageTypePeerLookup:
		return "PeerLookup"
	case MessageTypePeerLookupReply:
		return "PeerLookupReply"
	case MessageTypeAlert:
		return "Alert"
	default:
		return "Unknown"
	}
}

// AlertCode identifies specific error conditions.
type AlertCode uint8

// Alert codes identifying specific error conditions.
const (
	// AlertCodeUnexpectedMessage indicates an unexpected message was received.
	AlertCodeUnexpectedMessage AlertCode = 0x01
	// AlertCodeBadCiphertext indicates a KEM ciphertext validation failed.
	AlertCodeBadCiphertext AlertCode = 0x02
	// AlertCodeHandshakeFailure indicates the handshake could not complete.
	AlertCodeHandshakeFailure AlertCode = 0x03
	// AlertCodeUnsupportedVersion indicates no common protocol version.
	AlertCodeUnsupportedVersion AlertCode = 0x04
	// AlertCodeBadSignature indicates an Ed25519 transcript signature failed to verify.
	AlertCodeBadSignature AlertCode = 0x05
	// AlertCodeDecryptionFailed indicates cascade decryption failed.
	AlertCodeDecryptionFailed AlertCode = 0x06
	// AlertCodeInternalError indicates an internal implementation error.
	AlertCodeInternalError AlertCode = 0x07
	// AlertCodeCloseNotify indicates graceful session closure.
	AlertCodeCloseNotify AlertCode = 0x08
)

// ClientHello is sent by the initiator to begin the handshake.
type ClientHello struct {
	// Protocol version offered by the initiator
	Version Version

	// Random nonce for freshness (32 bytes)
	Random []byte

	// SessionID correlates the handshake with a later session (or empty for new).
	SessionID []byte

	// HybridPublicKey is the X25519 public key (32B) concatenated with the
	// ML-KEM-1024 encapsulation key (1568B): 1600 bytes total.
	HybridPublicKey []byte

	// IdentityPublicKey is the initiator's Ed25519 identity public key
	// (32 bytes), used by the responder to verify ClientFinished.
	IdentityPublicKey []byte
}

// ServerHello is sent by the responder in response to ClientHello.
type ServerHello struct {
	// Protocol version selected by the responder
	Version Version

	// Random nonce for freshness (32 bytes)
	Random []byte

	// SessionID assigned by the responder (or echoed from ClientHello)
	SessionID []byte

	// HybridCiphertext is the responder's ephemeral X25519 public key (32B)
	// concatenated with the ML-KEM-1024 ciphertext (1568B): 1600 bytes total.
	HybridCiphertext []byte

	// IdentityPublicKey is the responder's Ed25519 identity public key
	// (32 bytes), used by the initiator to verify ServerFinished.
	IdentityPublicKey []byte
}

// ClientFinished confirms the handshake from the initiator side: an
// Ed25519 signature over the handshake transcript (ClientHello ||
// ServerHello bytes), proving possession of the initiator's identity key.
type ClientFinished struct {
	Signature []byte
}

// ServerFinished confirms the handshake from the responder side, mirroring
// ClientFinished.
type ServerFinished struct {
	Signature []byte
}

// AlertLevel indicates the severity of the alert.
type AlertLevel uint8

// Alert severity levels.
const (
	// AlertLevelWarning indicates a non-fatal condition that may be recoverable.
	AlertLevelWarning AlertLevel = 0x01
	// AlertLevelFatal indicates an unrecoverable error requiring session termination.
	AlertLevelFatal AlertLevel = 0x02
)

// AlertMessage signals an error condition or session closure.
type AlertMessage struct {
	Level       AlertLevel
	Code        AlertCode
	Description string // max 256 bytes
}

// Validate checks if the AlertMessage is valid.
func (m *AlertMessage) Validate() error {
	if m.Level != AlertLevelWarning && m.Level != AlertLevelFatal {
		return cerrors.ErrInvalidMessage
	}
	if len(m.Description) > 256 {
		return cerrors.ErrInvalidMessage
	}
	return nil
}

// Validate checks if the ClientHello message is valid.
func (m *ClientHello) Validate() error {
	if !m.Version.IsCompatible(Current) {
		return cerrors.ErrUnsupportedVersion
	}
	if len(m.Random) != 32 {
		return cerrors.ErrInvalidMessage
	}
	if len(m.HybridPublicKey) != constants.HybridPublicKeySize {
		return cerrors.ErrInvalidPublicKey
	}
	if len(m.IdentityPublicKey) != constants.Ed25519PublicKeySize {
		return cerrors.ErrInvalidPublicKey
	}
	if len(m.SessionID) > 2048 {
		return cerrors.ErrInvalidMessage
	}
	return nil
}

// Validate checks if the ServerHello message is valid.
func (m *ServerHello) Validate() error {
	if !m.Version.IsCompatible(Current) {
		return cerrors.ErrUnsupportedVersion
	}
	if len(m.Random) != 32 {
		return cerrors.ErrInvalidMessage
	}
	if len(m.SessionID) > 2048 {
		return cerrors.ErrInvalidMessage
	}
	if len(m.HybridCiphertext) != constants.HybridCiphertextSize {
		return cerrors.ErrInvalidCiphertext
	}
	if len(m.IdentityPublicKey) != constants.Ed25519PublicKeySize {
		return cerrors.ErrInvalidPublicKey
	}
	return nil
}

// Validate checks if the ClientFinished message is valid.
func (m *ClientFinished) Validate() error {
	if len(m.Signature) != constants.Ed25519SignatureSize {
		return cerrors.ErrInvalidMessage
	}
	return nil
}

// Validate checks if the ServerFinished message is valid.
func (m *ServerFinished) Validate() error {
	if len(m.Signature) != constants.Ed25519SignatureSize {
		return cerrors.ErrInvalidMessage
	}
	return nil
}

// PeerPublishMessage requests that a PeerRecord be published to a
// responder's directory.Store.
type PeerPublishMessage struct {
	Username   string
	PublicKey  []byte
	SignKey    []byte
	Endpoints  []string
	Signature  []byte
	TTLSeconds uint32
}

// Validate checks if the PeerPublishMessage is valid.
func (m *PeerPublishMessage) Validate() error {
	if m.Username == "" || len(m.Username) > 255 {
		return cerrors.ErrInvalidMessage
	}
	if len(m.PublicKey) == 0 || len(m.PublicKey) > 65535 {
		return cerrors.ErrInvalidMessage
	}
	if len(m.Endpoints) > 255 {
		return cerrors.ErrInvalidMessage
	}
	return nil
}

// PeerLookupMessage requests the PeerRecord for Username.
type PeerLookupMessage struct {
	Username string
}

// Validate checks if the PeerLookupMessage is valid.
func (m *PeerLookupMessage) Validate() error {
	if m.Username == "" || len(m.Username) > 255 {
		return cerrors.ErrInvalidMessage
	}
	return nil
}

// PeerLookupReplyMessage carries the result of a PeerLookupMessage. Found
// is false and the remaining fields are zero when no live record exists.
type PeerLookupReplyMessage struct {
	Found      bool
	Username   string
	PublicKey  []byte
	SignKey    []byte
	Endpoints  []string
	Signature  []byte
	Timestamp  int64
	TTLSeconds uint32
}

// Validate checks if the PeerLookupReplyMessage is valid.
func (m *PeerLookupReplyMessage) Validate() error {
	if !m.Found {
		return nil
	}
	if m.Username == "" || len(m.Username) > 255 {
		return cerrors.ErrInvalidMessage
	}
	if len(m.PublicKey) == 0 || len(m.PublicKey) > 65535 {
		return cerrors.ErrInvalidMessage
	}
	if len(m.Endpoints) > 255 {
		return cerrors.ErrInvalidMessage
	}
	return nil
}

// HeaderSize is the size of the message header (type + length).
const HeaderSize = 5 // 1 byte type + 4 bytes length

// MaxMessageSize is the maximum size of a protocol message.
const MaxMessageSize = constants.ProtocolMaxMessageSize
