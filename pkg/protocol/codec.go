// codec.go implements serialization and deserialization of protocol messages.
//
// Wire Format:
//
// All messages follow this structure:
//
//	+------+--------+----------+
//	| Type | Length | Payload  |
//	| 1B   | 4B BE  | Variable |
//	+------+--------+----------+
//
// Length is big-endian uint32, not including header bytes.
//
// ClientHello Format:
//
//	+----------+--------+-----------+------------------+-------------------+
//	| Version  | Random | SessionID | HybridPublicKey  | IdentityPublicKey |
//	| 2B       | 32B    | 1+N B     | 1600B            | 32B                |
//	+----------+--------+-----------+------------------+-------------------+
//
// ServerHello Format:
//
//	+----------+--------+-----------+------------------+-------------------+
//	| Version  | Random | SessionID | HybridCiphertext | IdentityPublicKey |
//	| 2B       | 32B    | 1+N B     | 1600B            | 32B                |
//	+----------+--------+-----------+------------------+-------------------+
package protocol

import (
	"encoding/binary"
	"io"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
)

// Codec provides message serialization and deserialization.
type Codec struct{}

// NewCodec creates a new protocol codec.
func NewCodec() *Codec {
	return &Codec{}
}

// EncodeClientHello serializes a ClientHello message.
func (c *Codec) EncodeClientHello(m *ClientHello) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	payloadSize := 2 + // version
		32 + // random
		1 + len(m.SessionID) + // session ID length + data
		constants.HybridPublicKeySize +
		constants.Ed25519PublicKeySize

	buf := make([]byte, HeaderSize+payloadSize)
	offset := 0

	buf[offset] = byte(MessageTypeClientHello)
	offset++
	binary.BigEndian.PutUint32(buf[offset:], uint32(payloadSize))
	offset += 4

	buf[offset] = m.Version.Major
	buf[offset+1] = m.Version.Minor
	offset += 2

	copy(buf[offset:], m.Random)
	offset += 32

	buf[offset] = byte(len(m.SessionID))
	offset++
	copy(buf[offset:], m.SessionID)
	offset += len(m.SessionID)

	copy(buf[offset:], m.HybridPublicKey)
	offset += constants.HybridPublicKeySize

	copy(buf[offset:], m.IdentityPublicKey)

	return buf, nil
}

// DecodeClientHello deserializes a ClientHello message.
func (c *Codec) DecodeClientHello(data []byte) (*ClientHello, error) {
	if len(data) < HeaderSize {
		return nil, cerrors.ErrInvalidMessage
	}
	if MessageType(data[0]) != MessageTypeClientHello {
		return nil, cerrors.ErrInvalidMessage
	}

	payloadLen := binary.BigEndian.Uint32(data[1:5])
	if len(data) < HeaderSize+int(payloadLen) {
		return nil, cerrors.ErrInvalidMessage
	}

	minPayloadLen := 2 + 32 + 1 + constants.HybridPublicKeySize + constants.Ed25519PublicKeySize
	if int(payloadLen) < minPayloadLen {
		return nil, cerrors.ErrInvalidMessage
	}

	offset := HeaderSize
	m := &ClientHello{}

	m.Version = Version{Major: data[offset], Minor: data[offset+1]}
	offset += 2

	m.Random = make([]byte, 32)
	copy(m.Random, data[offset:offset+32])
	offset += 32

	sessionIDLen := int(data[offset])
	offset++
	if sessionIDLen > 0 {
		if offset+sessionIDLen > len(data) {
			return nil, cerrors.ErrInvalidMessage
		}
		m.SessionID = make([]byte, sessionIDLen)
		copy(m.SessionID, data[offset:offset+sessionIDLen])
		offset += sessionIDLen
	}

	if offset+constants.HybridPublicKeySize+constants.Ed25519PublicKeySize > len(data) {
		return nil, cerrors.ErrInvalidMessage
	}

	m.HybridPublicKey = make([]byte, constants.HybridPublicKeySize)
	copy(m.HybridPublicKey, data[offset:offset+constants.HybridPublicKeySize])
	offset += constants.HybridPublicKeySize

	m.IdentityPublicKey = make([]byte, constants.Ed25519PublicKeySize)
	copy(m.IdentityPublicKey, data[offset:offset+constants.Ed25519PublicKeySize])

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// EncodeServerHello serializes a ServerHello message.
func (c *Codec) EncodeServerHello(m *ServerHello) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	payloadSize := 2 + // version
		32 + // random
		1 + len(m.SessionID) +
		constants.HybridCiphertextSize +
		constants.Ed25519PublicKeySize

	buf := make([]byte, HeaderSize+payloadSize)
	offset := 0

	buf[offset] = byte(MessageTypeServerHello)
	offset++
	binary.BigEndian.PutUint32(buf[offset:], uint32(payloadSize))
	offset += 4

	buf[offset] = m.Version.Major
	buf[offset+1] = m.Version.Minor
	offset += 2

	copy(buf[offset:], m.Random)
	offset += 32

	buf[offset] = byte(len(m.SessionID))
	offset++
	copy(buf[offset:], m.SessionID)
	offset += len(m.SessionID)

	copy(buf[offset:], m.HybridCiphertext)
	offset += constants.HybridCiphertextSize

	copy(buf[offset:], m.IdentityPublicKey)

	return buf, nil
}

// DecodeServerHello deserializes a ServerHello message.
func (c *Codec) DecodeServerHello(data []byte) (*ServerHello, error) {
	if len(data) < HeaderSize {
		return nil, cerrors.ErrInvalidMessage
	}
	if MessageType(data[0]) != MessageTypeServerHello {
		return nil, cerrors.ErrInvalidMessage
	}

	payloadLen := binary.BigEndian.Uint32(data[1:5])
	if len(data) < HeaderSize+int(payloadLen) {
		return nil, cerrors.ErrInvalidMessage
	}

	minPayloadLen := 2 + 32 + 1 + constants.HybridCiphertextSize + constants.Ed25519PublicKeySize
	if int(payloadLen) < minPayloadLen {
		return nil, cerrors.ErrInvalidMessage
	}

	offset := HeaderSize
	m := &ServerHello{}

	m.Version = Version{Major: data[offset], Minor: data[offset+1]}
	offset += 2

	m.Random = make([]byte, 32)
	copy(m.Random, data[offset:offset+32])
	offset += 32

	sessionIDLen := int(data[offset])
	offset++
	if sessionIDLen > 0 {
		if offset+sessionIDLen > len(data) {
			return nil, cerrors.ErrInvalidMessage
		}
		m.SessionID = make([]byte, sessionIDLen)
		copy(m.SessionID, data[offset:offset+sessionIDLen])
		offset += sessionIDLen
	}

	if offset+constants.HybridCiphertextSize+constants.Ed25519PublicKeySize > len(data) {
		return nil, cerrors.ErrInvalidMessage
	}

	m.HybridCiphertext = make([]byte, constants.HybridCiphertextSize)
	copy(m.HybridCiphertext, data[offset:offset+constants.HybridCiphertextSize])
	offset += constants.HybridCiphertextSize

	m.IdentityPublicKey = make([]byte, constants.Ed25519PublicKeySize)
	copy(m.IdentityPublicKey, data[offset:offset+constants.Ed25519PublicKeySize])

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// EncodeFinished serializes a Finished message (client or server), carrying
// a 64-byte Ed25519 signature over the handshake transcript.
func (c *Codec) EncodeFinished(msgType MessageType, signature []byte) ([]byte, error) {
	if len(signature) != constants.Ed25519SignatureSize {
		return nil, cerrors.ErrInvalidMessage
	}
	if msgType != MessageTypeClientFinished && msgType != MessageTypeServerFinished {
		return nil, cerrors.ErrInvalidMessage
	}

	buf := make([]byte, HeaderSize+constants.Ed25519SignatureSize)
	buf[0] = byte(msgType)
	binary.BigEndian.PutUint32(buf[1:], uint32(constants.Ed25519SignatureSize))
	copy(buf[HeaderSize:], signature)

	return buf, nil
}

// DecodeFinished deserializes a Finished message, returning its signature.
func (c *Codec) DecodeFinished(data []byte) ([]byte, error) {
	if len(data) < HeaderSize+constants.Ed25519SignatureSize {
		return nil, cerrors.ErrInvalidMessage
	}

	msgType := MessageType(data[0])
	if msgType != MessageTypeClientFinished && msgType != MessageTypeServerFinished {
		return nil, cerrors.ErrInvalidMessage
	}

	signature := make([]byte, constants.Ed25519SignatureSize)
	copy(signature, data[HeaderSize:HeaderSize+constants.Ed25519SignatureSize])

	return signature, nil
}

// EncodeAlert serializes an alert message.
func (c *Codec) EncodeAlert(level AlertLevel, code AlertCode, description string) []byte {
	if len(description) > 255 {
		description = description[:255]
	}

	payloadSize := 1 + 1 + 1 + len(description)
	buf := make([]byte, HeaderSize+payloadSize)

	buf[0] = byte(MessageTypeAlert)
	//nolint:gosec // G115: payloadSize is bounded < 300
	binary.BigEndian.PutUint32(buf[1:], uint32(payloadSize))
	buf[HeaderSize] = byte(level)
	buf[HeaderSize+1] = byte(code)
	buf[HeaderSize+2] = byte(len(description))
	copy(buf[HeaderSize+3:], description)

	return buf
}

// DecodeAlert deserializes an alert message.
func (c *Codec) DecodeAlert(data []byte) (AlertLevel, AlertCode, string, error) {
	if len(data) < HeaderSize+3 {
		return 0, 0, "", cerrors.ErrInvalidMessage
	}
	if MessageType(data[0]) != MessageTypeAlert {
		return 0, 0, "", cerrors.ErrInvalidMessage
	}

	level := AlertLevel(data[HeaderSize])
	code := AlertCode(data[HeaderSize+1])
	descLen := int(data[HeaderSize+2])

	if len(data) < HeaderSize+3+descLen {
		return 0, 0, "", cerrors.ErrInvalidMessage
	}

	description := string(data[HeaderSize+3 : HeaderSize+3+descLen])

	return level, code, description, nil
}

// EncodePeerPublish serializes a PeerPublishMessage.
// Format: usernameLen(1)+username + pubKeyLen(2)+pubKey + signKeyLen(1)+signKey
// + endpointCount(1) + (endpointLen(1)+endpoint)* + sigLen(1)+signature + ttl(4)
func (c *Codec) EncodePeerPublish(m *PeerPublishMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	payloadSize := 1 + len(m.Username) +
		2 + len(m.PublicKey) +
		1 + len(m.SignKey) +
		1
	for _, ep := range m.Endpoints {
		payloadSize += 1 + len(ep)
	}
	payloadSize += 1 + len(m.Signature) + 4

	buf := make([]byte, HeaderSize+payloadSize)
	offset := 0
	buf[offset] = byte(MessageTypePeerPublish)
	offset++
	binary.BigEndian.PutUint32(buf[offset:], uint32(payloadSize))
	offset += 4

	buf[offset] = byte(len(m.Username))
	offset++
	copy(buf[offset:], m.Username)
	offset += len(m.Username)

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(m.PublicKey)))
	offset += 2
	copy(buf[offset:], m.PublicKey)
	offset += len(m.PublicKey)

	buf[offset] = byte(len(m.SignKey))
	offset++
	copy(buf[offset:], m.SignKey)
	offset += len(m.SignKey)

	buf[offset] = byte(len(m.Endpoints))
	offset++
	for _, ep := range m.Endpoints {
		buf[offset] = byte(len(ep))
		offset++
		copy(buf[offset:], ep)
		offset += len(ep)
	}

	buf[offset] = byte(len(m.Signature))
	offset++
	copy(buf[offset:], m.Signature)
	offset += len(m.Signature)

	binary.BigEndian.PutUint32(buf[offset:], m.TTLSeconds)

	return buf, nil
}

// DecodePeerPublish deserializes a PeerPublishMessage.
func (c *Codec) DecodePeerPublish(data []byte) (*PeerPublishMessage, error) {
	if len(data) < HeaderSize {
		return nil, cerrors.ErrInvalidMessage
	}
	if MessageType(data[0]) != MessageTypePeerPublish {
		return nil, cerrors.ErrInvalidMessage
	}
	payloadLen := binary.BigEndian.Uint32(data[1:5])
	if len(data) < HeaderSize+int(payloadLen) {
		return nil, cerrors.ErrInvalidMessage
	}

	offset := HeaderSize
	m := &PeerPublishMessage{}

	var err error
	m.Username, offset, err = readByteLenString(data, offset)
	if err != nil {
		return nil, err
	}

	m.PublicKey, offset, err = readUint16LenBytes(data, offset)
	if err != nil {
		return nil, err
	}

	m.SignKey, offset, err = readByteLenBytes(data, offset)
	if err != nil {
		return nil, err
	}

	if offset >= len(data) {
		return nil, cerrors.ErrInvalidMessage
	}
	count := int(data[offset])
	offset++
	m.Endpoints = make([]string, count)
	for i := 0; i < count; i++ {
		m.Endpoints[i], offset, err = readByteLenString(data, offset)
		if err != nil {
			return nil, err
		}
	}

	m.Signature, offset, err = readByteLenBytes(data, offset)
	if err != nil {
		return nil, err
	}

	if offset+4 > len(data) {
		return nil, cerrors.ErrInvalidMessage
	}
	m.TTLSeconds = binary.BigEndian.Uint32(data[offset:])

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodePeerLookup serializes a PeerLookupMessage.
func (c *Codec) EncodePeerLookup(m *PeerLookupMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	payloadSize := 1 + len(m.Username)
	buf := make([]byte, HeaderSize+payloadSize)
	buf[0] = byte(MessageTypePeerLookup)
	binary.BigEndian.PutUint32(buf[1:], uint32(payloadSize))
	buf[HeaderSize] = byte(len(m.Username))
	copy(buf[HeaderSize+1:], m.Username)

	return buf, nil
}

// DecodePeerLookup deserializes a PeerLookupMessage.
func (c *Codec) DecodePeerLookup(data []byte) (*PeerLookupMessage, error) {
	if len(data) < HeaderSize+1 {
		return nil, cerrors.ErrInvalidMessage
	}
	if MessageType(data[0]) != MessageTypePeerLookup {
		return nil, cerrors.ErrInvalidMessage
	}

	username, _, err := readByteLenString(data, HeaderSize)
	if err != nil {
		return nil, err
	}

	m := &PeerLookupMessage{Username: username}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodePeerLookupReply serializes a PeerLookupReplyMessage.
// Format: found(1) + [usernameLen(1)+username + pubKeyLen(2)+pubKey +
// signKeyLen(1)+signKey + endpointCount(1)+(endpointLen(1)+endpoint)* +
// sigLen(1)+signature + timestamp(8) + ttl(4)]
func (c *Codec) EncodePeerLookupReply(m *PeerLookupReplyMessage) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if !m.Found {
		buf := make([]byte, HeaderSize+1)
		buf[0] = byte(MessageTypePeerLookupReply)
		binary.BigEndian.PutUint32(buf[1:], 1)
		return buf, nil
	}

	payloadSize := 1 + 1 + len(m.Username) +
		2 + len(m.PublicKey) +
		1 + len(m.SignKey) +
		1
	for _, ep := range m.Endpoints {
		payloadSize += 1 + len(ep)
	}
	payloadSize += 1 + len(m.Signature) + 8 + 4

	buf := make([]byte, HeaderSize+payloadSize)
	offset := 0
	buf[offset] = byte(MessageTypePeerLookupReply)
	offset++
	binary.BigEndian.PutUint32(buf[offset:], uint32(payloadSize))
	offset += 4

	buf[offset] = 1
	offset++

	buf[offset] = byte(len(m.Username))
	offset++
	copy(buf[offset:], m.Username)
	offset += len(m.Username)

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(m.PublicKey)))
	offset += 2
	copy(buf[offset:], m.PublicKey)
	offset += len(m.PublicKey)

	buf[offset] = byte(len(m.SignKey))
	offset++
	copy(buf[offset:], m.SignKey)
	offset += len(m.SignKey)

	buf[offset] = byte(len(m.Endpoints))
	offset++
	for _, ep := range m.Endpoints {
		buf[offset] = byte(len(ep))
		offset++
		copy(buf[offset:], ep)
		offset += len(ep)
	}

	buf[offset] = byte(len(m.Signature))
	offset++
	copy(buf[offset:], m.Signature)
	offset += len(m.Signature)

	binary.BigEndian.PutUint64(buf[offset:], uint64(m.Timestamp))
	offset += 8

	binary.BigEndian.PutUint32(buf[offset:], m.TTLSeconds)

	return buf, nil
}

// DecodePeerLookupReply deserializes a PeerLookupReplyMessage.
func (c *Codec) DecodePeerLookupReply(data []byte) (*PeerLookupReplyMessage, error) {
	if len(data) < HeaderSize+1 {
		return nil, cerrors.ErrInvalidMessage
	}
	if MessageType(data[0]) != MessageTypePeerLookupReply {
		return nil, cerrors.ErrInvalidMessage
	}

	offset := HeaderSize
	found := data[offset] != 0
	offset++

	m := &PeerLookupReplyMessage{Found: found}
	if !found {
		return m, nil
	}

	var err error
	m.Username, offset, err = readByteLenString(data, offset)
	if err != nil {
		return nil, err
	}

	m.PublicKey, offset, err = readUint16LenBytes(data, offset)
	if err != nil {
		return nil, err
	}

	m.SignKey, offset, err = readByteLenBytes(data, offset)
	if err != nil {
		return nil, err
	}

	if offset >= len(data) {
		return nil, cerrors.ErrInvalidMessage
	}
	count := int(data[offset])
	offset++
	m.Endpoints = make([]string, count)
	for i := 0; i < count; i++ {
		m.Endpoints[i], offset, err = readByteLenString(data, offset)
		if err != nil {
			return nil, err
		}
	}

	m.Signature, offset, err = readByteLenBytes(data, offset)
	if err != nil {
		return nil, err
	}

	if offset+12 > len(data) {
		return nil, cerrors.ErrInvalidMessage
	}
	m.Timestamp = int64(binary.BigEndian.Uint64(data[offset:]))
	offset += 8
	m.TTLSeconds = binary.BigEndian.Uint32(data[offset:])

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func readByteLenString(data []byte, offset int) (string, int, error) {
	b, offset, err := readByteLenBytes(data, offset)
	if err != nil {
		return "", offset, err
	}
	return string(b), offset, nil
}

func readByteLenBytes(data []byte, offset int) ([]byte, int, error) {
	if offset >= len(data) {
		return nil, offset, cerrors.ErrInvalidMessage
	}
	n := int(data[offset])
	offset++
	if offset+n > len(data) {
		return nil, offset, cerrors.ErrInvalidMessage
	}
	out := make([]byte, n)
	copy(out, data[offset:offset+n])
	return out, offset + n, nil
}

func readUint16LenBytes(data []byte, offset int) ([]byte, int, error) {
	if offset+2 > len(data) {
		return nil, offset, cerrors.ErrInvalidMessage
	}
	n := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2
	if offset+n > len(data) {
		return nil, offset, cerrors.ErrInvalidMessage
	}
	out := make([]byte, n)
	copy(out, data[offset:offset+n])
	return out, offset + n, nil
}

// ReadMessage reads a complete message from the reader.
func (c *Codec) ReadMessage(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	payloadLen := binary.BigEndian.Uint32(header[1:5])
	if payloadLen > MaxMessageSize {
		return nil, cerrors.ErrMessageTooLarge
	}

	msg := make([]byte, HeaderSize+payloadLen)
	copy(msg, header)

	if payloadLen > 0 {
		if _, err := io.ReadFull(r, msg[HeaderSize:]); err != nil {
			return nil, err
		}
	}

	return msg, nil
}

// GetMessageType returns the type of a serialized message.
func (c *Codec) GetMessageType(data []byte) (MessageType, error) {
	if len(data) < 1 {
		return 0, cerrors.ErrInvalidMessage
	}
	return MessageType(data[0]), nil
}
