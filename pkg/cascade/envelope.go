package cascade

import (
	"encoding/binary"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
)

// Envelope is the wire format produced by Engine.Encrypt and consumed by
// Engine.Decrypt (spec.md §6):
//
//	version(1B) || counter(8B BE) || message_id(8B BE) || timestamp_ms(8B BE signed) ||
//	nonce1(24B) || nonce2(12B) || nonce3(12B) || ciphertext_len(4B BE) || ciphertext
type Envelope struct {
	Version     uint8
	Counter     uint64
	MessageID   uint64
	TimestampMs int64
	Nonce1      [constants.L1NonceSize]byte
	Nonce2      [constants.L2NonceSize]byte
	Nonce3      [constants.L3NonceSize]byte
	Ciphertext  []byte
}

// MarshalBinary encodes the envelope into its exact wire layout.
func (e *Envelope) MarshalBinary() ([]byte, error) {
	out := make([]byte, constants.EnvelopeHeaderSize+len(e.Ciphertext))
	off := 0

	out[off] = e.Version
	off += constants.EnvelopeVersionSize

	binary.BigEndian.PutUint64(out[off:], e.Counter)
	off += constants.EnvelopeCounterSize

	binary.BigEndian.PutUint64(out[off:], e.MessageID)
	off += constants.EnvelopeMessageIDSize

	binary.BigEndian.PutUint64(out[off:], uint64(e.TimestampMs))
	off += constants.EnvelopeTimestampSize

	off += copy(out[off:], e.Nonce1[:])
	off += copy(out[off:], e.Nonce2[:])
	off += copy(out[off:], e.Nonce3[:])

	binary.BigEndian.PutUint32(out[off:], uint32(len(e.Ciphertext)))
	off += constants.EnvelopeCiphertextLenSize

	copy(out[off:], e.Ciphertext)

	return out, nil
}

// UnmarshalBinary decodes an envelope from its wire layout, validating the
// header before trusting the declared ciphertext length.
func (e *Envelope) UnmarshalBinary(data []byte) error {
	if len(data) < constants.EnvelopeHeaderSize {
		return cerrors.NewCryptoError("Envelope.UnmarshalBinary", cerrors.ErrDecryptionError)
	}

	off := 0
	e.Version = data[off]
	off += constants.EnvelopeVersionSize
	if e.Version != constants.ProtocolVersion {
		return cerrors.NewCryptoError("Envelope.UnmarshalBinary", cerrors.ErrUnsupportedVersion)
	}

	e.Counter = binary.BigEndian.Uint64(data[off:])
	off += constants.EnvelopeCounterSize

	e.MessageID = binary.BigEndian.Uint64(data[off:])
	off += constants.EnvelopeMessageIDSize

	e.TimestampMs = int64(binary.BigEndian.Uint64(data[off:]))
	off += constants.EnvelopeTimestampSize

	copy(e.Nonce1[:], data[off:])
	off += constants.L1NonceSize
	copy(e.Nonce2[:], data[off:])
	off += constants.L2NonceSize
	copy(e.Nonce3[:], data[off:])
	off += constants.L3NonceSize

	ctLen := binary.BigEndian.Uint32(data[off:])
	off += constants.EnvelopeCiphertextLenSize

	if uint32(len(data)-off) != ctLen {
		return cerrors.NewCryptoError("Envelope.UnmarshalBinary", cerrors.ErrDecryptionError)
	}

	e.Ciphertext = make([]byte, ctLen)
	copy(e.Ciphertext, data[off:])

	return nil
}

// header returns the fixed-width fields that precede the ciphertext,
// encoded identically to MarshalBinary's prefix. Per spec.md §4.1, AAD is
// the empty string in the current protocol version, so the cascade engine
// does not call this today; it is kept for a future version that binds
// these header fields as additional authenticated data.
func (e *Envelope) header() []byte {
	buf := make([]byte, constants.EnvelopeHeaderSize-constants.EnvelopeCiphertextLenSize)
	off := 0
	buf[off] = e.Version
	off += constants.EnvelopeVersionSize
	binary.BigEndian.PutUint64(buf[off:], e.Counter)
	off += constants.EnvelopeCounterSize
	binary.BigEndian.PutUint64(buf[off:], e.MessageID)
	off += constants.EnvelopeMessageIDSize
	binary.BigEndian.PutUint64(buf[off:], uint64(e.TimestampMs))
	off += constants.EnvelopeTimestampSize
	off += copy(buf[off:], e.Nonce1[:])
	off += copy(buf[off:], e.Nonce2[:])
	copy(buf[off:], e.Nonce3[:])
	return buf
}
