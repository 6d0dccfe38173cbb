package salsa20

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/salsa20"
)

const cipherKey string = "drivesim telemetry broadcast v1"

const (
	// Magic is the little endian "DSIM" header every plain packet starts with
	Magic uint32 = 0x4D495344
	// DefaultIVSeed mixes the per packet IV into the nonce
	DefaultIVSeed uint32 = 0x5EEDD21E

	ivOffset = 0x40
	minSize  = ivOffset + 4
)

var (
	ErrDataTooShort      = errors.New("salsa20 data is too short")
	ErrInvalidMagicValue = errors.New("invalid magic value")
)

// Encode enciphers a plain packet. The IV is written in the clear at 0x40 so
// the receiver can rebuild the nonce.
func Encode(ivSeed, iv uint32, dat []byte) ([]byte, error) {
	datLen := len(dat)
	if datLen < minSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrDataTooShort, datLen, minSize)
	}

	magic := binary.LittleEndian.Uint32(dat[:4])
	if magic != Magic {
		return nil, fmt.Errorf("%w: %x", ErrInvalidMagicValue, magic)
	}

	edata := make([]byte, datLen)
	salsa20.XORKeyStream(edata, dat, nonce(ivSeed, iv), key())
	binary.LittleEndian.PutUint32(edata[ivOffset:ivOffset+4], iv)

	return edata, nil
}

// Decode deciphers a packet produced by Encode and checks its magic header.
func Decode(ivSeed uint32, dat []byte) ([]byte, error) {
	datLen := len(dat)
	if datLen < minSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrDataTooShort, datLen, minSize)
	}

	iv := binary.LittleEndian.Uint32(dat[ivOffset : ivOffset+4])

	ddata := make([]byte, datLen)
	salsa20.XORKeyStream(ddata, dat, nonce(ivSeed, iv), key())

	magic := binary.LittleEndian.Uint32(ddata[:4])
	if magic != Magic {
		return nil, fmt.Errorf("%w: %x", ErrInvalidMagicValue, magic)
	}

	binary.LittleEndian.PutUint32(ddata[ivOffset:ivOffset+4], iv)

	return ddata, nil
}

func key() *[32]byte {
	key := [32]byte{}
	copy(key[:], cipherKey)

	return &key
}

func nonce(ivSeed, iv uint32) []byte {
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint32(nonce, iv^ivSeed)
	binary.LittleEndian.PutUint32(nonce[4:], iv)

	return nonce
}
