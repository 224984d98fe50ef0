// Package snapshot сохраняет наборы записей на диск в компактном
// бинарном формате: zstd-сжатый JSON с контрольной суммой xxh3 и
// опциональным шифрованием AES-256-GCM.
//
// Формат файла:
//
//	[4] магическая сигнатура "SQKS"
//	[2] версия формата (little-endian)
//	[1] флаги (бит 0 - полезная нагрузка зашифрована)
//	[8] xxh3 от полезной нагрузки (little-endian)
//	[N] полезная нагрузка: zstd(JSON), при шифровании nonce || ciphertext
package snapshot

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"

	"github.com/Cruisoring/sqlkit/pkg/core/record"
)

const (
	magic         = "SQKS"
	formatVersion = 1
	headerSize    = 4 + 2 + 1 + 8

	flagEncrypted byte = 1 << 0
)

var (
	// ErrFormat возвращается при неверной сигнатуре, версии или
	// усеченном файле
	ErrFormat = errors.New("snapshot: invalid file format")

	// ErrChecksum возвращается при расхождении контрольной суммы
	ErrChecksum = errors.New("snapshot: checksum mismatch")

	// ErrKey возвращается при отсутствующем или неверном ключе
	// шифрования
	ErrKey = errors.New("snapshot: invalid encryption key")
)

// Options настраивает запись и чтение снимка
type Options struct {
	// Key - ключ AES-256 (32 байта); пустой ключ отключает шифрование
	Key []byte

	// Level - уровень сжатия zstd; ноль дает SpeedDefault
	Level zstd.EncoderLevel
}

// Marshal кодирует набор записей в бинарный формат снимка
func Marshal(rs record.ResultSet, opts Options) ([]byte, error) {
	payload, err := json.Marshal(encodeRows(rs))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rows: %w", err)
	}

	level := opts.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	payload = enc.EncodeAll(payload, nil)
	enc.Close()

	flags := byte(0)
	if len(opts.Key) > 0 {
		if payload, err = encrypt(payload, opts.Key); err != nil {
			return nil, err
		}
		flags |= flagEncrypted
	}

	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out[0:4], magic)
	binary.LittleEndian.PutUint16(out[4:6], formatVersion)
	out[6] = flags
	binary.LittleEndian.PutUint64(out[7:15], xxh3.Hash(payload))
	return append(out, payload...), nil
}

// Unmarshal декодирует снимок обратно в набор записей
func Unmarshal(data []byte, opts Options) (record.ResultSet, error) {
	if len(data) < headerSize || string(data[0:4]) != magic {
		return nil, fmt.Errorf("%w: bad signature", ErrFormat)
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, v)
	}
	flags := data[6]
	sum := binary.LittleEndian.Uint64(data[7:15])
	payload := data[headerSize:]

	if xxh3.Hash(payload) != sum {
		return nil, ErrChecksum
	}

	if flags&flagEncrypted != 0 {
		if len(opts.Key) == 0 {
			return nil, fmt.Errorf("%w: snapshot is encrypted, no key supplied", ErrKey)
		}
		var err error
		if payload, err = decrypt(payload, opts.Key); err != nil {
			return nil, err
		}
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	payload, err = dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompression failed: %v", ErrFormat, err)
	}

	var rows []rowModel
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return decodeRows(rows)
}

// Write сохраняет снимок в файл
func Write(path string, rs record.ResultSet, opts Options) error {
	data, err := Marshal(rs, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Read загружает снимок из файла
func Read(path string, opts Options) (record.ResultSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Unmarshal(data, opts)
}

// encrypt шифрует полезную нагрузку AES-256-GCM, nonce в начале
func encrypt(payload, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, payload, nil), nil
}

func decrypt(payload, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(payload) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: truncated payload", ErrFormat)
	}
	nonce, ciphertext := payload[:gcm.NonceSize()], payload[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decryption failed", ErrKey)
	}
	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: AES-256 requires 32-byte key, got %d", ErrKey, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	return cipher.NewGCM(block)
}
