package redis

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrSessionNotFound is returned for unknown or revoked session tokens.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a stored session outlived ExpiresAt.
	ErrSessionExpired = errors.New("session expired")
)

// SessionData is what an issued session token resolves to.
type SessionData struct {
	ParticipantID string    `json:"participantId"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	IssuedAt      time.Time `json:"issuedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// SessionStore handles session storage in Redis with encryption
type SessionStore struct {
	encryptionKey []byte
}

var (
	setSessionValue    = Set
	getSessionValue    = Get
	delSessionValue    = Del
	marshalSessionJSON = json.Marshal
	sessionNow         = time.Now
)

const sessionKeyPrefix = "session:"

// NewSessionStore creates a new session store
func NewSessionStore(encryptionKeyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("invalid encryption key hex")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}
	return &SessionStore{encryptionKey: key}, nil
}

// CreateSession stores encrypted session data in Redis. IssuedAt defaults to
// now and ExpiresAt is always now plus expiration.
func (s *SessionStore) CreateSession(ctx context.Context, sessionID string, data *SessionData, expiration time.Duration) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}
	if expiration <= 0 {
		return errors.New("session expiration must be positive")
	}

	now := sessionNow().UTC()
	if data.IssuedAt.IsZero() {
		data.IssuedAt = now
	}
	data.ExpiresAt = now.Add(expiration)

	jsonData, err := marshalSessionJSON(data)
	if err != nil {
		return err
	}

	encryptedData, err := s.encrypt(jsonData)
	if err != nil {
		return err
	}

	return setSessionValue(ctx, sessionKeyPrefix+sessionID, encryptedData, expiration)
}

// GetSession retrieves and decrypts session data from Redis. A session past
// its ExpiresAt is deleted and reported as ErrSessionExpired.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	encryptedDataStr, err := getSessionValue(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	decryptedData, err := s.decrypt(encryptedDataStr)
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := json.Unmarshal(decryptedData, &data); err != nil {
		return nil, err
	}

	if !data.ExpiresAt.IsZero() && sessionNow().After(data.ExpiresAt) {
		_ = delSessionValue(ctx, sessionKeyPrefix+sessionID)
		return nil, ErrSessionExpired
	}
	return &data, nil
}

// DeleteSession revokes a session token.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return delSessionValue(ctx, sessionKeyPrefix+sessionID)
}

func (s *SessionStore) encrypt(plaintext []byte) (string, error) {
	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(ciphertext), nil
}

func (s *SessionStore) decrypt(ciphertextHex string) ([]byte, error) {
	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, err
	}

	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (s *SessionStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
