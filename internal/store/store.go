package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/mtlprog/folio/internal/domain"
)

// State is everything the toolkit persists between sessions.
type State struct {
	Assets         []domain.Asset         `json:"assets"`
	ClassTargets   domain.ClassTargets    `json:"classTargets"`
	NetWorth       []domain.NetWorthEntry `json:"netWorth"`
	PersonaAnswers map[string]int         `json:"personaAnswers,omitempty"`
	BaseCurrency   string                 `json:"baseCurrency,omitempty"`
}

// TTL is how long a sealed state file stays valid.
const TTL = 365 * 24 * time.Hour

// ErrExpired is returned by Load when the state file is older than TTL.
var ErrExpired = errors.New("state file has expired")

// envelope is the on-disk format: scrypt salt and secretbox nonce travel in
// the clear next to the ciphertext.
type envelope struct {
	Version   int       `json:"version"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Salt      []byte    `json:"salt"`
	Nonce     []byte    `json:"nonce"`
	Data      []byte    `json:"data"`
}

const envelopeVersion = 1

// Store seals the state to a single encrypted file.
type Store struct {
	path       string
	passphrase []byte
}

// New creates a Store for the given file path and passphrase.
func New(path, passphrase string) *Store {
	return &Store{path: path, passphrase: []byte(passphrase)}
}

func (s *Store) deriveKey(salt []byte) (*[32]byte, error) {
	raw, err := scrypt.Key(s.passphrase, salt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// Save seals the state and writes it atomically.
func (s *Store) Save(state State) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	env := envelope{
		Version:   envelopeVersion,
		IssuedAt:  now,
		ExpiresAt: now.Add(TTL),
		Salt:      salt,
		Nonce:     nonce[:],
		Data:      secretbox.Seal(nil, plain, &nonce, key),
	}

	blob, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".folio-state-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// Load reads and unseals the state. A missing file yields an empty state;
// an expired file yields ErrExpired.
func (s *Store) Load() (State, error) {
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{ClassTargets: domain.ClassTargets{}}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("reading state file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return State{}, fmt.Errorf("parsing state envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return State{}, fmt.Errorf("unsupported state version %d", env.Version)
	}
	if time.Now().UTC().After(env.ExpiresAt) {
		return State{}, ErrExpired
	}
	if len(env.Nonce) != 24 {
		return State{}, fmt.Errorf("malformed nonce length %d", len(env.Nonce))
	}

	key, err := s.deriveKey(env.Salt)
	if err != nil {
		return State{}, err
	}

	var nonce [24]byte
	copy(nonce[:], env.Nonce)
	plain, ok := secretbox.Open(nil, env.Data, &nonce, key)
	if !ok {
		return State{}, errors.New("cannot decrypt state: wrong passphrase or corrupted file")
	}

	var state State
	if err := json.Unmarshal(plain, &state); err != nil {
		return State{}, fmt.Errorf("parsing state: %w", err)
	}
	if state.ClassTargets == nil {
		state.ClassTargets = domain.ClassTargets{}
	}
	return state, nil
}

// NetWorthRepository adapts the store to the net-worth history interface.
type NetWorthRepository struct {
	store *Store
}

// NewNetWorthRepository creates a repository backed by the store.
func NewNetWorthRepository(store *Store) *NetWorthRepository {
	return &NetWorthRepository{store: store}
}

// List returns the persisted net-worth entries.
func (r *NetWorthRepository) List() ([]domain.NetWorthEntry, error) {
	state, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	return state.NetWorth, nil
}

// Replace overwrites the persisted net-worth history, keeping the rest of
// the state intact.
func (r *NetWorthRepository) Replace(entries []domain.NetWorthEntry) error {
	state, err := r.store.Load()
	if err != nil {
		return err
	}
	state.NetWorth = entries
	return r.store.Save(state)
}
