// MIT License
//
// Copyright 2018 Canonical Ledgers, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

// Package wallet maintains access to the private keys of STEEM accounts.
//
// A Wallet operates in one of three modes:
//
//   - Memory: the keys given to NewMemory are held in memory only. If only
//     one key is held, it is returned for any public key.
//   - KeyMap: NewKeyMap forces the key used for each role regardless of the
//     account. This is only useful for foreign signatures.
//   - Database: Open uses a sqlite key store. Every private key is sealed
//     with a random master key, and the master key is sealed with a key
//     derived from the wallet password. The store must be unlocked before
//     keys can be read or added.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"sync"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/internal/db"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/hashicorp/go-multierror"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

var (
	ErrWalletExists  = errors.New("wallet already created")
	ErrNotCreated    = errors.New("wallet not created")
	ErrWrongPassword = errors.New("wrong password")
	ErrEmptyPassword = errors.New("empty password")
	ErrLocked        = errors.New("wallet is locked")
	ErrInvalidWIF    = errors.New("invalid private key format, use WIF")
	ErrMissingKey    = errors.New("private key not in wallet")
	ErrInvalidRole   = errors.New("invalid role")
	ErrNoAPI         = errors.New("wallet has no node API")
)

// AccountCacheTTL is how long account lookups are cached.
const AccountCacheTTL = 30 * time.Second

// Option configures a Wallet.
type Option func(*Wallet)

// WithAPI sets the node API used to look up account authorities.
func WithAPI(a *api.API) Option {
	return func(w *Wallet) { w.api = a }
}

// WithPrefix sets the prefix of the public keys returned by the Wallet.
func WithPrefix(prefix string) Option {
	return func(w *Wallet) { w.prefix = prefix }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Wallet) { w.log = l }
}

// Wallet holds private keys and implements txbuilder.Signer.
type Wallet struct {
	api    *api.API
	log    logrus.FieldLogger
	prefix string

	accounts *cache.Cache

	mu sync.RWMutex

	// Memory mode.
	keys    map[string]*keys.PrivateKey
	pubs    []*keys.PublicKey
	keyMap  map[string]*keys.PrivateKey
	configs map[string]string

	// Database mode.
	db        *db.DB
	masterKey *[keySize]byte
}

func newWallet(opts []Option) *Wallet {
	w := &Wallet{
		prefix:   keys.DefaultPrefix,
		accounts: cache.New(AccountCacheTTL, 2*AccountCacheTTL),
		keys:     make(map[string]*keys.PrivateKey),
		keyMap:   make(map[string]*keys.PrivateKey),
		configs:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		w.log = l
	}
	return w
}

// NewMemory returns a Wallet that holds only the given WIF keys in memory.
func NewMemory(wifs []string, opts ...Option) (*Wallet, error) {
	w := newWallet(opts)
	if err := w.SetKeys(wifs...); err != nil {
		return nil, err
	}
	return w, nil
}

// NewKeyMap returns a Wallet that uses the WIF key of roleWIFs for the
// corresponding role of every account.
func NewKeyMap(roleWIFs map[string]string, opts ...Option) (*Wallet, error) {
	w := newWallet(opts)
	if err := w.SetKeyMap(roleWIFs); err != nil {
		return nil, err
	}
	return w, nil
}

// Open the key store at path. The returned Wallet is locked.
func Open(ctx context.Context, path string, opts ...Option) (*Wallet, error) {
	w := newWallet(opts)
	d, err := db.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	w.db = d
	w.log.Debugf("Opened wallet database %v", d.Path)
	return w, nil
}

// Close the key store, if any.
func (w *Wallet) Close() error {
	w.Lock()
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}

// SetAPI sets the node API used to look up account authorities.
func (w *Wallet) SetAPI(a *api.API) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.api = a
}

// SetKeys adds WIF keys to the in memory keys. Every invalid key is
// reported in the returned error, which wraps ErrInvalidWIF.
func (w *Wallet) SetKeys(wifs ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs *multierror.Error
	for i, wif := range wifs {
		priv, err := keys.NewPrivateKey(wif)
		if err != nil {
			errs = multierror.Append(errs,
				fmt.Errorf("%w: key %v: %v", ErrInvalidWIF, i, err))
			continue
		}
		w.addMemoryKey(priv)
	}
	return errs.ErrorOrNil()
}

// SetKeyMap forces the key used for each role.
func (w *Wallet) SetKeyMap(roleWIFs map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs *multierror.Error
	for role, wif := range roleWIFs {
		if !validRole(role) {
			errs = multierror.Append(errs,
				fmt.Errorf("%w: %q", ErrInvalidRole, role))
			continue
		}
		priv, err := keys.NewPrivateKey(wif)
		if err != nil {
			errs = multierror.Append(errs,
				fmt.Errorf("%w: %v key: %v", ErrInvalidWIF, role, err))
			continue
		}
		w.keyMap[role] = priv
		w.addMemoryKey(priv)
	}
	return errs.ErrorOrNil()
}

func (w *Wallet) addMemoryKey(priv *keys.PrivateKey) {
	pub := priv.PublicKey()
	id := string(pub.Bytes())
	if _, ok := w.keys[id]; ok {
		return
	}
	w.keys[id] = priv
	w.pubs = append(w.pubs, pub.WithPrefix(w.prefix))
}

func validRole(role string) bool {
	for _, r := range keys.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Persistent reports whether the Wallet uses a key store.
func (w *Wallet) Persistent() bool {
	return w.db != nil
}

// ForcedKey returns the key forced for role by NewKeyMap, if any.
func (w *Wallet) ForcedKey(role string) (*keys.PrivateKey, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	priv, ok := w.keyMap[role]
	return priv, ok
}

// PrivateKeyForPublicKey returns the private key of pub. In memory mode a
// Wallet that holds a single key returns it for any pub. It returns
// ErrMissingKey if the key is not held, and ErrLocked if the key store is
// locked.
func (w *Wallet) PrivateKeyForPublicKey(ctx context.Context,
	pub *keys.PublicKey) (*keys.PrivateKey, error) {
	if w.db != nil {
		return w.storedKey(ctx, pub)
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if priv, ok := w.keys[string(pub.Bytes())]; ok {
		return priv, nil
	}
	if len(w.keys) == 1 {
		for _, priv := range w.keys {
			return priv, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrMissingKey, pub.WithPrefix(w.prefix))
}

// AddPrivateKey adds a WIF key to the Wallet.
func (w *Wallet) AddPrivateKey(ctx context.Context, wif string) (*keys.PublicKey, error) {
	priv, err := keys.NewPrivateKey(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWIF, err)
	}
	pub := priv.PublicKey().WithPrefix(w.prefix)
	if w.db != nil {
		if err := w.storeKey(ctx, priv); err != nil {
			return nil, err
		}
		return pub, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.addMemoryKey(priv)
	return pub, nil
}

// RemovePrivateKey removes the key of pub from the Wallet.
func (w *Wallet) RemovePrivateKey(ctx context.Context, pub *keys.PublicKey) error {
	if w.db != nil {
		return w.deleteKey(ctx, pub)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	id := string(pub.Bytes())
	if _, ok := w.keys[id]; !ok {
		return fmt.Errorf("%w: %v", ErrMissingKey, pub.WithPrefix(w.prefix))
	}
	delete(w.keys, id)
	for i, p := range w.pubs {
		if p.Equal(pub) {
			w.pubs = append(w.pubs[:i], w.pubs[i+1:]...)
			break
		}
	}
	return nil
}

// PublicKeys returns the public keys of all held private keys.
func (w *Wallet) PublicKeys(ctx context.Context) ([]*keys.PublicKey, error) {
	if w.db != nil {
		return w.storedPublicKeys(ctx)
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	pubs := make([]*keys.PublicKey, len(w.pubs))
	copy(pubs, w.pubs)
	return pubs, nil
}
