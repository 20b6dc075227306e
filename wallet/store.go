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

package wallet

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"crawshaw.io/sqlite"
	"github.com/Steem-Tools/steemgo/internal/db/config"
	"github.com/Steem-Tools/steemgo/internal/db/keystore"
	"github.com/Steem-Tools/steemgo/keys"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	keySize   = 32
	nonceSize = 24
	saltSize  = 16
)

// scrypt parameters used to derive the key that seals the master key.
var (
	ScryptN = 1 << 15
	ScryptR = 8
	ScryptP = 1
)

// Created reports whether a password has been set. Memory wallets are always
// created.
func (w *Wallet) Created(ctx context.Context) (bool, error) {
	if w.db == nil {
		return true, nil
	}
	var created bool
	err := w.db.Do(ctx, func(conn *sqlite.Conn) error {
		_, _, ok, err := keystore.SelectMasterKey(conn)
		created = ok
		return err
	})
	return created, err
}

// Create sets the password of a new key store and leaves it unlocked.
func (w *Wallet) Create(ctx context.Context, password string) error {
	if w.db == nil {
		return ErrWalletExists
	}
	if password == "" {
		return ErrEmptyPassword
	}
	var master [keySize]byte
	if _, err := io.ReadFull(rand.Reader, master[:]); err != nil {
		return err
	}
	salt, sealed, err := sealMasterKey(&master, password)
	if err != nil {
		return err
	}
	if err := w.db.Tx(ctx, func(conn *sqlite.Conn) error {
		_, _, ok, err := keystore.SelectMasterKey(conn)
		if err != nil {
			return err
		}
		if ok {
			return ErrWalletExists
		}
		return keystore.SetMasterKey(conn, salt, sealed)
	}); err != nil {
		return err
	}
	w.mu.Lock()
	w.masterKey = &master
	w.mu.Unlock()
	w.log.Info("Created new wallet")
	return nil
}

// Unlock the key store with password.
func (w *Wallet) Unlock(ctx context.Context, password string) error {
	if w.db == nil {
		return nil
	}
	master, err := w.openMasterKey(ctx, password)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.masterKey = master
	w.mu.Unlock()
	return nil
}

func (w *Wallet) openMasterKey(ctx context.Context,
	password string) (*[keySize]byte, error) {
	var salt, sealed []byte
	if err := w.db.Do(ctx, func(conn *sqlite.Conn) error {
		var ok bool
		var err error
		salt, sealed, ok, err = keystore.SelectMasterKey(conn)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotCreated
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return openMasterKey(salt, sealed, password)
}

// Lock forgets the master key. Memory wallets cannot be locked.
func (w *Wallet) Lock() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.masterKey != nil {
		for i := range w.masterKey {
			w.masterKey[i] = 0
		}
		w.masterKey = nil
	}
}

// Locked reports whether the key store is locked.
func (w *Wallet) Locked() bool {
	if w.db == nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.masterKey == nil
}

// ChangePassphrase reseals the master key with newPassword. The stored keys
// are not touched since they are sealed with the master key.
func (w *Wallet) ChangePassphrase(ctx context.Context,
	oldPassword, newPassword string) error {
	if w.db == nil {
		return nil
	}
	if newPassword == "" {
		return ErrEmptyPassword
	}
	master, err := w.openMasterKey(ctx, oldPassword)
	if err != nil {
		return err
	}
	salt, sealed, err := sealMasterKey(master, newPassword)
	if err != nil {
		return err
	}
	if err := w.db.Tx(ctx, func(conn *sqlite.Conn) error {
		return keystore.SetMasterKey(conn, salt, sealed)
	}); err != nil {
		return err
	}
	w.mu.Lock()
	w.masterKey = master
	w.mu.Unlock()
	return nil
}

// SetPassword reseals the master key of the unlocked key store with
// password.
func (w *Wallet) SetPassword(ctx context.Context, password string) error {
	if w.db == nil {
		return nil
	}
	if password == "" {
		return ErrEmptyPassword
	}
	master, err := w.master()
	if err != nil {
		return err
	}
	salt, sealed, err := sealMasterKey(master, password)
	if err != nil {
		return err
	}
	return w.db.Tx(ctx, func(conn *sqlite.Conn) error {
		return keystore.SetMasterKey(conn, salt, sealed)
	})
}

func (w *Wallet) master() (*[keySize]byte, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.masterKey == nil {
		return nil, ErrLocked
	}
	return w.masterKey, nil
}

func (w *Wallet) storeKey(ctx context.Context, priv *keys.PrivateKey) error {
	master, err := w.master()
	if err != nil {
		return err
	}
	sealed, err := seal(priv.Bytes(), master)
	if err != nil {
		return err
	}
	return w.db.Tx(ctx, func(conn *sqlite.Conn) error {
		return keystore.Insert(conn, priv.PublicKey().Bytes(), sealed)
	})
}

func (w *Wallet) storedKey(ctx context.Context,
	pub *keys.PublicKey) (*keys.PrivateKey, error) {
	master, err := w.master()
	if err != nil {
		return nil, err
	}
	var sealed []byte
	if err := w.db.Do(ctx, func(conn *sqlite.Conn) error {
		var err error
		sealed, err = keystore.Select(conn, pub.Bytes())
		return err
	}); err != nil {
		return nil, err
	}
	if sealed == nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingKey, pub.WithPrefix(w.prefix))
	}
	secret, ok := open(sealed, master)
	if !ok {
		return nil, fmt.Errorf("corrupt key %v", pub.WithPrefix(w.prefix))
	}
	return keys.PrivateKeyFromBytes(secret), nil
}

func (w *Wallet) deleteKey(ctx context.Context, pub *keys.PublicKey) error {
	return w.db.Tx(ctx, func(conn *sqlite.Conn) error {
		deleted, err := keystore.Delete(conn, pub.Bytes())
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("%w: %v", ErrMissingKey, pub.WithPrefix(w.prefix))
		}
		return nil
	})
}

func (w *Wallet) storedPublicKeys(ctx context.Context) ([]*keys.PublicKey, error) {
	var entries []keystore.Entry
	if err := w.db.Do(ctx, func(conn *sqlite.Conn) error {
		var err error
		entries, err = keystore.SelectAll(conn)
		return err
	}); err != nil {
		return nil, err
	}
	pubs := make([]*keys.PublicKey, 0, len(entries))
	for _, e := range entries {
		pub, err := keys.PublicKeyFromBytes(e.Pub)
		if err != nil {
			return nil, fmt.Errorf("invalid stored public key %x: %w", e.Pub, err)
		}
		pubs = append(pubs, pub.WithPrefix(w.prefix))
	}
	return pubs, nil
}

// Config returns the value of a config key such as config.DefaultAccount.
func (w *Wallet) Config(ctx context.Context, key string) (string, bool, error) {
	if w.db == nil {
		w.mu.RLock()
		defer w.mu.RUnlock()
		value, ok := w.configs[key]
		return value, ok, nil
	}
	var value string
	var ok bool
	err := w.db.Do(ctx, func(conn *sqlite.Conn) error {
		var err error
		value, ok, err = config.Select(conn, key)
		return err
	})
	return value, ok, err
}

// SetConfig sets a config key. An empty value deletes the key.
func (w *Wallet) SetConfig(ctx context.Context, key, value string) error {
	if w.db == nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		if value == "" {
			delete(w.configs, key)
		} else {
			w.configs[key] = value
		}
		return nil
	}
	return w.db.Tx(ctx, func(conn *sqlite.Conn) error {
		if value == "" {
			return config.Delete(conn, key)
		}
		return config.Set(conn, key, value)
	})
}

// Configs returns all config keys and values.
func (w *Wallet) Configs(ctx context.Context) (map[string]string, error) {
	if w.db == nil {
		w.mu.RLock()
		defer w.mu.RUnlock()
		all := make(map[string]string, len(w.configs))
		for k, v := range w.configs {
			all[k] = v
		}
		return all, nil
	}
	var all map[string]string
	err := w.db.Do(ctx, func(conn *sqlite.Conn) error {
		var err error
		all, err = config.SelectAll(conn)
		return err
	})
	return all, err
}

func sealMasterKey(master *[keySize]byte,
	password string) (salt, sealed []byte, err error) {
	salt = make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, nil, err
	}
	kek, err := passwordKey(password, salt)
	if err != nil {
		return nil, nil, err
	}
	sealed, err = seal(master[:], kek)
	return salt, sealed, err
}

func openMasterKey(salt, sealed []byte, password string) (*[keySize]byte, error) {
	kek, err := passwordKey(password, salt)
	if err != nil {
		return nil, err
	}
	data, ok := open(sealed, kek)
	if !ok || len(data) != keySize {
		return nil, ErrWrongPassword
	}
	var master [keySize]byte
	copy(master[:], data)
	return &master, nil
}

func passwordKey(password string, salt []byte) (*[keySize]byte, error) {
	dk, err := scrypt.Key([]byte(password), salt, ScryptN, ScryptR, ScryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("scrypt.Key(): %w", err)
	}
	var key [keySize]byte
	copy(key[:], dk)
	return &key, nil
}

// seal returns the random nonce followed by the secretbox of msg.
func seal(msg []byte, key *[keySize]byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], msg, &nonce, key), nil
}

func open(sealed []byte, key *[keySize]byte) ([]byte, bool) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, false
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed)
	return secretbox.Open(nil, sealed[nonceSize:], &nonce, key)
}
