package keys_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Steem-Tools/steemgo/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWIF = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"

var publicKeyTests = []struct {
	Name   string
	String string
	Hex    string
}{{
	Name:   "owner",
	String: "STM5jYVokmZHdEpwo5oCG3ES2Ca4VYzy6tM8pWWkGdgVnwo2mFLFq",
	Hex:    "026f6231b8ed1c5e964b42967759757f8bb879d68e7b09d9ea6eedec21de6fa4c4",
}, {
	Name:   "active",
	String: "STM6pbVDAjRFiw6fkiKYCrkz7PFeL7XNAfefrsREwg8MKpJ9VYV9x",
	Hex:    "02fe8cc11cc8251de6977636b55c1ab8a9d12b0b26154ac78e56e7c4257d8bcf69",
}, {
	Name:   "posting",
	String: "STM8CemMDjdUWSV5wKotEimhK6c4dY7p2PdzC2qM1HpAP8aLtZfE7",
	Hex:    "03b453f46013fdbccb90b09ba169c388c34d84454a3b9fbec68d5a7819a734fca0",
}, {
	Name:   "memo",
	String: "STM6zLNtyFVToBsBZDsgMhgjpwysYVbsQD6YhP3kRkQhANUB4w7Qp",
	Hex:    "0314aa202c9158990b3ec51a1aa49b2ab5d300c97b391df3beb34bb74f3c62699e",
}}

func TestPublicKey(t *testing.T) {
	for _, test := range publicKeyTests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			pub, err := keys.NewPublicKey(test.String)
			require.NoError(err)
			assert.Equal("STM", pub.Prefix)
			assert.Equal(test.Hex, hex.EncodeToString(pub.Bytes()))
			assert.Equal(test.String, pub.String())

			data, err := json.Marshal(pub)
			require.NoError(err)
			assert.Equal(fmt.Sprintf("%q", test.String), string(data))

			var decoded keys.PublicKey
			require.NoError(json.Unmarshal(data, &decoded))
			assert.True(pub.Equal(&decoded))
		})
	}
}

func TestPublicKeyInvalid(t *testing.T) {
	valid := publicKeyTests[0].String
	tests := []struct {
		Name string
		Key  string
		Err  error
	}{
		{Name: "NoPrefix", Key: valid[3:], Err: keys.ErrInvalidPrefix},
		{Name: "Checksum", Key: valid[:len(valid)-1] + "r",
			Err: keys.ErrInvalidChecksum},
		{Name: "Length", Key: valid[:20], Err: keys.ErrInvalidLength},
	}
	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			_, err := keys.NewPublicKey(test.Key)
			assert.True(t, errors.Is(err, test.Err), "err: %v", err)
		})
	}

	_, err := keys.NewPublicKeyWithPrefix(valid, "TST")
	assert.Equal(t, keys.ErrInvalidPrefix, err)
}

func TestPrivateKey(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	key, err := keys.NewPrivateKey(testWIF)
	require.NoError(err)
	assert.Equal(testWIF, key.String())
	assert.Len(key.Bytes(), 32)

	generated, err := keys.GeneratePrivateKey()
	require.NoError(err)
	parsed, err := keys.NewPrivateKey(generated.String())
	require.NoError(err)
	assert.Equal(generated.Bytes(), parsed.Bytes())
	assert.True(generated.PublicKey().Equal(parsed.PublicKey()))

	var text keys.PrivateKey
	require.NoError(text.UnmarshalText([]byte(testWIF)))
	assert.Equal(key.Bytes(), text.Bytes())

	_, err = keys.NewPrivateKey(testWIF[:len(testWIF)-1] + "4")
	assert.Error(err)
	_, err = keys.NewPrivateKey("STM")
	assert.Error(err)
}

func TestPasswordKey(t *testing.T) {
	assert := assert.New(t)
	active := keys.PasswordKey("xeroc", "secret", keys.RoleActive)
	again := keys.PasswordKey("xeroc", "secret", keys.RoleActive)
	posting := keys.PasswordKey("xeroc", "secret", keys.RolePosting)
	other := keys.PasswordKey("xeroc2", "secret", keys.RoleActive)

	assert.Equal(active.String(), again.String())
	assert.NotEqual(active.String(), posting.String())
	assert.NotEqual(active.String(), other.String())

	seed := sha256.Sum256([]byte("xeroc" + "active" + "secret"))
	assert.Equal(seed[:], active.Bytes())
}

func TestBrainKey(t *testing.T) {
	assert := assert.New(t)
	bk := keys.NewBrainKey("  sea  Shell\tbeach ", 0)
	assert.Equal("SEA SHELL BEACH", bk.Phrase())

	first := bk.PrivateKey()
	assert.Equal(first.String(),
		keys.NewBrainKey("SEA SHELL BEACH", 0).PrivateKey().String())

	second := bk.Next()
	assert.Equal(1, bk.Sequence)
	assert.NotEqual(first.String(), second.String())
	assert.Equal(second.String(),
		keys.NewBrainKey("sea shell beach", 1).PrivateKey().String())
}

func TestSuggestBrainKey(t *testing.T) {
	bk, err := keys.SuggestBrainKey()
	require.NoError(t, err)
	words := strings.Fields(bk.Phrase())
	assert.Len(t, words, keys.BrainKeyWords)
	assert.Equal(t, strings.ToUpper(bk.Phrase()), bk.Phrase())

	other, err := keys.SuggestBrainKey()
	require.NoError(t, err)
	assert.NotEqual(t, bk.Phrase(), other.Phrase())
	assert.Equal(t, keys.NewBrainKey(bk.Phrase(), 0).PrivateKey().String(),
		bk.PrivateKey().String())
}

func TestAddress(t *testing.T) {
	require := require.New(t)
	pub, err := keys.NewPublicKey(publicKeyTests[1].String)
	require.NoError(err)

	adr := pub.Address()
	parsed, err := keys.NewAddress(adr.String(), "STM")
	require.NoError(err)
	require.Equal(adr.Hash, parsed.Hash)
	require.Equal(adr.String(), parsed.String())

	_, err = keys.NewAddress(adr.String(), "TST")
	require.Equal(keys.ErrInvalidPrefix, err)
}

func TestSignCompact(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	key, err := keys.NewPrivateKey(testWIF)
	require.NoError(err)

	for i := 0; i < 32; i++ {
		digest := sha256.Sum256([]byte(fmt.Sprintf("message %d", i)))
		sig, err := key.SignCompact(digest[:])
		require.NoError(err)
		require.Len(sig, keys.SignatureSize)
		assert.True(keys.IsCanonical(sig), "sig: %x", sig)
		assert.True(sig[0] >= 31 && sig[0] <= 34, "recovery byte %v", sig[0])

		pub, err := keys.RecoverCompact(sig, digest[:])
		require.NoError(err)
		assert.True(pub.Equal(key.PublicKey()))

		again, err := key.SignCompact(digest[:])
		require.NoError(err)
		assert.Equal(sig, again, "signatures must be deterministic")
	}

	_, err = key.SignCompact([]byte("short"))
	assert.Equal(keys.ErrDigestLength, err)
}

func TestIsCanonical(t *testing.T) {
	sig := make([]byte, keys.SignatureSize)
	sig[1], sig[33] = 0x01, 0x01
	assert.True(t, keys.IsCanonical(sig))

	high := append([]byte{}, sig...)
	high[1] = 0x80
	assert.False(t, keys.IsCanonical(high))

	padded := append([]byte{}, sig...)
	padded[33], padded[34] = 0x00, 0x01
	assert.False(t, keys.IsCanonical(padded))

	assert.False(t, keys.IsCanonical(sig[:64]))
}

func TestSharedSecret(t *testing.T) {
	require := require.New(t)
	alice, err := keys.GeneratePrivateKey()
	require.NoError(err)
	bob, err := keys.GeneratePrivateKey()
	require.NoError(err)
	require.Equal(alice.SharedSecret(bob.PublicKey()),
		bob.SharedSecret(alice.PublicKey()))
}
