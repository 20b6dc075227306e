package txbuilder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Steem-Tools/steemgo/api"
	"github.com/Steem-Tools/steemgo/api/mocks"
	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propsJSON = `{
	"head_block_number": 4297462,
	"head_block_id": "00419336a72a7c6b9f8a1a9c3a8e8bc7ef6c3b5d",
	"time": "2016-08-16T12:00:00",
	"last_irreversible_block_num": 4297447
}`

var (
	aliceKey = keys.PasswordKey("alice", "secret", keys.RoleActive)
	bobKey   = keys.PasswordKey("bob", "secret", keys.RoleActive)
	now      = time.Date(2016, 8, 16, 12, 0, 0, 0, time.UTC)
)

type testSigner struct {
	forced map[string]*keys.PrivateKey
	keys   []*keys.PrivateKey
}

func (s testSigner) ForcedKey(role string) (*keys.PrivateKey, bool) {
	priv, ok := s.forced[role]
	return priv, ok
}

func (s testSigner) PrivateKeyForPublicKey(_ context.Context,
	pub *keys.PublicKey) (*keys.PrivateKey, error) {
	for _, priv := range s.keys {
		if priv.PublicKey().Equal(pub) {
			return priv, nil
		}
	}
	return nil, fmt.Errorf("no key for %v", pub)
}

func accountJSON(name string, pub *keys.PublicKey, accountAuths ...string) string {
	var aa string
	for i, a := range accountAuths {
		if i > 0 {
			aa += ","
		}
		aa += fmt.Sprintf("[%q,1]", a)
	}
	auth := fmt.Sprintf(`{"weight_threshold":1,"account_auths":[%v],`+
		`"key_auths":[[%q,1]]}`, aa, pub)
	return fmt.Sprintf(`[{"name":%q,"owner":%v,"active":%v,"posting":%v,`+
		`"memo_key":%q}]`, name, auth, auth, auth, pub)
}

func expectAccount(caller *mocks.MockCaller, name, data string) *gomock.Call {
	return caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_accounts",
			[]interface{}{[]string{name}}, gomock.Any()).
		DoAndReturn(mocks.Respond(data))
}

func expectProps(caller *mocks.MockCaller) *gomock.Call {
	return caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_dynamic_global_properties",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(propsJSON))
}

func vote() *protocol.Vote {
	return &protocol.Vote{Voter: "alice", Author: "bob",
		Permlink: "hello", Weight: protocol.Percent100}
}

func newTestBuilder(t *testing.T, opts ...Option) (*Builder, *mocks.MockCaller) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	caller := mocks.NewMockCaller(ctrl)
	b := New(api.New(caller), protocol.SteemChain, opts...)
	b.now = func() time.Time { return now }
	return b, caller
}

func TestBroadcast(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	b, caller := newTestBuilder(t,
		WithSigner(testSigner{keys: []*keys.PrivateKey{aliceKey}}))
	expectAccount(caller, "alice", accountJSON("alice", aliceKey.PublicKey()))
	expectProps(caller)
	caller.EXPECT().
		Call(gomock.Any(), "database_api", "verify_authority",
			gomock.Any(), gomock.Any()).
		DoAndReturn(mocks.Respond(true))
	caller.EXPECT().
		Call(gomock.Any(), "network_broadcast_api", "broadcast_transaction",
			[]interface{}{b.Tx}, nil).
		Return(nil)

	b.AppendOps(vote())
	require.NoError(b.AppendSigner(ctx, "alice", keys.RolePosting))
	require.NoError(b.Broadcast(ctx))

	tx := b.Tx
	assert.EqualValues(4297462&0xFFFF, tx.RefBlockNum)
	assert.EqualValues(0x6b7c2aa7, tx.RefBlockPrefix)
	assert.True(now.Add(DefaultExpiration).Equal(tx.Expiration.Time))
	require.Len(tx.Signatures, 1)

	signers, err := tx.RecoverSigners(protocol.SteemChain)
	require.NoError(err)
	require.Len(signers, 1)
	assert.True(signers[0].Equal(aliceKey.PublicKey()))

	// Broadcasting again does not construct or sign again.
	caller.EXPECT().
		Call(gomock.Any(), "database_api", "verify_authority",
			gomock.Any(), gomock.Any()).
		DoAndReturn(mocks.Respond(true))
	caller.EXPECT().
		Call(gomock.Any(), "network_broadcast_api", "broadcast_transaction",
			gomock.Any(), nil).
		Return(nil)
	require.NoError(b.Broadcast(ctx))
	assert.Len(tx.Signatures, 1)
}

func TestBroadcastInsufficientAuthority(t *testing.T) {
	ctx := context.Background()
	b, caller := newTestBuilder(t)
	expectProps(caller)
	caller.EXPECT().
		Call(gomock.Any(), "database_api", "verify_authority",
			gomock.Any(), gomock.Any()).
		DoAndReturn(mocks.Respond(false))

	b.AppendOps(vote())
	b.AddSigningKeys(bobKey)
	assert.Equal(t, ErrInsufficientAuthority, b.Broadcast(ctx))
}

func TestNoBroadcast(t *testing.T) {
	ctx := context.Background()
	b, caller := newTestBuilder(t, WithNoBroadcast(true))
	expectProps(caller)

	b.AppendOps(vote())
	b.AddSigningKeys(aliceKey, aliceKey)
	require.NoError(t, b.Broadcast(ctx))
	assert.Len(t, b.Tx.Signatures, 1)
}

func TestAddSigningKeysAfterSign(t *testing.T) {
	ctx := context.Background()
	b, caller := newTestBuilder(t, WithNoBroadcast(true))
	expectProps(caller)

	b.AppendOps(vote())
	b.AddSigningKeys(aliceKey)
	require.NoError(t, b.Sign(ctx))
	require.Len(t, b.Tx.Signatures, 1)

	b.AddSigningKeys(bobKey)
	require.NoError(t, b.Broadcast(ctx))
	require.Len(t, b.Tx.Signatures, 2)
	signers, err := b.Tx.RecoverSigners(protocol.SteemChain)
	require.NoError(t, err)
	require.Len(t, signers, 2)
	assert.True(t, signers[1].Equal(bobKey.PublicKey()))
}

func TestAppendSigner(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		b, caller := newTestBuilder(t,
			WithSigner(testSigner{keys: []*keys.PrivateKey{bobKey}}))
		expectAccount(caller, "alice", accountJSON("alice", aliceKey.PublicKey()))
		err := b.AppendSigner(ctx, "alice", keys.RoleActive)
		assert.True(t, errors.Is(err, ErrMissingKey), "err: %v", err)
	})

	t.Run("account auth", func(t *testing.T) {
		b, caller := newTestBuilder(t,
			WithSigner(testSigner{keys: []*keys.PrivateKey{bobKey}}))
		expectAccount(caller, "alice",
			accountJSON("alice", aliceKey.PublicKey(), "bob"))
		expectAccount(caller, "bob", accountJSON("bob", bobKey.PublicKey()))
		require.NoError(t, b.AppendSigner(ctx, "alice", keys.RoleActive))
		require.Len(t, b.signingKeys, 1)
		assert.Equal(t, bobKey.String(), b.signingKeys[0].String())
	})

	t.Run("forced key", func(t *testing.T) {
		b, _ := newTestBuilder(t, WithSigner(testSigner{
			forced: map[string]*keys.PrivateKey{keys.RolePosting: bobKey}}))
		require.NoError(t, b.AppendSigner(ctx, "alice", keys.RolePosting))
		assert.Len(t, b.signingKeys, 1)
	})

	t.Run("invalid role", func(t *testing.T) {
		b, _ := newTestBuilder(t)
		assert.Equal(t, ErrInvalidRole,
			b.AppendSigner(ctx, "alice", keys.RoleMemo))
	})
}

func TestUnsigned(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	b, caller := newTestBuilder(t, WithUnsigned(true),
		WithSigner(testSigner{keys: []*keys.PrivateKey{aliceKey}}))
	expectAccount(caller, "alice",
		accountJSON("alice", aliceKey.PublicKey(), "bob"))
	expectAccount(caller, "bob", accountJSON("bob", bobKey.PublicKey()))
	expectProps(caller)

	b.AppendOps(vote())
	require.NoError(b.AppendSigner(ctx, "alice", keys.RoleActive))
	require.NoError(b.Broadcast(ctx))
	assert.Empty(b.Tx.Signatures)

	require.Len(b.MissingSignatures, 2)
	assert.True(b.MissingSignatures[0].Equal(aliceKey.PublicKey()))
	assert.True(b.MissingSignatures[1].Equal(bobKey.PublicKey()))
	assert.Contains(b.RequiredAuthorities, "alice")
	assert.Contains(b.RequiredAuthorities, "bob")

	data, err := b.JSON()
	require.NoError(err)
	var decoded map[string]json.RawMessage
	require.NoError(json.Unmarshal(data, &decoded))
	assert.Contains(decoded, "missing_signatures")
	assert.Contains(decoded, "required_authorities")
	assert.Contains(decoded, "ref_block_num")
}

func TestConstructNoOperations(t *testing.T) {
	b, _ := newTestBuilder(t)
	assert.Equal(t, ErrNoOperations, b.Construct(context.Background()))
}

func TestSignTransaction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	signer := testSigner{keys: []*keys.PrivateKey{aliceKey}}

	tx := protocol.NewTransaction(vote())
	tx.SetExpiration(now, time.Minute)
	require.NoError(SignTransaction(ctx, protocol.SteemChain, signer, tx,
		[]*keys.PublicKey{aliceKey.PublicKey(), bobKey.PublicKey()}))
	require.Len(tx.Signatures, 1)

	ok, err := tx.Verify(protocol.SteemChain, aliceKey.PublicKey())
	require.NoError(err)
	require.True(ok)

	tx = protocol.NewTransaction(vote())
	require.Equal(ErrMissingKey, SignTransaction(ctx, protocol.SteemChain,
		signer, tx, []*keys.PublicKey{bobKey.PublicKey()}))

	require.NoError(SignTransaction(ctx, protocol.SteemChain, nil, tx, nil, bobKey))
	require.Len(tx.Signatures, 1)
}
