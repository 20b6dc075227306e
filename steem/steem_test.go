package steem

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
	"github.com/Steem-Tools/steemgo/memo"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/wallet"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const propsJSON = `{
	"head_block_number": 4297462,
	"head_block_id": "00419336a72a7c6b9f8a1a9c3a8e8bc7ef6c3b5d",
	"time": "2016-08-16T12:00:00",
	"current_supply": "271427482.861 STEEM",
	"total_vesting_fund_steem": "177045781.132 STEEM",
	"total_vesting_shares": "364560283145.104328 VESTS",
	"sbd_interest_rate": 1000,
	"last_irreversible_block_num": 4297447
}`

var (
	aliceKey = keys.PasswordKey("alice", "secret", keys.RoleActive)
	bobKey   = keys.PasswordKey("bob", "secret", keys.RoleActive)
)

func authJSON(auth *protocol.Authority) string {
	data, err := json.Marshal(auth)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func accountJSON(name string, pub *keys.PublicKey, posting *protocol.Authority) string {
	auth := authJSON(protocol.NewKeyAuthority(pub))
	if posting == nil {
		posting = protocol.NewKeyAuthority(pub)
	}
	return fmt.Sprintf(`{"name":%q,"owner":%v,"active":%v,"posting":%v,`+
		`"memo_key":%q,"json_metadata":"{\"profile\":{}}",`+
		`"balance":"10.000 STEEM","sbd_balance":"5.000 SBD",`+
		`"savings_balance":"1.000 STEEM","savings_sbd_balance":"0.000 SBD",`+
		`"vesting_shares":"1000000.000000 VESTS","sbd_seconds":"31536000000",`+
		`"sbd_last_interest_payment":"2016-08-01T00:00:00"}`,
		name, auth, auth, authJSON(posting), pub)
}

// testNode answers get_accounts from accounts and always returns propsJSON
// for the global properties.
type testNode struct {
	caller   *mocks.MockCaller
	accounts map[string]string
}

func newTestNode(t *testing.T) *testNode {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	n := &testNode{
		caller: mocks.NewMockCaller(ctrl),
		accounts: map[string]string{
			"alice": accountJSON("alice", aliceKey.PublicKey(), nil),
			"bob":   accountJSON("bob", bobKey.PublicKey(), nil),
		},
	}
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_accounts",
			gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, apiName, method string,
			params, result interface{}) error {
			names := params.([]interface{})[0].([]string)
			data, ok := n.accounts[names[0]]
			if !ok {
				return mocks.Respond(`[]`)(ctx, apiName, method, params, result)
			}
			return mocks.Respond("[" + data + "]")(ctx, apiName, method,
				params, result)
		}).AnyTimes()
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_dynamic_global_properties",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(propsJSON)).AnyTimes()
	return n
}

func newTestSteem(t *testing.T, priv *keys.PrivateKey, opts ...Option) (*Steem, *testNode) {
	n := newTestNode(t)
	a := api.New(n.caller)
	w, err := wallet.NewMemory([]string{priv.String()}, wallet.WithAPI(a))
	require.NoError(t, err)
	opts = append([]Option{WithNoBroadcast(true)}, opts...)
	s := New(a, w, opts...)
	s.now = func() time.Time { return time.Unix(1463480746, 0) }
	return s, n
}

func TestPost(t *testing.T) {
	ctx := context.Background()
	for _, test := range []struct {
		Name string
		Opts PostOptions
		Exp  protocol.Comment
		Tags []string
		Err  error
	}{{
		Name: "tags",
		Opts: PostOptions{Title: "Hello World", Body: "body",
			Tags: []string{"steem", "go", "steem", "dev"}},
		Exp: protocol.Comment{ParentPermlink: "steem", Author: "alice",
			Permlink: "hello-world", Title: "Hello World", Body: "body"},
		Tags: []string{"go", "dev"},
	}, {
		Name: "category and tags",
		Opts: PostOptions{Title: "Hello", Category: "Go Lang",
			Permlink: "custom", Tags: []string{"a", "b"}},
		Exp: protocol.Comment{ParentPermlink: "go-lang", Author: "alice",
			Permlink: "custom", Title: "Hello"},
		Tags: []string{"a", "b"},
	}, {
		Name: "reply",
		Opts: PostOptions{Body: "nice", ReplyIdentifier: "@bob/hello"},
		Exp: protocol.Comment{ParentAuthor: "bob", ParentPermlink: "hello",
			Author: "alice", Permlink: "re-hello-20160517t102546",
			Body: "nice"},
	}, {
		Name: "reply with category",
		Opts: PostOptions{ReplyIdentifier: "@bob/hello", Category: "go"},
		Err:  ErrCategoryWithReply,
	}} {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			s, _ := newTestSteem(t, aliceKey, WithDefaultAuthor("alice"))
			b, err := s.Post(ctx, test.Opts)
			if test.Err != nil {
				assert.True(t, errors.Is(err, test.Err), "err: %v", err)
				return
			}
			require.NoError(t, err)
			require.Len(t, b.Tx.Operations, 1)
			op := b.Tx.Operations[0].Operation.(*protocol.Comment)

			var meta map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(op.JSONMetadata), &meta))
			if test.Tags != nil {
				tags := make([]string, 0)
				for _, tag := range meta["tags"].([]interface{}) {
					tags = append(tags, tag.(string))
				}
				assert.Equal(t, test.Tags, tags)
			}
			op.JSONMetadata = ""
			assert.Equal(t, test.Exp, *op)
			assert.Len(t, b.Tx.Signatures, 1)
		})
	}
}

func TestPostNoAuthor(t *testing.T) {
	s, _ := newTestSteem(t, aliceKey)
	_, err := s.Post(context.Background(), PostOptions{Title: "x"})
	assert.Equal(t, ErrNoAccount, err)
}

func TestVote(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSteem(t, aliceKey)

	b, err := s.Vote(ctx, "@bob/hello", 50.5, "alice")
	require.NoError(t, err)
	op := b.Tx.Operations[0].Operation.(*protocol.Vote)
	assert.Equal(t, protocol.Vote{Voter: "alice", Author: "bob",
		Permlink: "hello", Weight: 5050}, *op)

	_, err = s.Vote(ctx, "@bob/hello", -100.5, "alice")
	assert.True(t, errors.Is(err, ErrInvalidWeight))
	_, err = s.Vote(ctx, "@bob/hello", 100, "")
	assert.Equal(t, ErrNoAccount, err)
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey)
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_content",
			[]interface{}{"alice", "hello"}, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"author":"alice","permlink":"hello",
			"category":"steem","parent_author":"","parent_permlink":"steem",
			"title":"Hello","body":"The quick brown fox",
			"json_metadata":"{\"tags\":[\"go\"]}"}`)).Times(3)

	b, err := s.Edit(ctx, "@alice/hello", "The quick red fox",
		EditOptions{Meta: map[string]interface{}{"app": "steemgo"}})
	require.NoError(t, err)
	op := b.Tx.Operations[0].Operation.(*protocol.Comment)
	assert.Equal(t, "steem", op.ParentPermlink)
	assert.Equal(t, "hello", op.Permlink)
	assert.Contains(t, op.Body, "@@")
	assert.JSONEq(t, `{"tags":["go"],"app":"steemgo"}`, op.JSONMetadata)

	_, err = s.Edit(ctx, "@alice/hello", "The quick brown fox", EditOptions{})
	assert.Equal(t, ErrNoChange, err)

	b, err = s.Edit(ctx, "@alice/hello", "new", EditOptions{Replace: true})
	require.NoError(t, err)
	op = b.Tx.Operations[0].Operation.(*protocol.Comment)
	assert.Equal(t, "new", op.Body)
	assert.Equal(t, `{"tags":["go"]}`, op.JSONMetadata)
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	s, _ := newTestSteem(t, aliceKey, WithDefaultAccount("alice"))

	b, err := s.Transfer(ctx, "bob", protocol.MustParseAmount("1.000 SBD"),
		"#secret", "")
	require.NoError(err)
	op := b.Tx.Operations[0].Operation.(*protocol.Transfer)
	assert.Equal("alice", op.From)
	assert.Equal("1.000 SBD", op.Amount.String())
	require.NotEqual("#secret", op.Memo)

	text, err := memo.Decode(bobKey, op.Memo)
	require.NoError(err)
	assert.Equal("#secret", text)

	text, err = s.DecodeMemo(ctx, op.Memo)
	require.NoError(err)
	assert.Equal("#secret", text)

	b, err = s.Transfer(ctx, "bob", protocol.MustParseAmount("1.000 STEEM"),
		"plain", "")
	require.NoError(err)
	assert.Equal("plain", b.Tx.Operations[0].Operation.(*protocol.Transfer).Memo)

	_, err = s.Transfer(ctx, "bob", protocol.MustParseAmount("1.000000 VESTS"),
		"", "")
	assert.True(errors.Is(err, ErrInvalidAsset))
}

func TestVestingAndSavings(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSteem(t, aliceKey, WithDefaultAccount("alice"))

	b, err := s.TransferToVesting(ctx, protocol.MustParseAmount("2.000 STEEM"), "", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", b.Tx.Operations[0].Operation.(*protocol.TransferToVesting).To)

	_, err = s.WithdrawVesting(ctx, protocol.MustParseAmount("2.000 STEEM"), "")
	assert.True(t, errors.Is(err, ErrInvalidAsset))

	b, err = s.Convert(ctx, protocol.MustParseAmount("2.000 SBD"), 0, "")
	require.NoError(t, err)
	assert.NotZero(t, b.Tx.Operations[0].Operation.(*protocol.Convert).RequestID)

	b, err = s.SetWithdrawVestingRoute(ctx, "bob", 25, true, "")
	require.NoError(t, err)
	route := b.Tx.Operations[0].Operation.(*protocol.SetWithdrawVestingRoute)
	assert.EqualValues(t, 2500, route.Percent)
	_, err = s.SetWithdrawVestingRoute(ctx, "bob", 101, true, "")
	assert.True(t, errors.Is(err, ErrInvalidPercentage))

	b, err = s.TransferFromSavings(ctx, "", protocol.MustParseAmount("1.000 STEEM"),
		"", 7, "")
	require.NoError(t, err)
	assert.Equal(t, protocol.TransferFromSavings{From: "alice", RequestID: 7,
		To: "alice", Amount: protocol.MustParseAmount("1.000 STEEM")},
		*b.Tx.Operations[0].Operation.(*protocol.TransferFromSavings))

	b, err = s.CancelTransferFromSavings(ctx, 7, "")
	require.NoError(t, err)
	assert.EqualValues(t, 7,
		b.Tx.Operations[0].Operation.(*protocol.CancelTransferFromSavings).RequestID)
}

func TestCreateAccount(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey, WithDefaultAuthor("alice"))
	n.caller.EXPECT().
		Call(gomock.Any(), "database_api", "get_chain_properties",
			nil, gomock.Any()).
		DoAndReturn(mocks.Respond(`{"account_creation_fee":"3.000 STEEM",
			"maximum_block_size":65536,"sbd_interest_rate":1000}`))

	_, err := s.CreateAccount(ctx, AccountOptions{Name: "bob", Password: "pw"})
	assert.True(errors.Is(err, ErrAccountExists), "err: %v", err)

	_, err = s.CreateAccount(ctx, AccountOptions{Name: "carol", Password: "pw",
		MemoKey: bobKey.PublicKey().String()})
	assert.Equal(ErrPasswordAndKeys, err)

	_, err = s.CreateAccount(ctx, AccountOptions{Name: "carol",
		MemoKey: bobKey.PublicKey().String()})
	assert.Equal(ErrIncompleteKeys, err)

	b, err := s.CreateAccount(ctx, AccountOptions{Name: "carol", Password: "pw",
		AdditionalPostingAccounts: []string{"app"}})
	require.NoError(err)
	op := b.Tx.Operations[0].Operation.(*protocol.AccountCreate)
	assert.Equal("alice", op.Creator)
	assert.Equal("3.000 STEEM", op.Fee.String())
	owner := keys.PasswordKey("carol", "pw", keys.RoleOwner).PublicKey()
	assert.True(op.Owner.HasKey(owner))
	assert.True(op.Posting.HasAccount("app"))
	assert.Equal("{}", op.JSONMetadata)

	pubs, err := s.Wallet.PublicKeys(ctx)
	require.NoError(err)
	assert.Len(pubs, 4)
	for _, pub := range pubs {
		assert.False(pub.Equal(owner), "owner key stored")
	}
}

func TestAllowDisallow(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	s, n := newTestSteem(t, aliceKey, WithDefaultAuthor("alice"))

	b, err := s.Allow(ctx, "bob", 0, keys.RolePosting, "", 0)
	require.NoError(err)
	op := b.Tx.Operations[0].Operation.(*protocol.AccountUpdate)
	require.NotNil(op.Posting)
	assert.Nil(op.Active)
	assert.Equal([]protocol.AccountAuth{{Account: "bob", Weight: 1}},
		op.Posting.AccountAuths)
	assert.Equal(`{"profile":{}}`, op.JSONMetadata)

	_, err = s.Allow(ctx, bobKey.PublicKey().String(), 1, keys.RoleActive, "", 5)
	assert.True(errors.Is(err, protocol.ErrThresholdTooRestrictive), "err: %v", err)

	_, err = s.Allow(ctx, "nobody", 1, keys.RolePosting, "", 0)
	assert.True(errors.Is(err, api.ErrAccountNotFound), "err: %v", err)

	_, err = s.Allow(ctx, "bob", 1, keys.RoleMemo, "", 0)
	assert.True(errors.Is(err, ErrInvalidPermission))

	posting := protocol.NewKeyAuthority(aliceKey.PublicKey())
	posting.WeightThreshold = 2
	posting.AccountAuths = []protocol.AccountAuth{{Account: "bob", Weight: 1}}
	n.accounts["alice"] = accountJSON("alice", aliceKey.PublicKey(), posting)

	b, err = s.Disallow(ctx, "bob", keys.RolePosting, "", 0)
	require.NoError(err)
	op = b.Tx.Operations[0].Operation.(*protocol.AccountUpdate)
	assert.Empty(op.Posting.AccountAuths)
	assert.EqualValues(1, op.Posting.WeightThreshold)

	_, err = s.Disallow(ctx, bobKey.PublicKey().String(), keys.RolePosting, "", 0)
	assert.True(errors.Is(err, ErrForeignNotFound))
}

func TestUpdateMemoKeyAndProfile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSteem(t, aliceKey, WithDefaultAuthor("alice"),
		WithDefaultAccount("alice"))

	b, err := s.UpdateMemoKey(ctx, bobKey.PublicKey().String(), "")
	require.NoError(t, err)
	op := b.Tx.Operations[0].Operation.(*protocol.AccountUpdate)
	assert.True(t, op.MemoKey.Equal(bobKey.PublicKey()))

	_, err = s.UpdateMemoKey(ctx, "invalid", "")
	assert.Error(t, err)

	b, err = s.UpdateAccountProfile(ctx,
		map[string]interface{}{"profile": map[string]string{"name": "Alice"}}, "")
	require.NoError(t, err)
	op = b.Tx.Operations[0].Operation.(*protocol.AccountUpdate)
	assert.JSONEq(t, `{"profile":{"name":"Alice"}}`, op.JSONMetadata)
	assert.True(t, op.MemoKey.Equal(aliceKey.PublicKey()))
}

func TestSocial(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSteem(t, aliceKey, WithDefaultAuthor("alice"),
		WithDefaultAccount("alice"))

	b, err := s.Follow(ctx, "bob", nil, "")
	require.NoError(t, err)
	op := b.Tx.Operations[0].Operation.(*protocol.CustomJSON)
	assert.Equal(t, "follow", op.ID)
	assert.Equal(t, protocol.StringList{"alice"}, op.RequiredPostingAuths)
	assert.JSONEq(t, `["follow",{"follower":"alice","following":"bob","what":["blog"]}]`,
		op.JSON)

	b, err = s.Unfollow(ctx, "bob", "")
	require.NoError(t, err)
	assert.JSONEq(t, `["follow",{"follower":"alice","following":"bob","what":[]}]`,
		b.Tx.Operations[0].Operation.(*protocol.CustomJSON).JSON)

	b, err = s.Resteem(ctx, "@bob/hello", "")
	require.NoError(t, err)
	assert.JSONEq(t, `["reblog",{"account":"alice","author":"bob","permlink":"hello"}]`,
		b.Tx.Operations[0].Operation.(*protocol.CustomJSON).JSON)

	b, err = s.ApproveWitness(ctx, "bob", "")
	require.NoError(t, err)
	assert.Equal(t, protocol.AccountWitnessVote{Account: "alice", Witness: "bob",
		Approve: true}, *b.Tx.Operations[0].Operation.(*protocol.AccountWitnessVote))

	_, err = s.CustomJSON(ctx, "x", nil, nil, nil)
	assert.Equal(t, ErrNoAuths, err)
}

func TestUnsigned(t *testing.T) {
	n := newTestNode(t)
	s := New(api.New(n.caller), nil, WithUnsigned(true))
	b, err := s.Vote(context.Background(), "@bob/hello", 100, "alice")
	require.NoError(t, err)
	assert.Empty(t, b.Tx.Signatures)
	require.Len(t, b.MissingSignatures, 1)
	assert.True(t, b.MissingSignatures[0].Equal(aliceKey.PublicKey()))
}

func TestBalancesAndInterest(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSteem(t, aliceKey)

	bal, err := s.GetBalances(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "10.000 STEEM", bal.Balance.String())
	assert.Equal(t, "5.000 SBD", bal.SBDBalance.String())
	assert.Equal(t, protocol.SymbolSTEEM, bal.VestingSharesSteem.Symbol)
	assert.InDelta(t, 485.64, bal.VestingSharesSteem.Float64(), 0.01)

	in, err := s.Interest(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 10, in.InterestRate, 1e-9)
	assert.InDelta(t, 0.1, in.Interest, 1e-9)
	assert.Equal(t, time.Date(2016, 8, 31, 0, 0, 0, 0, time.UTC), in.NextPayment.UTC())

	_, err = s.GetBalances(ctx, "")
	assert.Equal(t, ErrNoAccount, err)
}

func TestLoadDefaults(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSteem(t, aliceKey, WithDefaultVoter("carol"))
	require.NoError(t, s.Wallet.SetConfig(ctx, "default_account", "alice"))
	require.NoError(t, s.Wallet.SetConfig(ctx, "default_voter", "bob"))
	require.NoError(t, s.LoadDefaults(ctx))
	assert.Equal(t, "alice", s.DefaultAccount)
	assert.Equal(t, "carol", s.DefaultVoter)
	assert.Equal(t, "", s.DefaultAuthor)
}
