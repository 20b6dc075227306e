package protocol_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"

	"github.com/Steem-Tools/steemgo/keys"
	. "github.com/Steem-Tools/steemgo/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWIF = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"

func mustPub(s string) *keys.PublicKey {
	pub, err := keys.NewPublicKey(s)
	if err != nil {
		panic(err)
	}
	return pub
}

var transactionTests = []struct {
	Name string
	Op   Operation
	Hex  string
}{{
	Name: "comment",
	Op: &Comment{
		ParentAuthor:   "foobara",
		ParentPermlink: "foobarb",
		Author:         "foobarc",
		Permlink:       "foobard",
		Title:          "foobare",
		Body:           "foobarf",
	},
	Hex: "f68585abf4dce7c80457010107666f6f6261726107666f6f62617262" +
		"07666f6f6261726307666f6f6261726407666f6f6261726507666f6f62" +
		"6172660000" + "01",
}, {
	Name: "vote",
	Op: &Vote{
		Voter:    "foobara",
		Author:   "foobarc",
		Permlink: "foobard",
		Weight:   1000,
	},
	Hex: "f68585abf4dce7c80457010007666f6f6261726107666f6f6261726307" +
		"666f6f62617264e80300" + "01",
}, {
	Name: "account_create",
	Op: &AccountCreate{
		Fee:            MustParseAmount("10.000 STEEM"),
		Creator:        "xeroc",
		NewAccountName: "fsafaasf",
		Owner: NewKeyAuthority(
			mustPub("STM5jYVokmZHdEpwo5oCG3ES2Ca4VYzy6tM8pWWkGdgVnwo2mFLFq")),
		Active: NewKeyAuthority(
			mustPub("STM6pbVDAjRFiw6fkiKYCrkz7PFeL7XNAfefrsREwg8MKpJ9VYV9x")),
		Posting: NewKeyAuthority(
			mustPub("STM8CemMDjdUWSV5wKotEimhK6c4dY7p2PdzC2qM1HpAP8aLtZfE7")),
		MemoKey: mustPub("STM6zLNtyFVToBsBZDsgMhgjpwysYVbsQD6YhP3kRkQhANUB4w7Qp"),
	},
	Hex: "f68585abf4dce7c804570109102700000000000003535445454d0000" +
		"057865726f63086673616661617366010000000001026f6231b8ed1c5e" +
		"964b42967759757f8bb879d68e7b09d9ea6eedec21de6fa4c401000100" +
		"0000000102fe8cc11cc8251de6977636b55c1ab8a9d12b0b26154ac78e" +
		"56e7c4257d8bcf69010001000000000103b453f46013fdbccb90b09ba1" +
		"69c388c34d84454a3b9fbec68d5a7819a734fca001000314aa202c9158" +
		"990b3ec51a1aa49b2ab5d300c97b391df3beb34bb74f3c62699e000001",
}}

func TestTransactionSerialization(t *testing.T) {
	key, err := keys.NewPrivateKey(testWIF)
	require.NoError(t, err)
	expiration, err := ParseTime("2016-04-06T08:29:27")
	require.NoError(t, err)

	for _, test := range transactionTests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			tx := NewTransaction(test.Op)
			tx.RefBlockNum = 34294
			tx.RefBlockPrefix = 3707022213
			tx.Expiration = expiration

			require.NoError(tx.Sign(SteemChain, key, key))
			require.Len(tx.Signatures, 1, "duplicate keys sign once")

			data, err := tx.SignedBytes()
			require.NoError(err)
			assert.Equal(test.Hex,
				hex.EncodeToString(data[:len(data)-keys.SignatureSize]))

			ok, err := tx.Verify(SteemChain, key.PublicKey())
			require.NoError(err)
			assert.True(ok)

			ok, err = tx.Verify(TestChain, key.PublicKey())
			require.NoError(err)
			assert.False(ok, "chain id must be part of the digest")

			id, err := tx.ID()
			require.NoError(err)
			assert.Len(id, 40)
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		In     string
		Out    string
		Units  int64
		Symbol string
		Err    bool
	}{
		{In: "1.000 STEEM", Out: "1.000 STEEM", Units: 1000, Symbol: "STEEM"},
		{In: "0.001 SBD", Out: "0.001 SBD", Units: 1, Symbol: "SBD"},
		{In: "12 STEEM", Out: "12.000 STEEM", Units: 12000, Symbol: "STEEM"},
		{In: "1.5 SBD", Out: "1.500 SBD", Units: 1500, Symbol: "SBD"},
		{In: "1234.567890 VESTS", Out: "1234.567890 VESTS",
			Units: 1234567890, Symbol: "VESTS"},
		{In: "-2.500 TESTS", Out: "-2.500 TESTS", Units: -2500,
			Symbol: "TESTS"},
		{In: "1.0001 STEEM", Err: true},
		{In: "1.000 BTC", Err: true},
		{In: "1.000", Err: true},
		{In: "abc STEEM", Err: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.In, func(t *testing.T) {
			assert := assert.New(t)
			a, err := ParseAmount(test.In)
			if test.Err {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(test.Units, a.Amount)
			assert.Equal(test.Symbol, a.Symbol)
			assert.Equal(test.Out, a.String())

			data, err := json.Marshal(a)
			assert.NoError(err)
			var b Amount
			assert.NoError(json.Unmarshal(data, &b))
			assert.Equal(a, b)
		})
	}
}

func TestAmountZeroJSON(t *testing.T) {
	var v struct {
		A Amount
		B Amount `json:"b"`
	}
	v.B = MustParseAmount("0.000 SBD")
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":null,"b":"0.000 SBD"}`, string(data))

	v.A = MustParseAmount("1.000 STEEM")
	require.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, Amount{}, v.A)
	assert.Equal(t, MustParseAmount("0.000 SBD"), v.B)
}

func TestAmountArithmetic(t *testing.T) {
	assert := assert.New(t)
	a := MustParseAmount("1.500 STEEM")
	sum, err := a.Add(MustParseAmount("0.501 STEEM"))
	assert.NoError(err)
	assert.Equal("2.001 STEEM", sum.String())

	diff, err := a.Sub(MustParseAmount("2.000 STEEM"))
	assert.NoError(err)
	assert.Equal("-0.500 STEEM", diff.String())

	_, err = a.Add(MustParseAmount("1.000 SBD"))
	assert.Equal(ErrSymbolMismatch, err)

	f, err := AmountFromFloat(0.1+0.2, "SBD")
	assert.NoError(err)
	assert.Equal("0.300 SBD", f.String())
	assert.InDelta(1.5, a.Float64(), 1e-9)
}

func TestAuthority(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	data := []byte(`{"weight_threshold":2,
		"account_auths":[["zed",1],["alice",1]],
		"key_auths":[["STM6pbVDAjRFiw6fkiKYCrkz7PFeL7XNAfefrsREwg8MKpJ9VYV9x",1],
			["STM5jYVokmZHdEpwo5oCG3ES2Ca4VYzy6tM8pWWkGdgVnwo2mFLFq",1]]}`)
	var auth Authority
	require.NoError(json.Unmarshal(data, &auth))
	assert.EqualValues(2, auth.WeightThreshold)
	require.Len(auth.AccountAuths, 2)
	assert.Equal("zed", auth.AccountAuths[0].Account)
	require.Len(auth.KeyAuths, 2)
	assert.True(auth.HasAccount("alice"))
	assert.True(auth.HasKey(
		mustPub("STM5jYVokmZHdEpwo5oCG3ES2Ca4VYzy6tM8pWWkGdgVnwo2mFLFq")))
	assert.NoError(auth.Validate())

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	auth.MarshalBinary(enc)
	require.NoError(enc.Err())
	assert.Equal("02000000"+
		"02"+"05616c696365"+"0100"+"037a6564"+"0100"+
		"02"+"026f6231b8ed1c5e964b42967759757f8bb879d68e7b09d9ea6eedec21de6fa4c4"+"0100"+
		"02fe8cc11cc8251de6977636b55c1ab8a9d12b0b26154ac78e56e7c4257d8bcf69"+"0100",
		hex.EncodeToString(buf.Bytes()))

	auth.WeightThreshold = 5
	assert.Error(auth.Validate())
}

func TestOperationEnvelope(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	data := []byte(`[["vote",{"voter":"a","author":"b","permlink":"c","weight":10000}],
		["transfer",{"from":"a","to":"b","amount":"1.000 SBD","memo":"hi"}],
		["author_reward",{"author":"b","permlink":"c"}]]`)
	var envs []OperationEnvelope
	require.NoError(json.Unmarshal(data, &envs))
	require.Len(envs, 3)

	vote, ok := envs[0].Operation.(*Vote)
	require.True(ok)
	assert.EqualValues(10000, vote.Weight)
	assert.Equal("vote", envs[0].Name())

	transfer, ok := envs[1].Operation.(*Transfer)
	require.True(ok)
	assert.Equal("1.000 SBD", transfer.Amount.String())

	unknown, ok := envs[2].Operation.(*UnknownOperation)
	require.True(ok)
	assert.Equal("author_reward", envs[2].Name())
	assert.EqualValues(0xff, unknown.Type())

	out, err := json.Marshal(envs[0])
	require.NoError(err)
	assert.JSONEq(`["vote",{"voter":"a","author":"b","permlink":"c","weight":10000}]`,
		string(out))

	tx := &Transaction{Operations: envs[2:]}
	_, err = tx.Bytes()
	assert.Error(err)
}

func TestTransactionJSON(t *testing.T) {
	tx := NewTransaction(&CustomJSON{
		RequiredPostingAuths: []string{"alice"},
		ID:                   "follow",
		JSON:                 `["follow",{}]`,
	})
	tx.Expiration = NewTime(time.Date(2016, 4, 6, 8, 29, 27, 0, time.UTC))
	data, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ref_block_num":0,"ref_block_prefix":0,
		"expiration":"2016-04-06T08:29:27",
		"operations":[["custom_json",{"required_auths":[],
			"required_posting_auths":["alice"],"id":"follow",
			"json":"[\"follow\",{}]"}]],
		"extensions":[],"signatures":[]}`, string(data))
}

func TestRefBlock(t *testing.T) {
	num, prefix, err := RefBlock(0x1086f6,
		"001086f685abf4dc0000000000000000000000000")
	require.Error(t, err, "odd length")

	num, prefix, err = RefBlock(0x1086f6,
		"001086f685abf4dc00000000000000000000000000")
	require.NoError(t, err)
	assert.EqualValues(t, 34550, num)
	assert.EqualValues(t, 3707022213, prefix)
}

func TestChains(t *testing.T) {
	c, err := ChainBySymbol("TESTS")
	require.NoError(t, err)
	assert.Equal(t, "TST", c.Prefix)
	_, err = ChainBySymbol("BTC")
	assert.Error(t, err)

	c, err = ChainByName("steem")
	require.NoError(t, err)
	assert.Equal(t, ChainID{}, c.ID)

	op, err := ParseOpType("set_reset_account")
	require.NoError(t, err)
	assert.EqualValues(t, 38, op)
	assert.Equal(t, "limit_order_create", OpLimitOrderCreate.String())
}
