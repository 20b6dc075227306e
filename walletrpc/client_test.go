package walletrpc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Steem-Tools/steemgo/keys"
	"github.com/Steem-Tools/steemgo/protocol"
	"github.com/Steem-Tools/steemgo/walletrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

// walletServer answers each method with the JSON in results and records the
// params of every request.
func walletServer(t *testing.T, results map[string]string) (*httptest.Server,
	map[string][]json.RawMessage) {
	params := make(map[string][]json.RawMessage)
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			var req request
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			params[req.Method] = req.Params
			res := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
			if result, ok := results[req.Method]; ok {
				res["result"] = json.RawMessage(result)
			} else {
				res["error"] = map[string]interface{}{
					"code": -32601, "message": "Method not found"}
			}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(res))
		}))
	t.Cleanup(srv.Close)
	return srv, params
}

func TestClient(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()
	priv := keys.PasswordKey("alice", "secret", keys.RoleActive)

	srv, params := walletServer(t, map[string]string{
		"is_locked":       `false`,
		"unlock":          `null`,
		"lock":            `null`,
		"set_password":    `null`,
		"list_keys":       `[["` + priv.PublicKey().String() + `","` + priv.String() + `"]]`,
		"get_private_key": `"` + priv.String() + `"`,
		"transfer": `{"ref_block_num":1,"ref_block_prefix":2,
			"expiration":"2016-08-16T12:00:30","operations":[["transfer",
			{"from":"alice","to":"bob","amount":"1.000 STEEM","memo":""}]],
			"extensions":[],"signatures":["00"],"transaction_id":"abc",
			"block_num":0,"transaction_num":0}`,
	})
	c := walletrpc.NewClient()
	c.WalletServer = srv.URL

	locked, err := c.IsLocked(ctx)
	require.NoError(err)
	assert.False(locked)

	require.NoError(c.Unlock(ctx, "pw"))
	assert.JSONEq(`"pw"`, string(params["unlock"][0]))
	require.NoError(c.SetPassword(ctx, "pw2"))
	assert.JSONEq(`"pw2"`, string(params["set_password"][0]))
	require.NoError(c.Lock(ctx))

	pairs, err := c.ListKeys(ctx)
	require.NoError(err)
	assert.Equal([]walletrpc.KeyPair{{Public: priv.PublicKey().String(),
		Private: priv.String()}}, pairs)

	got, err := c.GetPrivateKey(ctx, priv.PublicKey())
	require.NoError(err)
	assert.Equal(priv.String(), got.String())

	tx, err := c.Transfer(ctx, "alice", "bob",
		protocol.MustParseAmount("1.000 STEEM"), "", true)
	require.NoError(err)
	assert.Equal("abc", tx.TransactionID)
	require.Len(tx.Operations, 1)
	assert.Equal("transfer", tx.Operations[0].Name())
	require.Len(params["transfer"], 5)
	assert.JSONEq(`"1.000 STEEM"`, string(params["transfer"][2]))
	assert.JSONEq(`true`, string(params["transfer"][4]))

	_, err = c.SuggestBrainKey(ctx)
	assert.Error(err)
}
